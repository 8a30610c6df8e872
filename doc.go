/*
Package router is a segment trie based HTTP request dispatcher for fasthttp.

A trivial example is:

	package main

	import (
		"log"

		"github.com/pedia/picoroute"
		"github.com/valyala/fasthttp"
	)

	// Index is the index handler
	func Index(req *router.Request, res *router.Response, _ router.Params) {
		res.Send("Welcome!\n", fasthttp.StatusOK)
	}

	// Hello is the Hello handler
	func Hello(req *router.Request, res *router.Response, ps router.Params) {
		res.Send("hello, "+ps.Get("name")+"!\n", fasthttp.StatusOK)
	}

	func main() {
		r := router.New()
		r.MustHandle("/", router.HandlerFunc(Index))
		r.MustHandle("/hello/{name}", router.HandlerFunc(Hello))

		d := router.NewDispatcher(r)
		log.Fatal(fasthttp.ListenAndServe(":8080", d.Handler))
	}

The router matches incoming requests by path only. If a pattern matches,
the dispatcher invokes the handler registered for it with the parameter
bindings of the match.

The registered pattern can contain two types of segments:

	Syntax          Type
	text            static segment
	{name}          named parameter
	{name:regex}    named parameter with constraint

Named parameters are whole path segments. They match any non-empty segment:

	Path: /blog/{category}/{post}

	Requests:
	 /blog/go/request-routers            match: category="go", post="request-routers"
	 /blog/go/request-routers/           match: category="go", post="request-routers"
	 /blog/go/                           no match
	 /blog/go/request-routers/comments   no match

A constraint is a regular expression that must match the whole segment:

	Path: /post/{id:[0-9]+}

	Requests:
	 /post/42                            match: id="42"
	 /post/latest                        no match

Static segments always win over parameters. With /post/new and /post/{id}
registered, /post/new goes to the first route and /post/7 to the second. If
a static branch cannot complete a match the parameter branch at the same
depth is tried, so /post/new/edit still reaches /post/{id}/edit.

Only one parameter may be registered at a given position: /user/{id} and
/user/{name}/posts conflict and the second registration fails.

Registration is safe while requests are being served: every AddRoute
publishes a new immutable trie atomically, and MatchRoute never locks.

The bindings are passed to the handler and also stored as user values, so
router.Param(ctx, "name") works from plain fasthttp code.
*/
package router
