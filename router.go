package router

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/pedia/picoroute/radix"
)

// maxStackSegments is the number of path segments MatchRoute splits into
// a stack buffer before falling back to the heap.
const maxStackSegments = 32

// Router registers patterns and resolves request paths to routes.
//
// Registration is serialized by a mutex and publishes a new immutable
// routing table with one atomic store. Matching only loads that pointer,
// so MatchRoute never blocks and may run from any number of goroutines,
// including while routes are being added.
type Router struct {
	mu    sync.Mutex
	table atomic.Pointer[table]
}

// table is one published generation of the routing state.
type table struct {
	tree     *radix.Tree[*Route]
	handlers map[Key]Handler
	patterns map[Key]string
}

// New returns a new router.
func New() *Router {
	router := &Router{}
	router.table.Store(&table{
		tree:     radix.New[*Route](),
		handlers: make(map[Key]Handler),
		patterns: make(map[Key]string),
	})

	return router
}

// Handle registers handler for pattern under the key derived from the
// pattern text. See AddRoute.
func (router *Router) Handle(pattern string, handler Handler) (*Route, error) {
	return router.AddRoute(pattern, KeyOf(pattern), handler)
}

// HandleFunc is a shortcut for router.Handle(pattern, HandlerFunc(fn)).
func (router *Router) HandleFunc(pattern string, fn HandlerFunc) (*Route, error) {
	if fn == nil {
		return router.AddRoute(pattern, KeyOf(pattern), nil)
	}
	return router.Handle(pattern, fn)
}

// MustHandle is like Handle but panics on registration errors. It is meant
// for routes declared at startup.
func (router *Router) MustHandle(pattern string, handler Handler) *Route {
	route, err := router.Handle(pattern, handler)
	if err != nil {
		panic(err)
	}
	return route
}

// AddRoute registers handler for pattern under key.
//
// The pattern is validated before anything is changed and a route is
// either fully registered or not at all. Registering a pattern twice,
// a key already bound to another pattern, or a parameter that conflicts
// with the one registered at the same position fails with a
// *RegistrationError.
func (router *Router) AddRoute(pattern string, key Key, handler Handler) (*Route, error) {
	if handler == nil {
		return nil, &RegistrationError{Pattern: pattern, Err: ErrNilHandler}
	}

	segments, err := radix.ParsePattern(pattern)
	if err != nil {
		return nil, &RegistrationError{Pattern: pattern, Err: err}
	}

	router.mu.Lock()
	defer router.mu.Unlock()

	cur := router.table.Load()

	if existing, ok := cur.patterns[key]; ok {
		if existing == pattern {
			return nil, &RegistrationError{Pattern: pattern, Err: ErrDuplicateRoute}
		}
		return nil, &RegistrationError{
			Pattern: pattern,
			Err:     fmt.Errorf("%w: key %s is bound to '%s'", ErrKeyCollision, key, existing),
		}
	}

	route := &Route{key: key, pattern: pattern, handler: handler}

	tree, err := cur.tree.Insert(segments, route)
	if err != nil {
		return nil, &RegistrationError{Pattern: pattern, Err: err}
	}

	next := &table{
		tree:     tree,
		handlers: maps.Clone(cur.handlers),
		patterns: maps.Clone(cur.patterns),
	}
	next.handlers[key] = handler
	next.patterns[key] = pattern

	router.table.Store(next)

	return route, nil
}

// MatchRoute resolves a normalized request path (percent-decoded, without
// host and query) to its route and parameter bindings. The last return
// value is false when no registered pattern matches.
//
// A trailing slash is ignored, so "/post/1" and "/post/1/" resolve alike.
// Static segments take precedence over parameters at every level.
func (router *Router) MatchRoute(path string) (*Route, Params, bool) {
	var buf [maxStackSegments]string

	segments := radix.AppendSegments(buf[:0], path)

	route, params, ok := router.table.Load().tree.Resolve(segments)
	if !ok {
		return nil, nil, false
	}

	return route, params, true
}

// handler returns the handler registered under key.
func (router *Router) handler(key Key) (Handler, bool) {
	h, ok := router.table.Load().handlers[key]
	return h, ok
}

// Len returns the number of registered routes.
func (router *Router) Len() int {
	return router.table.Load().tree.Len()
}

// Routes returns all registered routes in trie order: static segments
// sorted by text before parameters, parents before children.
func (router *Router) Routes() []*Route {
	t := router.table.Load().tree
	routes := make([]*Route, 0, t.Len())

	t.Walk(func(route *Route) bool {
		routes = append(routes, route)
		return true
	})

	return routes
}

// List returns the patterns of all registered routes in trie order.
func (router *Router) List() []string {
	routes := router.Routes()
	paths := make([]string, len(routes))

	for i, route := range routes {
		paths[i] = route.pattern
	}

	return paths
}
