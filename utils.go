package router

import "github.com/valyala/fasthttp"

// UserValue returns the user value stored under key, such as a parameter
// binding or MatchedRoutePathParam.
func UserValue(ctx *fasthttp.RequestCtx, key string) any {
	return ctx.UserValue(key)
}

// Param returns the value bound to the named parameter of the matched
// route, or "" when there is none.
func Param(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}
