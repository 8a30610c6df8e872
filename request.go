package router

import (
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
)

// Request is the read side of a request handled by the Dispatcher.
type Request struct {
	ctx *fasthttp.RequestCtx
}

// NewRequest wraps ctx.
func NewRequest(ctx *fasthttp.RequestCtx) *Request {
	return &Request{ctx: ctx}
}

// Ctx returns the underlying fasthttp request context.
func (r *Request) Ctx() *fasthttp.RequestCtx {
	return r.ctx
}

// Path returns the normalized, percent-decoded request path.
func (r *Request) Path() string {
	return string(r.ctx.Path())
}

// Method returns the request method.
func (r *Request) Method() string {
	return string(r.ctx.Method())
}

// Header returns the first value of the named request header.
func (r *Request) Header(name string) string {
	return string(r.ctx.Request.Header.Peek(name))
}

// Headers returns a copy of all request headers. Repeated headers keep
// their last value.
func (r *Request) Headers() map[string]string {
	headers := make(map[string]string, r.ctx.Request.Header.Len())

	r.ctx.Request.Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})

	return headers
}

// Body returns the request body.
func (r *Request) Body() []byte {
	return r.ctx.PostBody()
}

// QueryParam returns the value of the named query argument.
func (r *Request) QueryParam(name string) string {
	return string(r.ctx.QueryArgs().Peek(name))
}

// UserValue returns the request scoped value stored under key.
func (r *Request) UserValue(key string) any {
	return r.ctx.UserValue(key)
}

// requestID returns the X-Request-ID header or "" without copying.
func (r *Request) requestID() string {
	return strconv.B2S(r.ctx.Request.Header.Peek(HeaderRequestID))
}
