package router

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const contentTypeJSON = "application/json"

var defaultContentType = []byte("text/plain; charset=utf-8")

// Response is the write side of a request handled by the Dispatcher.
type Response struct {
	ctx *fasthttp.RequestCtx
}

// NewResponse wraps ctx.
func NewResponse(ctx *fasthttp.RequestCtx) *Response {
	return &Response{ctx: ctx}
}

// Status sets the response status code.
func (r *Response) Status(code int) {
	r.ctx.SetStatusCode(code)
}

// AddHeader adds a response header, keeping existing values.
func (r *Response) AddHeader(name, value string) {
	r.ctx.Response.Header.Add(name, value)
}

// SetContentType sets the Content-Type response header.
func (r *Response) SetContentType(contentType string) {
	r.ctx.SetContentType(contentType)
}

// SetBody sets the response body to a copy of body.
func (r *Response) SetBody(body []byte) {
	r.ctx.SetBody(body)
}

// Write appends p to the response body.
func (r *Response) Write(p []byte) (int, error) {
	return r.ctx.Write(p)
}

// Send writes body as plain text with the given status code.
func (r *Response) Send(body string, code int) {
	r.ctx.SetStatusCode(code)
	r.ctx.Response.Header.SetContentTypeBytes(defaultContentType)
	r.ctx.SetBodyString(body)
}

// SendJSON encodes v as the JSON response body with the given status code.
// If v cannot be encoded nothing is written, the status is set to 500 and
// the encoding error is returned.
func (r *Response) SendJSON(v any, code int) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		r.ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
		return fmt.Errorf("encode json response: %w", err)
	}

	r.ctx.SetStatusCode(code)
	r.ctx.SetContentType(contentTypeJSON)
	r.ctx.SetBody(buf.B)

	return nil
}
