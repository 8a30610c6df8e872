package router

// Handler responds to a routed request.
//
// params holds the bindings of the matched pattern. Like everything else
// reachable from the request, the values are only valid until Handle
// returns; copy them to keep them longer.
type Handler interface {
	Handle(req *Request, res *Response, params Params)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(req *Request, res *Response, params Params)

// Handle calls f(req, res, params).
func (f HandlerFunc) Handle(req *Request, res *Response, params Params) {
	f(req, res, params)
}
