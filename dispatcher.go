package router

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/savsgio/gotils/bytes"
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderRequestID is the request header used to correlate dispatcher logs.
const HeaderRequestID = "X-Request-ID"

// MatchedRoutePathParam is the user value key under which the pattern of the
// matched route is stored, if Dispatcher.SaveMatchedRoutePath is set.
var MatchedRoutePathParam = fmt.Sprintf("__matchedRoutePath::%s__", bytes.Rand(make([]byte, 15)))

// Dispatcher is the fasthttp entry point: it resolves every request path
// with its Router and invokes the handler registered for the matched key.
type Dispatcher struct {
	router     *Router
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *dispatchMetrics

	// NotFound is called when no route matches the request path.
	// It defaults to a plain 404 response.
	NotFound fasthttp.RequestHandler

	// PanicHandler handles panics recovered from route handlers. The
	// default logs the panic and answers 500. Without a PanicHandler a
	// panicking handler takes down the whole process.
	PanicHandler func(*fasthttp.RequestCtx, any)

	// SaveMatchedRoutePath stores the matched pattern as a user value
	// under MatchedRoutePathParam.
	SaveMatchedRoutePath bool
}

// NewDispatcher returns a dispatcher for router.
func NewDispatcher(router *Router, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		router:   router,
		logger:   zap.NewNop(),
		NotFound: defaultNotFound,
	}
	d.PanicHandler = d.defaultPanicHandler

	for _, opt := range opts {
		opt(d)
	}

	d.metrics = newDispatchMetrics(d.registerer, router)

	return d
}

// Router returns the router the dispatcher resolves against.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Handler implements fasthttp.RequestHandler.
func (d *Dispatcher) Handler(ctx *fasthttp.RequestCtx) {
	if d.PanicHandler != nil {
		defer d.recv(ctx)
	}

	route, params, ok := d.router.MatchRoute(strconv.B2S(ctx.Path()))
	if !ok {
		d.metrics.requests.WithLabelValues(resultNotFound).Inc()
		d.NotFound(ctx)
		return
	}

	handler, ok := d.router.handler(route.key)
	if !ok {
		d.unknownKey(ctx, route)
		return
	}

	if d.SaveMatchedRoutePath {
		ctx.SetUserValue(MatchedRoutePathParam, route.pattern)
	}

	for name, value := range params {
		ctx.SetUserValue(name, value)
	}

	start := time.Now()
	handler.Handle(NewRequest(ctx), NewResponse(ctx), params)

	d.metrics.duration.WithLabelValues(route.pattern).Observe(time.Since(start).Seconds())
	d.metrics.requests.WithLabelValues(resultMatched).Inc()
}

// unknownKey fails a request whose matched route has no handler. The trie
// and the handler table are published together, so this means a bug.
func (d *Dispatcher) unknownKey(ctx *fasthttp.RequestCtx, route *Route) {
	d.metrics.requests.WithLabelValues(resultUnknownKey).Inc()

	d.logger.Error("route invariant violated",
		zap.Error(ErrUnknownRouteKey),
		zap.String("pattern", route.pattern),
		zap.Stringer("key", route.key),
		zap.String("method", string(ctx.Method())),
		zap.String("path", string(ctx.Path())),
		zap.String("request_id", requestID(ctx)),
	)

	ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
}

func (d *Dispatcher) recv(ctx *fasthttp.RequestCtx) {
	if rcv := recover(); rcv != nil {
		d.metrics.requests.WithLabelValues(resultPanic).Inc()
		d.PanicHandler(ctx, rcv)
	}
}

func (d *Dispatcher) defaultPanicHandler(ctx *fasthttp.RequestCtx, rcv any) {
	d.logger.Error("panic recovered",
		zap.Any("panic", rcv),
		zap.String("method", string(ctx.Method())),
		zap.String("path", string(ctx.Path())),
		zap.String("request_id", requestID(ctx)),
		zap.Stack("stack"),
	)

	ctx.ResetBody()
	ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
}

func defaultNotFound(ctx *fasthttp.RequestCtx) {
	ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound), fasthttp.StatusNotFound)
}

// requestID returns the request's X-Request-ID or a fresh one.
func requestID(ctx *fasthttp.RequestCtx) string {
	if id := NewRequest(ctx).requestID(); id != "" {
		return id
	}
	return uuid.NewString()
}
