package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Option configures a Dispatcher during creation.
type Option func(*Dispatcher)

// WithLogger sets the logger used for invariant violations and panics.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRegisterer registers the dispatcher metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) {
		d.registerer = reg
	}
}

// WithNotFound sets the handler called when no route matches.
func WithNotFound(h fasthttp.RequestHandler) Option {
	return func(d *Dispatcher) {
		if h != nil {
			d.NotFound = h
		}
	}
}

// WithPanicHandler sets the handler for panics recovered from route handlers.
// A nil handler disables recovery.
func WithPanicHandler(h func(*fasthttp.RequestCtx, any)) Option {
	return func(d *Dispatcher) {
		d.PanicHandler = h
	}
}

// WithSaveMatchedRoutePath stores the matched pattern as a user value
// under MatchedRoutePathParam.
func WithSaveMatchedRoutePath(v bool) Option {
	return func(d *Dispatcher) {
		d.SaveMatchedRoutePath = v
	}
}
