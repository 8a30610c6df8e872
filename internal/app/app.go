// Package app wires configuration, logging, routing and the HTTP server
// into one application object.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	router "github.com/pedia/picoroute"
	"github.com/pedia/picoroute/internal/config"
	"github.com/pedia/picoroute/internal/server"
)

// Name is reported in the Server header and the hello response.
const Name = "picoroute"

// Version is the application version, set at build time.
var Version = "dev"

// App owns everything that lives for the lifetime of the process.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *prometheus.Registry
	router     *router.Router
	dispatcher *router.Dispatcher
	server     *server.Server
}

// New builds the application and registers its built-in routes and the
// routes of the manifest, if any.
func New(cfg *config.Config, logger *zap.Logger, opts ...server.Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := router.New()
	d := router.NewDispatcher(r,
		router.WithLogger(logger.Named("dispatcher")),
		router.WithRegisterer(registry),
		router.WithSaveMatchedRoutePath(true),
	)

	a := &App{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		router:     r,
		dispatcher: d,
	}

	if err := a.registerBuiltins(); err != nil {
		return nil, err
	}

	if cfg.RoutesFile != "" {
		m, err := config.LoadManifest(cfg.RoutesFile)
		if err != nil {
			return nil, err
		}
		if err := RegisterManifest(r, m); err != nil {
			return nil, err
		}
	}

	a.server = server.New(server.Config{
		Addr:               cfg.Addr(),
		Workers:            cfg.Workers,
		ReusePort:          cfg.ReusePort,
		Name:               Name,
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		IdleTimeout:        cfg.IdleTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, d.Handler, logger.Named("server"), opts...)

	return a, nil
}

// Router returns the application router.
func (a *App) Router() *router.Router { return a.router }

// Dispatcher returns the application dispatcher.
func (a *App) Dispatcher() *router.Dispatcher { return a.dispatcher }

// Server returns the application server.
func (a *App) Server() *server.Server { return a.server }

// Run starts the server and blocks until ctx is done or the server fails.
// On ctx cancellation the server is shut down within the configured
// shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Wait() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info("server stopped")
	return nil
}

type builtin struct {
	pattern string
	handler router.Handler
}

func (a *App) registerBuiltins() error {
	hello := router.HandlerFunc(helloHandler)

	routes := []builtin{
		{"/", hello},
		{"/hello", hello},
		{"/healthz", router.HandlerFunc(healthHandler)},
	}

	if a.cfg.MetricsEnabled {
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		routes = append(routes, builtin{a.cfg.MetricsPath, router.HandlerFunc(
			func(req *router.Request, _ *router.Response, _ router.Params) {
				metrics(req.Ctx())
			},
		)})
	}

	for _, rt := range routes {
		if _, err := a.router.Handle(rt.pattern, rt.handler); err != nil {
			return err
		}
	}

	return nil
}

func helloHandler(_ *router.Request, res *router.Response, _ router.Params) {
	_ = res.SendJSON(map[string]string{
		"msg":     "Hello world",
		"server":  Name,
		"version": Version,
	}, fasthttp.StatusOK)
}

func healthHandler(_ *router.Request, res *router.Response, _ router.Params) {
	_ = res.SendJSON(map[string]string{"status": "ok"}, fasthttp.StatusOK)
}

// RegisterManifest registers every manifest route on r. Registration stops
// at the first failing route.
func RegisterManifest(r *router.Router, m *config.Manifest) error {
	for _, spec := range m.Routes {
		if _, err := r.Handle(spec.Pattern, manifestHandler(spec)); err != nil {
			return err
		}
	}
	return nil
}

func manifestHandler(spec config.RouteSpec) router.Handler {
	return router.HandlerFunc(func(_ *router.Request, res *router.Response, params router.Params) {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		renderBody(buf, spec.Body, params)

		res.Status(spec.Status)
		res.SetContentType(spec.ContentType)
		res.SetBody(buf.B)
	})
}

// renderBody writes body to buf with {name} placeholders replaced by the
// bound values. Unknown placeholders are kept as they are.
func renderBody(buf *bytebufferpool.ByteBuffer, body string, params router.Params) {
	for {
		end := strings.IndexByte(body, '}')
		if end == -1 {
			break
		}

		open := strings.LastIndexByte(body[:end], '{')
		value, ok := "", false
		if open != -1 {
			value, ok = params[body[open+1:end]]
		}

		if ok {
			buf.WriteString(body[:open])
			buf.WriteString(value)
		} else {
			buf.WriteString(body[:end+1])
		}
		body = body[end+1:]
	}
	buf.WriteString(body)
}
