package app

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap/zaptest"

	router "github.com/pedia/picoroute"
	"github.com/pedia/picoroute/internal/config"
	"github.com/pedia/picoroute/internal/server"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:            "127.0.0.1",
		Port:            0,
		Workers:         1,
		ShutdownTimeout: 5 * time.Second,
		MetricsEnabled:  true,
		MetricsPath:     "/metrics",
	}
}

func serve(a *App, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(uri)
	a.Dispatcher().Handler(ctx)
	return ctx
}

func TestNewNilConfig(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestBuiltinRoutes(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"/", "/healthz", "/hello", "/metrics"}, a.Router().List())

	for _, uri := range []string{"/", "/hello", "/hello/"} {
		ctx := serve(a, uri)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), uri)

		var body map[string]string
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
		assert.Equal(t, "Hello world", body["msg"])
		assert.Equal(t, Name, body["server"])
		assert.Equal(t, Version, body["version"])
	}

	ctx := serve(a, "/healthz")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))

	ctx = serve(a, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = serve(a, "/metrics")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "picoroute_requests_total")
	assert.Contains(t, string(ctx.Response.Body()), "picoroute_routes 4")
	assert.Contains(t, string(ctx.Response.Body()), "go_goroutines")
}

func TestMetricsDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MetricsEnabled = false

	a, err := New(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/", "/healthz", "/hello"}, a.Router().List())
	assert.Equal(t, fasthttp.StatusNotFound, serve(a, "/metrics").Response.StatusCode())
}

func TestMetricsPathConflict(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MetricsPath = "/hello"

	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, router.ErrDuplicateRoute)
}

func writeManifest(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestManifestRoutes(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RoutesFile = writeManifest(t, `
routes:
  - pattern: /post/new
    body: new post form
  - pattern: /post/{id:[0-9]+}
    content_type: application/json
    body: '{"id":"{id}"}'
  - pattern: /{year}/{month}/post/{slug}
    status: 201
    body: "{slug} from {month}/{year} {unknown}"
`)

	a, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := serve(a, "/post/new")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "new post form", string(ctx.Response.Body()))
	assert.Equal(t, "text/plain; charset=utf-8", string(ctx.Response.Header.ContentType()))

	ctx = serve(a, "/post/42")
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assert.JSONEq(t, `{"id":"42"}`, string(ctx.Response.Body()))
	assert.Equal(t, "/post/{id:[0-9]+}", ctx.UserValue(router.MatchedRoutePathParam))

	ctx = serve(a, "/post/abc")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = serve(a, "/2024/03/post/hello")
	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.Equal(t, "hello from 03/2024 {unknown}", string(ctx.Response.Body()))
}

func TestManifestErrors(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RoutesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg = testConfig()
	cfg.RoutesFile = writeManifest(t, "routes:\n  - pattern: /hello\n")
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, router.ErrDuplicateRoute)

	cfg = testConfig()
	cfg.RoutesFile = writeManifest(t, "routes:\n  - pattern: /a/{x}\n  - pattern: /a/{y}/b\n")
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, router.ErrParamConflict)
}

func TestRenderBody(t *testing.T) {
	t.Parallel()

	params := router.Params{"id": "7", "name": "go"}

	tests := []struct {
		body string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"{id}", "7"},
		{"id={id} name={name}", "id=7 name=go"},
		{"{missing} {id}", "{missing} 7"},
		{"open { brace", "open { brace"},
		{"close } brace {id}", "close } brace 7"},
		{`{"id":"{id}"}`, `{"id":"7"}`},
	}

	for _, tt := range tests {
		buf := bytebufferpool.Get()
		renderBody(buf, tt.body, params)
		assert.Equal(t, tt.want, buf.String(), tt.body)
		bytebufferpool.Put(buf)
	}
}

func TestRunServesUntilCanceled(t *testing.T) {
	t.Parallel()

	ln := fasthttputil.NewInmemoryListener()
	listen := func(network, addr string) (net.Listener, error) { return ln, nil }

	a, err := New(testConfig(), zaptest.NewLogger(t), server.WithListenFunc(listen))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	client := &fasthttp.HostClient{
		Addr: "picoroute.test",
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://picoroute.test/healthz")
	req.SetConnectionClose()

	require.Eventually(t, func() bool {
		return client.Do(req, resp) == nil
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Equal(t, Name, string(resp.Header.Server()))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
