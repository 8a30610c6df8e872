package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap/zaptest"
)

type inmemListeners struct {
	mu        sync.Mutex
	listeners []*fasthttputil.InmemoryListener
	failAt    int
}

func (l *inmemListeners) listen(network, addr string) (net.Listener, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failAt > 0 && len(l.listeners)+1 == l.failAt {
		return nil, errors.New("address in use")
	}

	ln := fasthttputil.NewInmemoryListener()
	l.listeners = append(l.listeners, ln)
	return ln, nil
}

func (l *inmemListeners) client(i int) *fasthttp.HostClient {
	ln := l.listeners[i]
	return &fasthttp.HostClient{
		Addr: "picoroute.test",
		Dial: func(string) (net.Conn, error) {
			return ln.Dial()
		},
	}
}

// get issues a single non keep-alive request.
func get(c *fasthttp.HostClient, uri string) (int, string, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.SetConnectionClose()

	if err := c.Do(req, resp); err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), string(resp.Body()), nil
}

func echoPath(ctx *fasthttp.RequestCtx) {
	ctx.SetBodyString("path=" + string(ctx.Path()))
}

func shutdown(t *testing.T, s *Server) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Shutdown(ctx))
}

func TestServerServesRequests(t *testing.T) {
	t.Parallel()

	lns := &inmemListeners{}
	s := New(Config{Addr: "picoroute.test", Workers: 4, Name: "picoroute"}, echoPath, zaptest.NewLogger(t),
		WithListenFunc(lns.listen))

	require.NoError(t, s.Start())

	// without SO_REUSEPORT all workers share one listener
	require.Len(t, lns.listeners, 1)
	assert.Len(t, s.Addrs(), 1)

	status, body, err := get(lns.client(0), "http://picoroute.test/post/1")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "path=/post/1", body)

	shutdown(t, s)
}

func TestServerReusePortOpensListenerPerWorker(t *testing.T) {
	t.Parallel()

	lns := &inmemListeners{}
	s := New(Config{Addr: "picoroute.test", Workers: 3, ReusePort: true}, echoPath, zaptest.NewLogger(t),
		WithListenFunc(lns.listen))

	require.NoError(t, s.Start())
	require.Len(t, lns.listeners, 3)
	assert.Len(t, s.Addrs(), 3)

	for i := range lns.listeners {
		status, body, err := get(lns.client(i), "http://picoroute.test/hello")
		require.NoError(t, err)
		assert.Equal(t, fasthttp.StatusOK, status)
		assert.Equal(t, "path=/hello", body)
	}

	shutdown(t, s)
}

func TestServerStartListenError(t *testing.T) {
	t.Parallel()

	lns := &inmemListeners{failAt: 2}
	s := New(Config{Addr: "picoroute.test", Workers: 3, ReusePort: true}, echoPath, nil,
		WithListenFunc(lns.listen))

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")

	// the listener opened before the failure is closed again
	require.Len(t, lns.listeners, 1)
	_, err = lns.listeners[0].Accept()
	assert.Error(t, err)

	assert.Empty(t, s.Addrs())
	assert.NoError(t, s.Wait())
}

func TestServerStartTwice(t *testing.T) {
	t.Parallel()

	lns := &inmemListeners{}
	s := New(Config{Addr: "picoroute.test"}, echoPath, nil, WithListenFunc(lns.listen))

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	shutdown(t, s)
}

func TestServerShutdownBeforeFirstRequest(t *testing.T) {
	t.Parallel()

	lns := &inmemListeners{}
	s := New(Config{Addr: "picoroute.test", Workers: 2, ReusePort: true}, echoPath, nil,
		WithListenFunc(lns.listen))

	require.NoError(t, s.Start())
	shutdown(t, s)
}
