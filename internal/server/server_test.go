// AngelaMos | 2026
// server_test.go

package server_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/config"
	"github.com/apptnu/portal/internal/health"
	"github.com/apptnu/portal/internal/server"
)

func TestServeAndShutdown(t *testing.T) {
	hh := health.NewHandler()
	srv := server.New(server.Config{
		ServerConfig: config.ServerConfig{
			Host:            "127.0.0.1",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		HealthHandler: hh,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	hh.RegisterRoutes(srv.Router())
	srv.Router().Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get(base + "/livez")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/panic")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background(), 10*time.Millisecond))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}

	rec, err := hh.Healthcheck(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "shutting_down", rec.Status)
}
