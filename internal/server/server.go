package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"page-server/internal/handlers"
	"page-server/internal/state"
	"page-server/internal/websocket"
	"page-server/pkg/config"
	"page-server/web"
)

// NewMux registers every route of the page server
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Embedded assets
	mux.Handle("/static/", http.FileServer(http.FS(web.Static)))

	// API endpoints
	mux.HandleFunc("/api/page", handlers.PageInfoHandler)
	mux.HandleFunc("/api/verify", handlers.VerifyHandler)
	mux.HandleFunc("/api/state", handlers.ServerStateHandler)
	mux.HandleFunc("/healthz", handlers.HealthHandler)
	mux.HandleFunc("/ws", websocket.WSHandler)

	// Catch-all handler for the page (must be last)
	mux.HandleFunc("/", handlers.HomeHandler)

	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap is used by http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack forwards to the underlying writer.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// LogRequests logs method, path, status and duration of every request
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("Request served")
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg config.Config) error {
	if err := state.Init(web.IndexHTML); err != nil {
		return fmt.Errorf("init page state: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}

	return Serve(ctx, ln, cfg.ShutdownTimeout)
}

// Serve runs the page server on ln until ctx is cancelled
func Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           LogRequests(NewMux()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server started on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server")
	websocket.NotifyShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logrus.Info("Server stopped")
	return nil
}
