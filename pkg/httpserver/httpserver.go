// Package httpserver serves the current state of a local installation for inspection.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/recommend-sdk/currentstate/internal/logging"
	httputils "github.com/recommend-sdk/currentstate/internal/utils/http"
	v1 "github.com/recommend-sdk/currentstate/pkg/api/v1"
	"github.com/recommend-sdk/currentstate/pkg/model"
)

// Config holds server config
type Config struct {
	Port string
}

// Repository is the state the handler exposes.
type Repository interface {
	Get(ctx context.Context) (*model.CurrentState, error)
	Save(ctx context.Context, state *model.CurrentState) error
	Reset(ctx context.Context) error
}

type handler struct {
	repository Repository
}

// Server provides a gracefully-stoppable http server implementation. It is safe
// for concurrent use in goroutines.
type Server struct {
	ip       string
	port     string
	listener net.Listener
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx).Named("httpserver.state")

	switch r.Method {
	case http.MethodGet:
		state, err := h.repository.Get(ctx)
		if err != nil {
			logger.Warnf("Cannot read current state: %v", err)
			httputils.SendErrorResponse(w, r, err)
			return
		}
		httputils.SendResponse(w, r, v1.NewCurrentStateResponse(state))

	case http.MethodPost:
		var request v1.SaveStateRequest
		if !httputils.DecodeJSONOrReportError(w, r, &request) {
			return
		}

		logger.Debugf("Handling SaveState request of %v", request.DeviceID)

		if err := h.repository.Save(ctx, request.ToModel()); err != nil {
			logger.Warnf("Cannot save current state: %v", err)
			httputils.SendErrorResponse(w, r, err)
			return
		}
		httputils.SendEmptyResponse(w, r)

	case http.MethodDelete:
		if err := h.repository.Reset(ctx); err != nil {
			logger.Warnf("Cannot reset current state: %v", err)
			httputils.SendErrorResponse(w, r, err)
			return
		}
		httputils.SendEmptyResponse(w, r)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// NewHandler creates the HTTP handler serving GET, POST and DELETE of the current state
func NewHandler(repository Repository) http.Handler {
	return &handler{repository: repository}
}

// NewServer creates the HTTP server
func NewServer(ctx context.Context, config *Config) (*Server, error) {

	// Create the net listener first, so the connection ready when we return. This
	// guarantees that it can accept requests.
	addr := ":" + config.Port
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on %s: %w", addr, err)
	}

	return &Server{
		ip:       listener.Addr().(*net.TCPAddr).IP.String(),
		port:     strconv.Itoa(listener.Addr().(*net.TCPAddr).Port),
		listener: listener,
	}, nil
}

// Port returns the port the server listens on.
func (s *Server) Port() string {
	return s.port
}

// ServeHTTPHandler serves with the http handler
func (s *Server) ServeHTTPHandler(ctx context.Context, handler http.Handler) error {
	return s.ServeHTTP(ctx, &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	})
}

// ServeHTTP serves until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, srv *http.Server) error {
	logger := logging.FromContext(ctx)

	// Spawn a goroutine that listens for context closure. When the context is
	// closed, the server is stopped.
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()

		logger.Debugf("server.Serve: context closed")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()

		logger.Debugf("server.Serve: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	// Run the server. This will block until the provided context is closed.
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	logger.Debugf("server.Serve: serving stopped")

	// Return any errors that happened during shutdown.
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to shutdown: %w", err)
	default:
		return nil
	}
}
