package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// upgrader permits any origin: the driver is an operator tool, not a
// browser-facing product, so the usual CSRF-via-websocket concern
// odin-ws-server's gorilla setup guards against does not apply here.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is chanx-driver's observability surface: Prometheus metrics
// plus a JWT-gated live stats stream, grounded on
// go-server/internal/server/server.go's route wiring.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	tokens     *TokenManager
	logger     zerolog.Logger
}

// NewServer builds a Server listening on addr. Call Run to start
// serving and begin publishing stats.
func NewServer(addr string, tokens *TokenManager, logger zerolog.Logger) *Server {
	hub := NewHub(logger)
	s := &Server{hub: hub, tokens: tokens, logger: logger}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/stream", s.handleStream)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // streaming connection
	}

	return s
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("observe: websocket upgrade failed")
		return
	}

	c := &client{id: claims.Subject, conn: conn, send: make(chan []byte, 32)}
	s.hub.register <- c
	go c.writePump(s.hub.unregister)
	go c.readPump(s.hub.unregister)
}

// Run starts the underlying HTTP server, running a stats hub alongside
// it, until ctx is cancelled; callers typically drive this from an
// errgroup so it shares a lifetime with the rest of the driver.
func (s *Server) Run(ctx context.Context, watched []Watched, interval time.Duration) error {
	go s.hub.Run(ctx)
	go s.hub.PublishLoop(ctx, watched, interval)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("observe: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
