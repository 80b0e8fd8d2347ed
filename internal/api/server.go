// Package api serves a local status endpoint for a supervision session: a
// JSON snapshot of the session state and a websocket stream of focus
// transitions, for external tooling.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"gamewrap/internal/logger"
	"gamewrap/internal/supervisor"
)

// Server exposes one session over HTTP.
type Server struct {
	router   *mux.Router
	session  *supervisor.Session
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer builds the route table for a session.
func NewServer(session *supervisor.Session) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		session: session,
		upgrader: websocket.Upgrader{
			// local status endpoint; any origin may read it
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/session", s.handleSession).Methods("GET")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
}

// Start listens on localhost and serves until Shutdown.
func (s *Server) Start(port int) error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: s.router,
	}
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.session.Snapshot())
}

// handleEvents streams focus transitions over a websocket until the client
// goes away or the session ends.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events := s.session.Subscribe()
	defer s.session.Unsubscribe(events)

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("websocket client gone")
			return
		}
	}
}
