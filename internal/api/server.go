// Package api exposes the league data over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"laliga/ingestion/internal/service"

	"github.com/gorilla/mux"
)

// Server is the REST API server.
type Server struct {
	server *http.Server
}

// NewServer wires the routes and middleware.
func NewServer(port int, svc *service.Service, defaultSeason int) *Server {
	handler := NewHandler(svc, defaultSeason)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/matchups", handler.GetMatchups).Methods("GET")
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/status", handler.GetDataSourceStatus).Methods("GET")
	api.HandleFunc("/ingest/{season}", handler.TriggerIngest).Methods("POST")

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
	}
}

// Start starts the REST API server. Blocks until shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
