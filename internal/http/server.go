// Package http exposes the attendance ledger as a small JSON API for
// the local presentation layer. There is no auth and no rate limiting:
// the server binds for a single local user, and the device-lock gate
// lives entirely in the client.
package http

import (
	"net/http"
	"time"

	"anwesenheit/internal/ledger"
	applog "anwesenheit/internal/log"
)

type Server struct {
	http.Server
	ledger *ledger.Service
}

func NewServer(addr string, svc *ledger.Service, logger *applog.Logger) *Server {
	s := &Server{
		ledger: svc,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/employees", s.handleListEmployees)
	mux.HandleFunc("POST /api/employees", s.handleCreateEmployee)
	mux.HandleFunc("GET /api/employees/{id}", s.handleGetEmployee)
	mux.HandleFunc("PUT /api/employees/{id}", s.handleUpdateEmployee)
	mux.HandleFunc("DELETE /api/employees/{id}", s.handleDeleteEmployee)
	mux.HandleFunc("PUT /api/employees/{id}/entries/{date}", s.handleUpsertEntry)
	mux.HandleFunc("GET /api/employees/{id}/months/{year}/{month}", s.handleMonthReport)
	mux.HandleFunc("GET /api/employees/{id}/years/{year}", s.handleYearReport)
	mux.HandleFunc("GET /api/overview/{year}/{month}", s.handleMonthOverview)
	mux.HandleFunc("GET /api/overview/{year}", s.handleYearOverview)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.Addr = addr
	s.Handler = applog.Middleware(logger.WithComponent("http"))(mux)

	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16 // 64KB

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
