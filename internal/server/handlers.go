package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rybkr/gitgraph/internal/command"
	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/git"
	"go.uber.org/zap"
)

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/healthz", s.handleHealth)
	router.Handle("/metrics", s.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Get("/graph", s.handleGraph)
		r.Get("/summary", s.handleSummary)
		r.Get("/ws", s.handleWebSocket)
	})

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleInfo serves repository metadata.
func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

// handleGraph collects a fresh graph. The optional limit query parameter
// follows the command's argument rules.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	limit, err := s.requestLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	graph, err := s.collect(r.Context(), limit)
	if err != nil {
		s.logger.Warn("graph request failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, statusFor(err), command.GitError(err))
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := s.requestLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	graph, err := s.collect(r.Context(), limit)
	if err != nil {
		writeError(w, statusFor(err), command.GitError(err))
		return
	}
	writeJSON(w, http.StatusOK, domain.Summarize(graph))
}

func (s *Server) requestLimit(r *http.Request) (int, error) {
	opts, err := command.ParseOptionsWithDefault([]string{r.URL.Query().Get("limit")}, s.limit)
	if err != nil {
		return 0, err
	}
	return opts.Limit, nil
}

// collect runs the collector and records the attempt.
func (s *Server) collect(ctx context.Context, limit int) (domain.GitGraph, error) {
	start := time.Now()
	graph, err := s.collector.Collect(ctx, limit)
	s.metrics.ObserveCollection(graph, err, time.Since(start))
	return graph, err
}

// statusFor maps collection failures to HTTP status codes: problems with
// the local git installation are server errors, failures reported by git
// or in its output are bad gateway.
func statusFor(err error) int {
	var (
		spawnErr    *git.SpawnError
		commandErr  *git.CommandError
		encodingErr *git.EncodingError
	)
	switch {
	case errors.Is(err, git.ErrBinaryMissing), errors.As(err, &spawnErr):
		return http.StatusInternalServerError
	case errors.As(err, &commandErr), errors.As(err, &encodingErr), git.IsParseError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorPayload{Error: err.Error()})
}
