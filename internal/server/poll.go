package server

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/rybkr/gitgraph/internal/command"
	"github.com/rybkr/gitgraph/internal/domain"
	"go.uber.org/zap"
)

// pollRepo collects the graph right away, then on every tick and every
// refresh request, broadcasting only what changed.
func (s *Server) pollRepo(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.logger.Info("repository polling started", zap.Duration("period", s.pollInterval))
	s.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("repository polling stopped")
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		case <-s.refresh:
			s.pollOnce(ctx)
		}
	}
}

// requestRefresh asks the poller for an immediate collection. Requests
// made while one is already pending are merged.
func (s *Server) requestRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *Server) pollOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in poll loop", zap.Any("panic", r))
		}
	}()

	graph, err := s.collect(ctx, s.limit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.recordFailure(err)
		return
	}

	s.cacheMu.Lock()
	changed := s.cached.graph == nil || !graphEqual(*s.cached.graph, graph)
	recovered := s.cached.err != ""
	s.cached.err = ""
	var summary domain.Summary
	if changed {
		summary = domain.Summarize(graph)
		s.cached.graph = &graph
		s.cached.summary = summary
	}
	s.cacheMu.Unlock()

	if recovered {
		s.logger.Info("repository readable again")
	}
	if changed {
		s.logger.Info("repository graph changed, broadcasting update",
			zap.Int("commits", len(graph.Commits)),
			zap.Bool("truncated", graph.Truncated),
		)
		s.broadcastUpdate(MessageTypeGraph, graph)
		s.broadcastUpdate(MessageTypeSummary, summary)
	}
}

// recordFailure broadcasts an error message the first time a given
// failure is seen.
func (s *Server) recordFailure(err error) {
	msg := command.GitError(err).Error()

	s.cacheMu.Lock()
	repeated := s.cached.err == msg
	s.cached.err = msg
	s.cacheMu.Unlock()

	if repeated {
		return
	}
	s.logger.Warn("collecting graph failed", zap.Error(err))
	s.broadcastUpdate(MessageTypeError, ErrorPayload{Error: msg})
}

// graphEqual compares graphs by their serialized form.
func graphEqual(a, b domain.GitGraph) bool {
	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(aJSON) == string(bJSON)
}
