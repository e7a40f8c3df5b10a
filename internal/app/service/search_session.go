package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
)

// SearchSession turns a stream of keystrokes into debounced provider
// searches. A search only fires after the configured quiescence for a
// non-empty trimmed query; an empty query disables the session and clears
// its results. Responses that arrive for a superseded query are discarded
// via a monotonic sequence number, so a slow early response can never
// overwrite the results of a newer query.
type SearchSession struct {
	cache    *QueryCache
	debounce time.Duration
	onUpdate func()
	logger   port.Logger

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	query   string
	results entity.SearchResult
	err     error
}

// NewSearchSession creates a session with the given quiescence window.
// onUpdate (optional) is invoked after each committed result or error.
func (q *QueryCache) NewSearchSession(debounce time.Duration, onUpdate func(), logger port.Logger) *SearchSession {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	s := &SearchSession{
		cache:    q,
		debounce: debounce,
		onUpdate: onUpdate,
		logger:   logger,
	}
	s.results.Normalize()
	return s
}

// SetQuery records the latest input. The provider search fires only after
// the debounce window passes with no further input.
func (s *SearchSession) SetQuery(query string) {
	trimmed := strings.TrimSpace(query)

	s.mu.Lock()
	s.query = trimmed
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq

	if trimmed == "" {
		s.results = entity.SearchResult{}
		s.results.Normalize()
		s.err = nil
		notify := s.onUpdate
		s.mu.Unlock()
		if notify != nil {
			notify()
		}
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(seq, trimmed)
	})
	s.mu.Unlock()
}

func (s *SearchSession) run(seq uint64, query string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	results, err := s.cache.SearchCoins(context.Background(), query)

	s.mu.Lock()
	if seq != s.seq {
		// A newer query was issued while this one was in flight.
		s.logger.Debug("Dropping stale search response", "query", query)
		s.mu.Unlock()
		return
	}
	s.results = results
	s.err = err
	notify := s.onUpdate
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Search failed", "query", query, "error", err)
	}
	if notify != nil {
		notify()
	}
}

// Results returns the current query together with the latest committed
// results or error.
func (s *SearchSession) Results() (query string, results entity.SearchResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.results, s.err
}

// Close stops any pending debounce timer.
func (s *SearchSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}
