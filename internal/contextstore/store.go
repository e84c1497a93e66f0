// Package contextstore keeps offloaded conversation context in memory.
//
// Entries live for the process lifetime: there is no TTL and no eviction,
// only an explicit Clear. Every write is token-budgeted with the shared
// estimator so the store rejects payloads beyond the configured ceiling
// instead of growing without bound on a single oversized entry.
package contextstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/omarluq/lm-sidekick/internal/token"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultMaxTokens is the per-entry estimated-token ceiling when none is
// configured.
const DefaultMaxTokens = 32000

// recentEntries bounds the Stats listing of most recently written entries.
const recentEntries = 5

// Entry is one stored context payload.
type Entry struct {
	// ID is the caller-chosen identifier.
	ID string

	// Data is the stored text.
	Data string

	// CreatedAt is when the entry was written or last overwritten.
	CreatedAt time.Time

	// Tokens is the estimated token count of Data.
	Tokens int
}

// Stats is a point-in-time snapshot of the store.
type Stats struct {
	// Entries is the number of stored contexts.
	Entries int

	// TotalTokens is the sum of every entry's estimate.
	TotalTokens int

	// Recent lists the most recently written entries, newest first,
	// capped for display.
	Recent []Entry
}

// Store is a mutex-guarded in-memory context map. The zero value is not
// usable; construct with New.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry

	gateway   Completer
	maxTokens int
	log       zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a context store.
//
// gw serves the derived operations (Summarize, Analyze); it may be nil
// when only plain storage is used. maxTokens <= 0 uses DefaultMaxTokens.
// logger may be nil for no logging.
func New(gw Completer, maxTokens int, logger *zerolog.Logger) *Store {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "contextstore").Logger()
	}

	return &Store{
		entries:   make(map[string]Entry),
		gateway:   gw,
		maxTokens: maxTokens,
		log:       log,
		now:       time.Now,
	}
}

// MaxTokens returns the per-entry ceiling.
func (s *Store) MaxTokens() int {
	return s.maxTokens
}

// Store writes data under id, overwriting any prior entry, and returns the
// estimated token count. Payloads over the ceiling fail with TooLargeError
// and leave the store unchanged.
func (s *Store) Store(id, data string) (int, error) {
	tokens := token.Estimate(data)
	if tokens > s.maxTokens {
		s.log.Debug().
			Str("context_id", id).
			Int("tokens", tokens).
			Int("max_tokens", s.maxTokens).
			Msg("context rejected")
		return 0, &TooLargeError{Tokens: tokens, Max: s.maxTokens}
	}

	s.mu.Lock()
	s.entries[id] = Entry{
		ID:        id,
		Data:      data,
		CreatedAt: s.now(),
		Tokens:    tokens,
	}
	s.mu.Unlock()

	s.log.Debug().
		Str("context_id", id).
		Int("tokens", tokens).
		Msg("context stored")
	return tokens, nil
}

// Retrieve returns the entry under id, or ErrNotFound.
func (s *Store) Retrieve(id string) (Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Clear removes entries and returns the removed count. The pattern "*"
// removes everything; any other pattern removes the entries whose id
// contains it as a substring.
func (s *Store) Clear(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pattern == "*" {
		count := len(s.entries)
		s.entries = make(map[string]Entry)
		s.log.Info().Int("count", count).Msg("all contexts cleared")
		return count
	}

	count := 0
	for id := range s.entries {
		if strings.Contains(id, pattern) {
			delete(s.entries, id)
			count++
		}
	}
	s.log.Info().
		Str("pattern", pattern).
		Int("count", count).
		Msg("contexts cleared")
	return count
}

// Stats snapshots the store for display.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Entries: len(s.entries)}
	recent := lo.Values(s.entries)
	for _, entry := range recent {
		stats.TotalTokens += entry.Tokens
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentEntries {
		recent = recent[:recentEntries]
	}
	stats.Recent = recent
	return stats
}
