package oauthflow

import (
	"sync"
	"time"
)

// PendingStore tracks in-flight authorization requests keyed by state.
// Take removes the entry on lookup so a state can bind at most one callback.
type PendingStore interface {
	Put(state, verifier string)
	Take(state string) (verifier string, ok bool)
}

// UsedCodeStore records authorization codes the moment they are first seen.
// MarkIfNew must be atomic: of any number of concurrent calls with the same
// code, exactly one returns true.
type UsedCodeStore interface {
	MarkIfNew(code string) bool
}

type pendingEntry struct {
	verifier  string
	expiresAt time.Time
}

// MemoryPendingStore is a mutex-guarded in-memory PendingStore with TTL.
// Suitable for single-process deployments; a shared cache is needed once
// callbacks land on more than one instance.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryPendingStore(ttl time.Duration) *MemoryPendingStore {
	return &MemoryPendingStore{
		entries: make(map[string]pendingEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryPendingStore) Put(state, verifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state] = pendingEntry{verifier: verifier, expiresAt: s.now().Add(s.ttl)}
}

// Take removes the entry whether or not it has expired; expired entries
// behave as not found.
func (s *MemoryPendingStore) Take(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[state]
	if !ok {
		return "", false
	}
	delete(s.entries, state)
	if s.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.verifier, true
}

// Sweep drops expired entries to bound memory growth.
func (s *MemoryPendingStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for state, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, state)
		}
	}
}

// MemoryUsedCodeStore is a mutex-guarded in-memory UsedCodeStore with TTL.
type MemoryUsedCodeStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // code -> expiry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryUsedCodeStore(ttl time.Duration) *MemoryUsedCodeStore {
	return &MemoryUsedCodeStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// MarkIfNew records the code and reports whether it was unseen. The check
// and the insert happen under one lock so concurrent duplicates cannot both
// observe an unseen code.
func (s *MemoryUsedCodeStore) MarkIfNew(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if expiry, ok := s.entries[code]; ok && now.Before(expiry) {
		return false
	}
	s.entries[code] = now.Add(s.ttl)
	return true
}

// Sweep drops expired entries.
func (s *MemoryUsedCodeStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for code, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, code)
		}
	}
}

type sweeper interface{ Sweep() }

// StartSweeper runs Sweep on each store at the given interval until the
// returned stop function is called.
func StartSweeper(interval time.Duration, stores ...sweeper) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, s := range stores {
					s.Sweep()
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
