// Package cache provides a file-backed TTL cache for API responses.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Entry is the on-disk envelope for a cached payload.
type Entry struct {
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  time.Time       `json:"fetched_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
}

// Expired reports whether the entry's TTL has elapsed at now.
func (e *Entry) Expired(now time.Time) bool {
	return now.Sub(e.FetchedAt) >= time.Duration(e.TTLSeconds)*time.Second
}

// Stats tracks cache performance counters for the metrics endpoint.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	StaleServes int64 `json:"stale_serves"`
}

// Store persists one JSON envelope file per key under a cache directory.
// Expired or unreadable entries behave as misses; they are never served
// through Get. There is no concurrent writer, so no locking is needed.
type Store struct {
	dir   string
	now   func() time.Time
	stats Stats
}

// NewStore creates the cache directory if needed and returns a store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Get returns the cached payload for key, or false if the key is absent,
// the envelope is unreadable, or the TTL has elapsed.
func (s *Store) Get(key string) ([]byte, bool) {
	entry, err := s.read(key)
	if err != nil {
		s.stats.Misses++
		return nil, false
	}
	if entry.Expired(s.now()) {
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	return entry.Payload, true
}

// GetStale returns a cached payload even when its TTL has elapsed, along
// with its age. Callers use this only as a fallback when the live source
// is unreachable; ordinary reads go through Get.
func (s *Store) GetStale(key string) ([]byte, time.Duration, bool) {
	entry, err := s.read(key)
	if err != nil {
		return nil, 0, false
	}
	s.stats.StaleServes++
	return entry.Payload, s.now().Sub(entry.FetchedAt), true
}

// Set writes the payload unconditionally, replacing any existing entry.
func (s *Store) Set(key string, payload []byte, ttl time.Duration) error {
	entry := Entry{
		Key:        key,
		Payload:    payload,
		FetchedAt:  s.now(),
		TTLSeconds: int64(ttl / time.Second),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit cache entry %s: %w", key, err)
	}
	s.stats.Sets++
	return nil
}

// Clear removes every cache entry. An already empty store is not an error.
func (s *Store) Clear() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("scan cache dir: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	log.Debug().Int("entries", len(matches)).Str("dir", s.dir).Msg("Cache cleared")
	return nil
}

// Stats returns a copy of the hit/miss counters.
func (s *Store) Stats() Stats {
	return s.stats
}

func (s *Store) read(key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt envelope: treat as a miss, never crash the run.
		log.Warn().Str("key", key).Err(err).Msg("Unreadable cache entry, treating as miss")
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	// Sanitization can map distinct keys onto one filename; the envelope
	// records which key wrote it, so a colliding read is a miss.
	if entry.Key != key {
		log.Warn().Str("key", key).Str("stored", entry.Key).
			Msg("Cache entry belongs to a different key, treating as miss")
		return nil, fmt.Errorf("cache entry %s holds key %s", key, entry.Key)
	}
	return &entry, nil
}

func (s *Store) path(key string) string {
	safe := strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_", "=", "_").Replace(key)
	safe = strings.Trim(safe, "_")
	return filepath.Join(s.dir, safe+".json")
}
