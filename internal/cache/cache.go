package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores verification results so repeated content skips inference.
type Cache interface {
	// GetReport retrieves a cached entry by key
	// Returns nil if not found
	GetReport(ctx context.Context, key string) (*Entry, error)

	// SetReport stores an entry with TTL
	SetReport(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	// Purge removes every cached entry, e.g. after a model rebuild
	Purge(ctx context.Context) (int, error)

	// Close closes the cache connection
	Close() error
}

// Entry is a cached verification outcome.
type Entry struct {
	Mode          string `json:"mode"`
	LocalAnalysis string `json:"local_analysis,omitempty"`
	Review        string `json:"review,omitempty"`
	Result        string `json:"result"`
}

// GenerateKey derives a stable key from the verification mode, the model and the content.
func GenerateKey(mode, model, content string) string {
	h := sha256.New()
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
