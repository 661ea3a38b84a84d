package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-serialisable values under string keys.
type Cache interface {
	// Get decodes the value stored under key into value.
	Get(key string, value any) error

	// Set stores value under key; a non-positive ttl never expires.
	Set(key string, value any, ttl time.Duration) error

	Delete(key string) error

	Close() error
}

// Entry is the on-disk envelope of a cached value.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (e *Entry) expiredAt(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// KeyBuilder builds namespaced cache keys.
type KeyBuilder struct {
	prefix string
}

func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{prefix: prefix}
}

// TimelineKey identifies one fetch of a repository's pull request timelines.
func (b *KeyBuilder) TimelineKey(owner, repo string, daysOld, batch int, day time.Time) string {
	return b.build("timeline", owner, repo, daysOld, batch, day.Format("2006-01-02"))
}

func (b *KeyBuilder) build(parts ...any) string {
	var sb strings.Builder
	sb.WriteString(b.prefix)
	for _, part := range parts {
		sb.WriteByte(':')
		fmt.Fprint(&sb, part)
	}
	return sb.String()
}

// NewDefaultCache returns a file cache in dir, or in the user cache
// directory when dir is empty.
func NewDefaultCache(dir string) (Cache, error) {
	if dir != "" {
		return NewFileCacheWithDir(dir)
	}
	return NewFileCache("review-turnaround")
}
