// Copyright 2025 The medlit authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/medlit/medlit/core"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCapacity = 128
	defaultTTL      = time.Hour
)

// Entry holds everything computed for one search: the retrieved articles,
// their embedding vectors, and the per-article findings. Keeping them
// together means a follow-up question never re-fetches or re-embeds.
type Entry struct {
	Query        core.Query
	Results      *core.ResultSet
	Vectors      map[string][]float32
	Findings     []core.Finding
	FailedEmbeds []string
}

// Cache is an in-memory, TTL-bounded LRU of search entries with concurrent
// fill deduplication. Identical queries in flight at the same time share one
// fill; failed fills are never cached.
type Cache struct {
	entries *expirable.LRU[string, *Entry]
	group   singleflight.Group
	logger  *slog.Logger

	mu       sync.RWMutex
	bindings map[string]string // conversation ID -> entry key
	closed   bool
}

// Option configures a Cache.
type Option func(*config) error

type config struct {
	capacity int
	ttl      time.Duration
	logger   *slog.Logger
}

// WithCapacity sets the maximum number of cached entries.
func WithCapacity(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return ErrInvalidCapacity
		}
		c.capacity = n
		return nil
	}
}

// WithTTL sets how long an entry stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) error {
		if ttl <= 0 {
			return ErrInvalidTTL
		}
		c.ttl = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCache creates a cache with the given options.
func NewCache(opts ...Option) (*Cache, error) {
	cfg := &config{
		capacity: defaultCapacity,
		ttl:      defaultTTL,
		logger:   slog.Default().With("component", "cache"),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Cache{
		entries:  expirable.NewLRU[string, *Entry](cfg.capacity, nil, cfg.ttl),
		bindings: make(map[string]string),
		logger:   cfg.logger,
	}, nil
}

// KeyFor derives the cache key for a query. Queries differing only in
// whitespace or letter case share a key; filters are part of the identity.
func KeyFor(query core.Query) string {
	parts := []string{query.Normalized()}
	if !query.From.IsZero() {
		parts = append(parts, "from="+query.From.Format("2006-01-02"))
	}
	if !query.To.IsZero() {
		parts = append(parts, "to="+query.To.Format("2006-01-02"))
	}
	if query.Journal != "" {
		parts = append(parts, "journal="+strings.ToLower(query.Journal))
	}
	return strings.Join(parts, "|")
}

// GetOrFill returns the cached entry for the query, or runs fill to compute
// it. Concurrent calls for the same key share a single fill. The boolean
// reports whether the entry came from the cache. A fill error is returned to
// every waiting caller and nothing is cached.
func (c *Cache) GetOrFill(ctx context.Context, query core.Query, fill func(ctx context.Context) (*Entry, error)) (*Entry, bool, error) {
	if fill == nil {
		return nil, false, ErrFillRequired
	}
	if err := c.checkOpen(); err != nil {
		return nil, false, err
	}

	key := KeyFor(query)
	if entry, ok := c.entries.Get(key); ok {
		c.logger.Debug("cache hit", "key", key)
		return entry, true, nil
	}

	var fromCache bool
	result, err, _ := c.group.Do(key, func() (any, error) {
		// Another flight may have filled the entry while we queued.
		if entry, ok := c.entries.Get(key); ok {
			fromCache = true
			return entry, nil
		}

		entry, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.checkOpen(); err != nil {
			return nil, err
		}
		c.entries.Add(key, entry)
		c.logger.Debug("cache fill", "key", key)
		return entry, nil
	})
	if err != nil {
		return nil, false, err
	}
	return result.(*Entry), fromCache, nil
}

// Get returns the cached entry for the query without filling.
func (c *Cache) Get(query core.Query) (*Entry, bool) {
	if c.checkOpen() != nil {
		return nil, false
	}
	return c.entries.Get(KeyFor(query))
}

// Bind associates a conversation with the entry for the given query, so
// follow-up questions know which search they refer to.
func (c *Cache) Bind(conversationID string, query core.Query) error {
	if conversationID == "" {
		return ErrConversationRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.bindings[conversationID] = KeyFor(query)
	return nil
}

// GetForConversation returns the entry bound to a conversation. The second
// return is false when the conversation has no binding or the entry has
// expired or been evicted since binding.
func (c *Cache) GetForConversation(conversationID string) (*Entry, bool) {
	c.mu.RLock()
	key, bound := c.bindings[conversationID]
	closed := c.closed
	c.mu.RUnlock()

	if closed || !bound {
		return nil, false
	}
	return c.entries.Get(key)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Close drops all entries and bindings. Subsequent operations return ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.bindings = nil
	c.entries.Purge()
	return nil
}

func (c *Cache) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
