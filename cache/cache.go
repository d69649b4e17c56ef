// Package cache provides memoization for parsed programs.
// Caching can significantly speed up scenarios where the same source
// is evaluated multiple times, such as replaying run history or
// proving a program that was just run.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/deflang/go-deflang/parser"
)

// ProgramCache caches parsed programs keyed by a hash of the source
// text and the argument limit it was parsed under. Programs are
// immutable once parsed, so a cached program may be shared by
// concurrent callers.
type ProgramCache struct {
	mu        sync.Mutex
	cache     map[string]*parser.Program
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewProgramCache creates a cache with the specified maximum size.
// When the cache is full, an arbitrary entry is evicted.
// Set maxSize to 0 for an unlimited cache.
func NewProgramCache(maxSize int) *ProgramCache {
	return &ProgramCache{
		cache:   make(map[string]*parser.Program),
		maxSize: maxSize,
	}
}

// hashProgram creates a deterministic hash of the source text and the
// argument limit. The same source parsed under different limits can
// produce different results, so the limit is part of the key.
func hashProgram(source string, maxArguments int) string {
	if maxArguments <= 0 {
		maxArguments = parser.DefaultConfig().MaxArguments
	}

	h := sha256.New()
	h.Write([]byte(source))
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(maxArguments))
	h.Write(buf)

	return string(h.Sum(nil))
}

// Get retrieves a cached program for the given source and argument
// limit. Returns nil if not found.
func (c *ProgramCache) Get(source string, maxArguments int) *parser.Program {
	key := hashProgram(source, maxArguments)

	c.mu.Lock()
	defer c.mu.Unlock()

	if prog, ok := c.cache[key]; ok {
		c.hits++
		return prog
	}
	c.misses++
	return nil
}

// Put stores a parsed program in the cache.
func (c *ProgramCache) Put(source string, maxArguments int, prog *parser.Program) {
	key := hashProgram(source, maxArguments)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict if necessary (remove first key found)
	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			c.evictions++
			break
		}
	}

	c.cache[key] = prog
}

// GetOrCompute retrieves from cache or parses and caches the result.
// Parse failures are returned to the caller and never cached.
func (c *ProgramCache) GetOrCompute(source string, maxArguments int, compute func() (*parser.Program, error)) (*parser.Program, error) {
	// Try cache first
	if prog := c.Get(source, maxArguments); prog != nil {
		return prog, nil
	}

	// Parse and cache
	prog, err := compute()
	if err != nil {
		return nil, err
	}
	c.Put(source, maxArguments, prog)
	return prog, nil
}

// Clear removes all entries from the cache.
func (c *ProgramCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*parser.Program)
}

// Size returns the current number of cached entries.
func (c *ProgramCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Stats is a snapshot of cache usage counters.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// Stats returns cache statistics.
func (c *ProgramCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Size:      len(c.cache),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}
