// Copyright 2025 Poiesic Systems
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


// Package cache provides the bounded result cache for resolved queries.
//
// Entries are keyed by normalized query text and expire by LRU pressure or
// TTL, whichever comes first. The cache is split into fixed shards hashed
// by key, so concurrent lookups contend only within a shard. A snapshot
// swap purges every shard: cached results are only valid against the index
// snapshot that produced them.
package cache

import (
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/poiesic/resolvit/core"
)

const shardCount = 16

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// HitRate returns hits / (hits + misses), or 0 before any lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a sharded LRU+TTL cache of match results. Safe for concurrent
// use.
type Cache struct {
	shards [shardCount]*expirable.LRU[string, *core.MatchResult]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache holding at most size entries in total, each living at
// most ttl. Size is split evenly across shards, minimum one entry per
// shard.
func New(size int, ttl time.Duration) *Cache {
	perShard := size / shardCount
	if perShard < 1 {
		perShard = 1
	}

	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = expirable.NewLRU[string, *core.MatchResult](perShard, nil, ttl)
	}
	return c
}

// Get returns the cached result for the key, if present and unexpired.
func (c *Cache) Get(key string) (*core.MatchResult, bool) {
	result, ok := c.shard(key).Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return result, ok
}

// Put stores a result under the key, displacing the shard's least recently
// used entry if full.
func (c *Cache) Put(key string, result *core.MatchResult) {
	c.shard(key).Add(key, result)
}

// Purge drops every entry in every shard. Hit/miss counters survive.
func (c *Cache) Purge() {
	for _, shard := range c.shards {
		shard.Purge()
	}
}

// Stats reports cumulative hit/miss counts and the current entry count.
func (c *Cache) Stats() Stats {
	stats := Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	for _, shard := range c.shards {
		stats.Entries += shard.Len()
	}
	return stats
}

func (c *Cache) shard(key string) *expirable.LRU[string, *core.MatchResult] {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}
