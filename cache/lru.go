// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides in-memory caches for decoded records.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru, counting hits and misses of GetOrLoad.
type LRU struct {
	*lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{Cache: cache}, nil
}

// Loader defines loader to load value.
type Loader func(key any) (any, error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key any, loader Loader) (any, error) {
	if v, ok := l.Get(key); ok {
		l.stats.Hit()
		return v, nil
	}
	l.stats.Miss()
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}

// Stats returns the hit/miss stats of GetOrLoad.
func (l *LRU) Stats() *Stats {
	return &l.stats
}

// Stats counts the hits and misses of GetOrLoad.
type Stats struct {
	hit, miss atomic.Int64
	// permille of the hit rate seen by the last Report
	reported atomic.Int32
}

// Hit records a hit.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Counts is a point in time reading of Stats.
type Counts struct {
	Hit, Miss int64
}

// HitRate returns hits over lookups, 0 before any lookup.
func (c Counts) HitRate() float64 {
	if lookups := c.Hit + c.Miss; lookups > 0 {
		return float64(c.Hit) / float64(lookups)
	}
	return 0
}

// Report returns the current counts, and whether the hit rate moved by at
// least 0.1% since the previous Report.
func (cs *Stats) Report() (Counts, bool) {
	c := Counts{Hit: cs.hit.Load(), Miss: cs.miss.Load()}
	rate := int32(c.HitRate() * 1000)
	return c, cs.reported.Swap(rate) != rate
}
