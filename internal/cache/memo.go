// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// memo.go provides a process-local single-value cache with a TTL and
// rebuild coalescing. The category tree and the flat category listing are
// each backed by one Memo: expensive rebuilds happen at most once per
// expiry, and concurrent callers arriving on a cold or expired cache all
// wait for the same in-flight rebuild instead of racing their own.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultMemoTTL is how long a snapshot is served before a rebuild.
const DefaultMemoTTL = 5 * time.Minute

// Memo caches a single value of type T for up to ttl. Rebuilds are
// deduplicated with singleflight. The zero clock defaults to time.Now;
// tests inject their own.
type Memo[T any] struct {
	mu        sync.RWMutex
	value     T
	fetchedAt time.Time
	ttl       time.Duration
	clock     func() time.Time
	group     singleflight.Group
}

// NewMemo creates a Memo with the given TTL. A zero ttl uses DefaultMemoTTL.
func NewMemo[T any](ttl time.Duration) *Memo[T] {
	if ttl == 0 {
		ttl = DefaultMemoTTL
	}
	return &Memo[T]{ttl: ttl, clock: time.Now}
}

// SetClock replaces the time source. Test hook; not safe to call
// concurrently with Get.
func (m *Memo[T]) SetClock(clock func() time.Time) {
	m.clock = clock
}

// Get returns the cached value if it is younger than the TTL, otherwise
// rebuilds it with load. Concurrent callers during a rebuild share one
// load call and its result; the load runs detached from the initiating
// caller's cancellation, so one cancelled request cannot fail every
// coalesced waiter. A failed rebuild is returned as-is: the memo fails
// closed rather than serving a stale snapshot.
func (m *Memo[T]) Get(ctx context.Context, load func(ctx context.Context) (T, error)) (T, error) {
	m.mu.RLock()
	if !m.fetchedAt.IsZero() && m.clock().Sub(m.fetchedAt) < m.ttl {
		v := m.value
		m.mu.RUnlock()
		return v, nil
	}
	m.mu.RUnlock()

	// All keys are the same: there is only one value to build.
	v, err, _ := m.group.Do("memo", func() (any, error) {
		// Another caller may have finished the rebuild while we waited.
		m.mu.RLock()
		if !m.fetchedAt.IsZero() && m.clock().Sub(m.fetchedAt) < m.ttl {
			v := m.value
			m.mu.RUnlock()
			return v, nil
		}
		m.mu.RUnlock()

		// The rebuild is shared by every waiter, so it must not die with
		// whichever caller happened to start it.
		fresh, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.value = fresh
		m.fetchedAt = m.clock()
		m.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate clears the cache unconditionally. The next Get pays the full
// rebuild cost.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	var zero T
	m.value = zero
	m.fetchedAt = time.Time{}
	m.mu.Unlock()
}
