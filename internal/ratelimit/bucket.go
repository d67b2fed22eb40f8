/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package ratelimit implements a token bucket with check/left/add and a
// bounded refill window, used both for per-component byte-rate throttling
// and per-IP connection-rate throttling.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Bucket is a token bucket refilling `total` tokens every `window`, with an
// extra `wait` cooldown once exhausted before Check() reports true again —
// the same three knobs as jabberd2's rate_new(total, seconds, wait).
type Bucket struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	wait        time.Duration
	deniedUntil time.Time
}

// New builds a Bucket allowing `total` tokens per `window`, with `wait`
// added to the cooldown once the bucket empties. total == 0 disables the
// limiter (Check always true, Left always returns max int).
func New(total int, window, wait time.Duration) *Bucket {
	if total <= 0 {
		return &Bucket{}
	}
	limit := rate.Limit(float64(total) / window.Seconds())
	return &Bucket{
		limiter: rate.NewLimiter(limit, total),
		wait:    wait,
	}
}

// Check reports whether the bucket currently has capacity, without
// consuming any tokens. Used by the reader and the acceptor before
// deciding whether to proceed.
func (b *Bucket) Check() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Before(b.deniedUntil) {
		return false
	}
	r := b.limiter.ReserveN(now, 1)
	ok := r.OK() && r.DelayFrom(now) == 0
	r.Cancel()
	if !ok && b.wait > 0 {
		b.deniedUntil = now.Add(b.wait)
	}
	return ok
}

// Left reports how many tokens are currently available, clamped to >= 0.
// The reader clamps a read length to this value.
func (b *Bucket) Left() int {
	if b == nil || b.limiter == nil {
		return int(^uint(0) >> 1) // no limit configured
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tokens := int(b.limiter.TokensAt(time.Now()))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// Add records the consumption of n tokens (e.g. bytes actually read).
func (b *Bucket) Add(n int) {
	if b == nil || b.limiter == nil || n <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.limiter.ReserveN(time.Now(), n)
}
