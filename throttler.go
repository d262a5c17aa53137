// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trackverify

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/luxfi/ids"
)

var _ Throttler = (*RateThrottler)(nil)

// Throttler decides whether a node's request may be handled
type Throttler interface {
	// Handle returns true if a message from [nodeID] should be handled.
	Handle(nodeID ids.NodeID) bool
}

// RateThrottler allows each node [limit] requests per [period], refilled
// continuously.
type RateThrottler struct {
	limit rate.Limit
	burst int

	lock     sync.Mutex
	limiters map[ids.NodeID]*rate.Limiter
}

func NewRateThrottler(period time.Duration, limit int) *RateThrottler {
	return &RateThrottler{
		limit:    rate.Every(period / time.Duration(limit)),
		burst:    limit,
		limiters: make(map[ids.NodeID]*rate.Limiter),
	}
}

func (r *RateThrottler) Handle(nodeID ids.NodeID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	limiter, ok := r.limiters[nodeID]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[nodeID] = limiter
	}
	return limiter.Allow()
}
