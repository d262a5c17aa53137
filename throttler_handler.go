// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trackverify

import (
	"context"
	"time"

	"github.com/luxfi/ids"
	log "github.com/luxfi/log"
)

var _ Handler = (*ThrottlerHandler)(nil)

func NewThrottlerHandler(handler Handler, throttler Throttler, log log.Logger) *ThrottlerHandler {
	return &ThrottlerHandler{
		handler:   handler,
		throttler: throttler,
		log:       log,
	}
}

type ThrottlerHandler struct {
	handler   Handler
	throttler Throttler
	log       log.Logger
}

func (t ThrottlerHandler) Request(ctx context.Context, nodeID ids.NodeID, deadline time.Time, requestBytes []byte) ([]byte, *Error) {
	if !t.throttler.Handle(nodeID) {
		t.log.Debug("dropping request",
			log.Stringer("nodeID", nodeID),
			log.UserString("reason", "throttled"),
		)
		return nil, ErrThrottled
	}

	return t.handler.Request(ctx, nodeID, deadline, requestBytes)
}
