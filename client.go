// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trackverify

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

var ErrRequestPending = errors.New("request pending")

// ResponseCallback is called upon receiving a response for a request
// issued by Client.
// Callers should check [err] to see whether the request failed or not.
type ResponseCallback func(
	ctx context.Context,
	nodeID ids.NodeID,
	responseBytes []byte,
	err error,
)

// Client issues requests for a single handler id.
type Client struct {
	handlerIDStr  string
	handlerPrefix []byte
	router        *router
	sender        Sender
}

// Request issues a request to nodeID. [onResponse] is invoked exactly once,
// upon an error or a response, unless sending fails.
func (c *Client) Request(
	ctx context.Context,
	nodeID ids.NodeID,
	requestBytes []byte,
	onResponse ResponseCallback,
) error {
	// SendRequest is non-blocking, so a cancelled ctx must not leave a
	// request registered that was never sent.
	ctxWithoutCancel := context.WithoutCancel(ctx)

	c.router.lock.Lock()
	defer c.router.lock.Unlock()

	requestID := c.router.requestID
	if _, ok := c.router.pendingRequests[requestID]; ok {
		return fmt.Errorf(
			"failed to issue request with request id %d: %w",
			requestID,
			ErrRequestPending,
		)
	}

	// registered before sending so a fast response finds its callback
	c.router.pendingRequests[requestID] = pendingRequest{
		handlerID: c.handlerIDStr,
		callback:  onResponse,
	}
	if err := c.sender.SendRequest(
		ctxWithoutCancel,
		set.Of(nodeID),
		requestID,
		PrefixMessage(c.handlerPrefix, requestBytes),
	); err != nil {
		delete(c.router.pendingRequests, requestID)
		c.router.log.Error("unexpected error when sending message",
			log.UserString("op", "Request"),
			log.Stringer("nodeID", nodeID),
			log.Uint32("requestID", requestID),
			log.Err(err),
		)
		return err
	}

	c.router.requestID += 2
	return nil
}

// PrefixMessage prefixes the original message with the handler identifier.
//
// Only request messages need to be prefixed. Responses are matched to their
// handler by request id.
func PrefixMessage(prefix, msg []byte) []byte {
	messageBytes := make([]byte, len(prefix)+len(msg))
	copy(messageBytes, prefix)
	copy(messageBytes[len(prefix):], msg)
	return messageBytes
}
