// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"errors"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/trackverify"
)

var _ Validator = (*Client)(nil)

// Client calls a remote registry. Each ValidateSignature issues exactly one
// request and blocks until it is answered or ctx is done.
type Client struct {
	log    log.Logger
	client *trackverify.Client
	nodeID ids.NodeID
}

// NewClient returns a Client that sends requests to the registry hosted
// by nodeID. client must be bound to HandlerID.
func NewClient(logger log.Logger, client *trackverify.Client, nodeID ids.NodeID) *Client {
	return &Client{
		log:    logger,
		client: client,
		nodeID: nodeID,
	}
}

func (c *Client) ValidateSignature(ctx context.Context, req *ValidateSignatureRequest) *trackverify.Error {
	done := make(chan *trackverify.Error, 1)
	onResponse := func(_ context.Context, _ ids.NodeID, _ []byte, err error) {
		if err == nil {
			done <- nil
			return
		}

		var appErr *trackverify.Error
		if errors.As(err, &appErr) {
			done <- appErr
			return
		}
		done <- unexpected(err)
	}

	if err := c.client.Request(ctx, c.nodeID, MarshalValidateSignatureRequest(req), onResponse); err != nil {
		c.log.Warn("failed to send signature validation request",
			log.Stringer("nodeID", c.nodeID),
			log.Stringer("signer", req.Signer),
			log.Err(err),
		)
		return unexpected(err)
	}

	select {
	case appErr := <-done:
		return appErr
	case <-ctx.Done():
		return unexpected(ctx.Err())
	}
}

func unexpected(err error) *trackverify.Error {
	return &trackverify.Error{
		Code:    trackverify.ErrUnexpected.Code,
		Message: err.Error(),
	}
}
