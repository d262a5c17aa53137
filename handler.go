// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trackverify

import (
	"context"
	"time"

	"github.com/luxfi/ids"
	log "github.com/luxfi/log"
)

// Standardized identifiers for request handlers
const (
	// VerifyHandlerID serves inbound verification instructions
	VerifyHandlerID = iota
	// RegistryHandlerID serves the signature validation service
	RegistryHandlerID
)

var (
	_ Handler = (*NoOpHandler)(nil)
	_ Handler = (*TestHandler)(nil)
)

// Handler is the server-side logic for a request protocol.
type Handler interface {
	// Request is called when handling a request message.
	// Sends a response with the response corresponding to requestBytes or
	// an application-defined error.
	Request(
		ctx context.Context,
		nodeID ids.NodeID,
		deadline time.Time,
		requestBytes []byte,
	) ([]byte, *Error)
}

// NoOpHandler drops all messages
type NoOpHandler struct{}

func (NoOpHandler) Request(context.Context, ids.NodeID, time.Time, []byte) ([]byte, *Error) {
	return nil, nil
}

// responder automatically sends the response for a given request
type responder struct {
	Handler
	handlerID uint64
	log       log.Logger
	sender    Sender
}

// Request calls the underlying handler and sends back the response to nodeID
func (r *responder) Request(ctx context.Context, nodeID ids.NodeID, requestID uint32, deadline time.Time, request []byte) error {
	response, err := r.Handler.Request(ctx, nodeID, deadline, request)
	if err != nil {
		r.log.Debug("failed to handle message",
			log.UserString("messageOp", "Request"),
			log.Stringer("nodeID", nodeID),
			log.Uint32("requestID", requestID),
			log.Time("deadline", deadline),
			log.Uint64("handlerID", r.handlerID),
			log.Binary("message", request),
			log.Err(err),
		)
		return r.sender.SendError(ctx, nodeID, requestID, err.Code, err.Message)
	}

	return r.sender.SendResponse(ctx, nodeID, requestID, response)
}

type TestHandler struct {
	RequestF func(ctx context.Context, nodeID ids.NodeID, deadline time.Time, requestBytes []byte) ([]byte, *Error)
}

func (t TestHandler) Request(ctx context.Context, nodeID ids.NodeID, deadline time.Time, requestBytes []byte) ([]byte, *Error) {
	if t.RequestF == nil {
		return nil, nil
	}

	return t.RequestF(ctx, nodeID, deadline, requestBytes)
}
