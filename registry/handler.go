// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/trackverify"
)

// ErrCodeInvalidRequest is returned for requests that cannot be parsed
const ErrCodeInvalidRequest int32 = 1

var _ trackverify.Handler = (*Handler)(nil)

// Handler serves registry requests with a Validator
type Handler struct {
	validator Validator
}

func NewHandler(validator Validator) *Handler {
	return &Handler{validator: validator}
}

func (h *Handler) Request(ctx context.Context, _ ids.NodeID, _ time.Time, requestBytes []byte) ([]byte, *trackverify.Error) {
	req, err := ParseValidateSignatureRequest(requestBytes)
	if err != nil {
		return nil, &trackverify.Error{
			Code:    ErrCodeInvalidRequest,
			Message: "failed to parse request: " + err.Error(),
		}
	}

	if appErr := h.validator.ValidateSignature(ctx, req); appErr != nil {
		return nil, appErr
	}
	return nil, nil
}
