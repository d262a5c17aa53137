// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry implements the request contract of the signer registry,
// the service that recovers a signature's signer and checks it belongs to
// a signer group.
package registry

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/luxfi/ids"
	"github.com/luxfi/trackverify"
	"github.com/luxfi/trackverify/instruction"
)

// HandlerID is the protocol identifier the registry serves requests on
const HandlerID = trackverify.RegistryHandlerID

const (
	idLen = len(ids.ID{})

	// fixed part of a ValidateSignatureRequest: four ids, the signature,
	// the recovery id and the message length
	requestHeaderLen = 4*idLen + instruction.SignatureLen + 1 + 4
)

var errShortRequest = errors.New("request too short")

// ValidateSignatureRequest asks the registry to recover the signer of
// Data and check it against the Signer record in SignerGroup.
type ValidateSignatureRequest struct {
	// ServiceID names the registry instance the request is addressed to
	ServiceID   ids.ID
	Signer      ids.ID
	SignerGroup ids.ID
	// Sysvar is an ambient context record the registry reads internally
	Sysvar ids.ID
	Data   instruction.SignatureData
}

// Validator validates signatures on behalf of the registry.
type Validator interface {
	// ValidateSignature returns nil if the signature recovers to a member
	// of the signer group, or an Error describing the rejection.
	ValidateSignature(ctx context.Context, req *ValidateSignatureRequest) *trackverify.Error
}

// MarshalValidateSignatureRequest marshals a request to bytes
func MarshalValidateSignatureRequest(req *ValidateSignatureRequest) []byte {
	// Format: serviceID(32) + signer(32) + group(32) + sysvar(32) +
	// signature(64) + recoveryID(1) + msgLen(4) + msg
	msgLen := len(req.Data.Message)
	buf := make([]byte, requestHeaderLen+msgLen)
	offset := 0
	for _, id := range []ids.ID{req.ServiceID, req.Signer, req.SignerGroup, req.Sysvar} {
		offset += copy(buf[offset:], id[:])
	}
	offset += copy(buf[offset:], req.Data.Signature[:])
	buf[offset] = req.Data.RecoveryID
	offset++
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(msgLen))
	copy(buf[offset+4:], req.Data.Message)
	return buf
}

// ParseValidateSignatureRequest unmarshals bytes to a request
func ParseValidateSignatureRequest(data []byte) (*ValidateSignatureRequest, error) {
	if len(data) < requestHeaderLen {
		return nil, fmt.Errorf("%w: %d", errShortRequest, len(data))
	}

	req := &ValidateSignatureRequest{}
	offset := 0
	for _, id := range []*ids.ID{&req.ServiceID, &req.Signer, &req.SignerGroup, &req.Sysvar} {
		offset += copy(id[:], data[offset:offset+idLen])
	}
	offset += copy(req.Data.Signature[:], data[offset:offset+instruction.SignatureLen])
	req.Data.RecoveryID = data[offset]
	offset++

	msgLen := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4
	if uint64(len(data)-offset) != uint64(msgLen) {
		return nil, fmt.Errorf("expected %d message bytes, got %d", msgLen, len(data)-offset)
	}
	req.Data.Message = slices.Clone(data[offset:])
	return req, nil
}
