// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package instruction implements the binary payloads accepted by the
// verification gate and forwarded to the verification service.
package instruction

import (
	"errors"
	"fmt"
)

// SignatureLen is the size of a raw signature
const SignatureLen = 64

// Tag identifies an instruction variant on the wire
type Tag uint8

const (
	ExampleInstructionTag Tag = iota
)

var (
	ErrUnpack = errors.New("failed to unpack instruction")

	_ Instruction = (*ExampleInstruction)(nil)
)

// Instruction is a decoded inbound payload
type Instruction interface {
	Tag() Tag
}

// VerificationRequest asks for a signature over TrackData to be verified.
type VerificationRequest struct {
	Signature  [SignatureLen]byte
	RecoveryID uint8
	TrackData  TrackData
}

// SignatureData is the bundle forwarded to the verification service.
// Message holds the exact bytes the signature is expected to cover.
type SignatureData struct {
	Signature  [SignatureLen]byte
	RecoveryID uint8
	Message    []byte
}

// ExampleInstruction verifies a signature over track data
type ExampleInstruction struct {
	Request VerificationRequest
}

func (*ExampleInstruction) Tag() Tag {
	return ExampleInstructionTag
}

// Parse decodes a tagged instruction. Unknown tags, truncated input and
// trailing bytes are rejected.
func Parse(b []byte) (Instruction, error) {
	r := NewReader(b)
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: missing tag", ErrUnpack)
	}

	var ins Instruction
	switch Tag(tag) {
	case ExampleInstructionTag:
		req := &ExampleInstruction{}
		if err := req.Request.read(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnpack, err)
		}
		ins = req
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrUnpack, tag)
	}

	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrUnpack, r.Remaining())
	}
	return ins, nil
}

// Marshal encodes ins with its tag
func Marshal(ins Instruction) ([]byte, error) {
	switch ins := ins.(type) {
	case *ExampleInstruction:
		t := &ins.Request.TrackData
		if _, err := t.Bytes(); err != nil {
			return nil, err
		}

		buf := NewBuffer(1 + SignatureLen + 1 + 12 + len(t.UserID) + len(t.TrackID) + len(t.Source))
		buf.WriteUint8(uint8(ExampleInstructionTag))
		ins.Request.write(buf)
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported instruction %T", ins)
	}
}

func (v *VerificationRequest) write(buf *Buffer) {
	buf.WriteFixed(v.Signature[:])
	buf.WriteUint8(v.RecoveryID)
	v.TrackData.write(buf)
}

func (v *VerificationRequest) read(r *Reader) error {
	if err := r.ReadFixed(v.Signature[:]); err != nil {
		return fmt.Errorf("signature: %w", err)
	}

	var err error
	if v.RecoveryID, err = r.ReadUint8(); err != nil {
		return fmt.Errorf("recoveryID: %w", err)
	}
	return v.TrackData.read(r)
}
