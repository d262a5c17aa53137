// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state defines the stored records the verification gate reads.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

const (
	ownerLen = len(ids.ID{})
	nonceLen = 8

	// VerifierRecordLen is the fixed encoded size of a VerifierRecord
	VerifierRecordLen = ownerLen + nonceLen
)

var ErrMalformedRecord = errors.New("malformed record")

// VerifierRecord identifies the key permitted to gate verification
// requests.
//
// The layout is owner (32 bytes) followed by nonce (8 bytes, little
// endian) with no framing. A nonzero Nonce marks the record as
// initialized; it is not a usage counter.
type VerifierRecord struct {
	Owner ids.ID
	Nonce uint64
}

// ParseVerifierRecord decodes the first VerifierRecordLen bytes of b.
// Bytes past the fixed layout are ignored.
func ParseVerifierRecord(b []byte) (*VerifierRecord, error) {
	if len(b) < VerifierRecordLen {
		return nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrMalformedRecord, VerifierRecordLen, len(b))
	}

	r := &VerifierRecord{}
	copy(r.Owner[:], b[:ownerLen])
	r.Nonce = binary.LittleEndian.Uint64(b[ownerLen:VerifierRecordLen])
	return r, nil
}

// MarshalInto overwrites the first VerifierRecordLen bytes of dst.
func (r *VerifierRecord) MarshalInto(dst []byte) error {
	if len(dst) < VerifierRecordLen {
		return fmt.Errorf("%w: expected at least %d bytes, got %d", ErrMalformedRecord, VerifierRecordLen, len(dst))
	}

	copy(dst[:ownerLen], r.Owner[:])
	binary.LittleEndian.PutUint64(dst[ownerLen:VerifierRecordLen], r.Nonce)
	return nil
}

// Bytes returns the fixed layout of r
func (r *VerifierRecord) Bytes() []byte {
	b := make([]byte, VerifierRecordLen)
	_ = r.MarshalInto(b)
	return b
}

// IsInitialized reports whether the record has been populated.
//
// Only the nonce is consulted. An all-zero owner with a nonzero nonce is
// still initialized.
func (r *VerifierRecord) IsInitialized() bool {
	return r.Nonce != 0
}
