// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/ids"
)

const idLen = len(ids.ID{})

var (
	errTooManyAccounts = errors.New("too many accounts")
	errShortEnvelope   = errors.New("envelope too short")
)

// MarshalEnvelope prefixes an instruction payload with the participant
// keys it operates on.
func MarshalEnvelope(keys []ids.ID, payload []byte) ([]byte, error) {
	// Format: count(1) + [key(32)]... + payload
	if len(keys) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d", errTooManyAccounts, len(keys))
	}

	buf := make([]byte, 1+len(keys)*idLen+len(payload))
	buf[0] = byte(len(keys))
	offset := 1
	for _, key := range keys {
		offset += copy(buf[offset:], key[:])
	}
	copy(buf[offset:], payload)
	return buf, nil
}

// ParseEnvelope is the inverse of MarshalEnvelope
func ParseEnvelope(b []byte) ([]ids.ID, []byte, error) {
	if len(b) < 1 {
		return nil, nil, errShortEnvelope
	}
	count := int(b[0])
	end := 1 + count*idLen
	if len(b) < end {
		return nil, nil, fmt.Errorf("%w: %d accounts need %d bytes, got %d", errShortEnvelope, count, end, len(b))
	}

	keys := make([]ids.ID, count)
	for i := range keys {
		copy(keys[i][:], b[1+i*idLen:])
	}
	return keys, b[end:], nil
}
