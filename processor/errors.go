// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"errors"
	"fmt"

	"github.com/luxfi/trackverify/instruction"
	"github.com/luxfi/trackverify/state"
)

// Every error returned by the processor matches exactly one of these with
// errors.Is. All of them are terminal for the transition.
var (
	ErrInstructionUnpack          = instruction.ErrUnpack
	ErrMissingParticipant         = errors.New("missing participant")
	ErrMalformedRecord            = state.ErrMalformedRecord
	ErrUninitializedVerifier      = errors.New("uninitialized verifier")
	ErrInvalidTrackData           = instruction.ErrInvalidTrackData
	ErrExternalVerificationFailed = errors.New("external verification failed")
)

// ExternalVerificationError carries the verification service's rejection
// unchanged.
type ExternalVerificationError struct {
	Code    int32
	Message string
}

func (e *ExternalVerificationError) Error() string {
	return fmt.Sprintf("%s: code %d: %s", ErrExternalVerificationFailed, e.Code, e.Message)
}

func (e *ExternalVerificationError) Is(target error) bool {
	return target == ErrExternalVerificationFailed
}
