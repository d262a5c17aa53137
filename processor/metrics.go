// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"errors"

	"github.com/luxfi/metric"
)

const (
	resultLabel = "result"

	successResult = "success"
)

var resultErrors = []struct {
	err   error
	label string
}{
	{ErrInstructionUnpack, "instruction_unpack"},
	{ErrMissingParticipant, "missing_participant"},
	{ErrMalformedRecord, "malformed_record"},
	{ErrUninitializedVerifier, "uninitialized_verifier"},
	{ErrInvalidTrackData, "invalid_track_data"},
	{ErrExternalVerificationFailed, "external_verification_failed"},
}

type metrics struct {
	verifications metric.CounterVec
}

func newMetrics(registerer metric.Registerer, namespace string) (*metrics, error) {
	m := &metrics{
		verifications: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "verifications",
				Help:      "number of processed verifications by result (n)",
			},
			[]string{resultLabel},
		),
	}
	return m, registerer.Register(m.verifications)
}

func (m *metrics) observe(err error) {
	m.verifications.With(metric.Labels{
		resultLabel: resultOf(err),
	}).Inc()
}

func resultOf(err error) string {
	if err == nil {
		return successResult
	}
	for _, r := range resultErrors {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "unknown"
}
