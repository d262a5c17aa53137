// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/trackverify"
	"github.com/luxfi/trackverify/instruction"
	"github.com/luxfi/trackverify/processor/processormock"
	"github.com/luxfi/trackverify/registry"
	"github.com/luxfi/trackverify/state"
)

func newTestProcessor(t *testing.T, service VerificationService) *Processor {
	p, err := New(Config{
		ProgramID:  ids.GenerateTestID(),
		Log:        log.NewNoOpLogger(),
		Registerer: metric.NewRegistry(),
	}, service)
	require.NoError(t, err)
	return p
}

func newAccounts(nonce uint64) []state.Account {
	accounts := make([]state.Account, NumParticipants)
	for i := range accounts {
		accounts[i].Key = ids.GenerateTestID()
	}
	record := &state.VerifierRecord{
		Owner: ids.GenerateTestID(),
		Nonce: nonce,
	}
	accounts[VerifierIndex].Data = record.Bytes()
	return accounts
}

func newRequest() *instruction.VerificationRequest {
	req := &instruction.VerificationRequest{
		RecoveryID: 1,
		TrackData: instruction.TrackData{
			UserID:  "u1",
			TrackID: "t1",
			Source:  "src",
		},
	}
	for i := range req.Signature {
		req.Signature[i] = byte(i + 1)
	}
	return req
}

func TestMissingParticipant(t *testing.T) {
	for n := 0; n < NumParticipants; n++ {
		ctrl := gomock.NewController(t)
		service := processormock.NewVerificationService(ctrl)

		p := newTestProcessor(t, service)
		err := p.ProcessVerification(context.Background(), newAccounts(7)[:n], newRequest())
		require.ErrorIs(t, err, ErrMissingParticipant, "accounts %d", n)
	}
}

func TestExtraParticipantsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)
	service.EXPECT().ValidateSignature(gomock.Any(), gomock.Any()).Return(nil)

	accounts := append(newAccounts(7), state.Account{Key: ids.GenerateTestID()})
	p := newTestProcessor(t, service)
	require.NoError(t, p.ProcessVerification(context.Background(), accounts, newRequest()))
}

func TestMalformedVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)

	accounts := newAccounts(7)
	accounts[VerifierIndex].Data = accounts[VerifierIndex].Data[:state.VerifierRecordLen-1]

	p := newTestProcessor(t, service)
	err := p.ProcessVerification(context.Background(), accounts, newRequest())
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestUninitializedVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	// no calls expected
	service := processormock.NewVerificationService(ctrl)

	p := newTestProcessor(t, service)
	err := p.ProcessVerification(context.Background(), newAccounts(0), newRequest())
	require.ErrorIs(t, err, ErrUninitializedVerifier)
}

func TestInvalidTrackData(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)

	req := newRequest()
	req.TrackData.UserID = string([]byte{0xff})

	p := newTestProcessor(t, service)
	err := p.ProcessVerification(context.Background(), newAccounts(7), req)
	require.ErrorIs(t, err, ErrInvalidTrackData)
}

func TestForwardsRequest(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)

	accounts := newAccounts(7)
	req := newRequest()
	message, err := req.TrackData.Bytes()
	require.NoError(err)

	service.EXPECT().ValidateSignature(gomock.Any(), &registry.ValidateSignatureRequest{
		ServiceID:   accounts[ServiceIndex].Key,
		Signer:      accounts[SignerIndex].Key,
		SignerGroup: accounts[SignerGroupIndex].Key,
		Sysvar:      accounts[SysvarIndex].Key,
		Data: instruction.SignatureData{
			Signature:  req.Signature,
			RecoveryID: req.RecoveryID,
			Message:    message,
		},
	}).Return(nil).Times(1)

	p := newTestProcessor(t, service)
	require.NoError(p.ProcessVerification(context.Background(), accounts, req))
}

func TestExternalFailure(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)
	service.EXPECT().ValidateSignature(gomock.Any(), gomock.Any()).Return(&trackverify.Error{
		Code:    42,
		Message: "signer not in group",
	}).Times(1)

	p := newTestProcessor(t, service)
	err := p.ProcessVerification(context.Background(), newAccounts(7), newRequest())
	require.ErrorIs(err, ErrExternalVerificationFailed)

	var externalErr *ExternalVerificationError
	require.True(errors.As(err, &externalErr))
	require.Equal(int32(42), externalErr.Code)
	require.Equal("signer not in group", externalErr.Message)
}

func TestIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)
	service.EXPECT().ValidateSignature(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	p := newTestProcessor(t, service)
	accounts := newAccounts(1)
	req := newRequest()
	require.NoError(t, p.ProcessVerification(context.Background(), accounts, req))
	require.NoError(t, p.ProcessVerification(context.Background(), accounts, req))
}

func TestProcessInstruction(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)
	service.EXPECT().ValidateSignature(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	p := newTestProcessor(t, service)
	payload, err := instruction.Marshal(&instruction.ExampleInstruction{Request: *newRequest()})
	require.NoError(err)
	require.NoError(p.ProcessInstruction(context.Background(), newAccounts(1), payload))

	err = p.ProcessInstruction(context.Background(), newAccounts(1), []byte{9})
	require.ErrorIs(err, ErrInstructionUnpack)
}

func TestResultOf(t *testing.T) {
	require := require.New(t)

	require.Equal(successResult, resultOf(nil))
	require.Equal("uninitialized_verifier", resultOf(ErrUninitializedVerifier))
	require.Equal("external_verification_failed", resultOf(&ExternalVerificationError{Code: 1}))
	require.Equal("unknown", resultOf(errors.New("other")))
}

func TestMetrics(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	service := processormock.NewVerificationService(ctrl)
	service.EXPECT().ValidateSignature(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	reg := metric.NewRegistry()
	p, err := New(Config{
		Log:        log.NewNoOpLogger(),
		Registerer: reg,
		Namespace:  "trackverify",
	}, service)
	require.NoError(err)

	require.NoError(p.ProcessVerification(context.Background(), newAccounts(1), newRequest()))
	err = p.ProcessVerification(context.Background(), newAccounts(0), newRequest())
	require.ErrorIs(err, ErrUninitializedVerifier)

	families, err := reg.Gather()
	require.NoError(err)
	require.Len(families, 1)
	require.Equal("trackverify_verifications", families[0].GetName())

	results := make(map[string]float64)
	for _, m := range families[0].GetMetric() {
		require.Len(m.GetLabel(), 1)
		require.Equal(resultLabel, m.GetLabel()[0].GetName())
		results[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	require.Equal(map[string]float64{
		successResult:            1,
		"uninitialized_verifier": 1,
	}, results)

	_, err = New(Config{
		Log:        log.NewNoOpLogger(),
		Registerer: reg,
		Namespace:  "trackverify",
	}, service)
	require.Error(err)
}

type recordingService struct {
	calls []*registry.ValidateSignatureRequest
	err   *trackverify.Error
}

func (r *recordingService) ValidateSignature(_ context.Context, req *registry.ValidateSignatureRequest) *trackverify.Error {
	r.calls = append(r.calls, req)
	return r.err
}

func TestScenario(t *testing.T) {
	tests := []struct {
		name        string
		nonce       uint64
		serviceErr  *trackverify.Error
		expectedErr error
		calls       int
	}{
		{
			name:  "accepted",
			nonce: 1,
			calls: 1,
		},
		{
			name:        "uninitialized",
			nonce:       0,
			expectedErr: ErrUninitializedVerifier,
			calls:       0,
		},
		{
			name:        "rejected",
			nonce:       1,
			serviceErr:  &trackverify.Error{Code: 3, Message: "bad signature"},
			expectedErr: ErrExternalVerificationFailed,
			calls:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			service := &recordingService{err: tt.serviceErr}
			p := newTestProcessor(t, service)

			req := newRequest()
			err := p.ProcessVerification(context.Background(), newAccounts(tt.nonce), req)
			require.ErrorIs(err, tt.expectedErr)
			require.Len(service.calls, tt.calls)

			if tt.calls > 0 {
				require.Equal([]byte{
					2, 0, 0, 0, 'u', '1',
					2, 0, 0, 0, 't', '1',
					3, 0, 0, 0, 's', 'r', 'c',
				}, service.calls[0].Data.Message)
				require.Equal(req.Signature, service.calls[0].Data.Signature)
			}
		})
	}
}
