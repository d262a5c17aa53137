// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package processor gates signature verification of track data behind an
// initialized verifier record and forwards accepted requests to the signer
// registry.
package processor

import (
	"context"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/trackverify"
	"github.com/luxfi/trackverify/instruction"
	"github.com/luxfi/trackverify/registry"
	"github.com/luxfi/trackverify/state"
)

// Positions of the participants a verification reads. Accounts past
// NumParticipants are ignored.
const (
	SignerIndex = iota
	SignerGroupIndex
	VerifierIndex
	ServiceIndex
	SysvarIndex

	NumParticipants
)

var _ VerificationService = (*registry.Client)(nil)

//go:generate go run go.uber.org/mock/mockgen -package=processormock -destination=processormock/verification_service.go -mock_names=VerificationService=VerificationService . VerificationService

// VerificationService performs signature recovery and signer group
// membership checks. It is the only side effect of a verification.
type VerificationService interface {
	ValidateSignature(ctx context.Context, req *registry.ValidateSignatureRequest) *trackverify.Error
}

type Config struct {
	// ProgramID identifies this module on the ledger
	ProgramID  ids.ID
	Log        log.Logger
	Registerer metric.Registerer
	Namespace  string
}

// Processor holds no state between calls; processing the same inputs twice
// gives the same outcome.
type Processor struct {
	programID ids.ID
	log       log.Logger
	service   VerificationService
	metrics   *metrics
}

func New(config Config, service VerificationService) (*Processor, error) {
	m, err := newMetrics(config.Registerer, config.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return &Processor{
		programID: config.ProgramID,
		log:       config.Log,
		service:   service,
		metrics:   m,
	}, nil
}

// ProcessInstruction decodes payload and dispatches it.
func (p *Processor) ProcessInstruction(ctx context.Context, accounts []state.Account, payload []byte) error {
	ins, err := instruction.Parse(payload)
	if err != nil {
		p.metrics.observe(err)
		return err
	}

	switch ins := ins.(type) {
	case *instruction.ExampleInstruction:
		p.log.Debug("processing instruction",
			log.Stringer("programID", p.programID),
			log.UserString("instruction", "ExampleInstruction"),
		)
		return p.ProcessVerification(ctx, accounts, &ins.Request)
	default:
		err := fmt.Errorf("%w: unhandled instruction %T", ErrInstructionUnpack, ins)
		p.metrics.observe(err)
		return err
	}
}

// ProcessVerification checks that the verifier record is initialized and
// forwards the signature over req.TrackData to the verification service.
//
// accounts are positional: signer, signer group, verifier, service,
// sysvar. Every check runs before the service is called, so a rejected
// request never reaches it.
func (p *Processor) ProcessVerification(ctx context.Context, accounts []state.Account, req *instruction.VerificationRequest) error {
	err := p.processVerification(ctx, accounts, req)
	p.metrics.observe(err)
	return err
}

func (p *Processor) processVerification(ctx context.Context, accounts []state.Account, req *instruction.VerificationRequest) error {
	if len(accounts) < NumParticipants {
		return fmt.Errorf("%w: expected %d accounts, got %d", ErrMissingParticipant, NumParticipants, len(accounts))
	}

	var (
		signer      = accounts[SignerIndex]
		signerGroup = accounts[SignerGroupIndex]
		verifier    = accounts[VerifierIndex]
		service     = accounts[ServiceIndex]
		sysvar      = accounts[SysvarIndex]
	)

	record, err := state.ParseVerifierRecord(verifier.Data)
	if err != nil {
		return fmt.Errorf("verifier %s: %w", verifier.Key, err)
	}

	if !record.IsInitialized() {
		p.log.Warn("rejecting verification",
			log.Stringer("verifier", verifier.Key),
			log.UserString("reason", "uninitialized verifier"),
		)
		return fmt.Errorf("%w: %s", ErrUninitializedVerifier, verifier.Key)
	}

	message, err := req.TrackData.Bytes()
	if err != nil {
		return err
	}

	validateReq := &registry.ValidateSignatureRequest{
		ServiceID:   service.Key,
		Signer:      signer.Key,
		SignerGroup: signerGroup.Key,
		Sysvar:      sysvar.Key,
		Data: instruction.SignatureData{
			Signature:  req.Signature,
			RecoveryID: req.RecoveryID,
			Message:    message,
		},
	}

	p.log.Debug("forwarding signature validation",
		log.Stringer("service", service.Key),
		log.Stringer("signer", signer.Key),
		log.Stringer("signerGroup", signerGroup.Key),
		log.Binary("message", message),
	)

	if appErr := p.service.ValidateSignature(ctx, validateReq); appErr != nil {
		return &ExternalVerificationError{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}
	return nil
}
