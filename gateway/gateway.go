// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gateway serves verification instructions over the network.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/trackverify"
	"github.com/luxfi/trackverify/processor"
	"github.com/luxfi/trackverify/registry"
	"github.com/luxfi/trackverify/state"
)

// Error codes returned to requesters. A rejection from the registry is
// reported as ErrCodeExternalVerificationFailed with the registry's code and
// message in the error message.
const (
	ErrCodeInstructionUnpack int32 = iota + 1
	ErrCodeMissingParticipant
	ErrCodeMalformedRecord
	ErrCodeUninitializedVerifier
	ErrCodeInvalidTrackData
	ErrCodeExternalVerificationFailed
)

var (
	_ trackverify.Handler = (*Handler)(nil)

	errInvalidThrottleLimit = errors.New("throttle limit must be positive")

	errorCodes = []struct {
		err  error
		code int32
	}{
		{processor.ErrInstructionUnpack, ErrCodeInstructionUnpack},
		{processor.ErrMissingParticipant, ErrCodeMissingParticipant},
		{processor.ErrMalformedRecord, ErrCodeMalformedRecord},
		{processor.ErrUninitializedVerifier, ErrCodeUninitializedVerifier},
		{processor.ErrInvalidTrackData, ErrCodeInvalidTrackData},
		{processor.ErrExternalVerificationFailed, ErrCodeExternalVerificationFailed},
	}
)

// Processor runs a decoded instruction against resolved accounts
type Processor interface {
	ProcessInstruction(ctx context.Context, accounts []state.Account, payload []byte) error
}

// Handler resolves the accounts named in a request envelope and runs the
// instruction it carries.
type Handler struct {
	log       log.Logger
	store     state.Store
	processor Processor
}

func NewHandler(log log.Logger, store state.Store, processor Processor) *Handler {
	return &Handler{
		log:       log,
		store:     store,
		processor: processor,
	}
}

func (h *Handler) Request(ctx context.Context, nodeID ids.NodeID, _ time.Time, requestBytes []byte) ([]byte, *trackverify.Error) {
	keys, payload, err := ParseEnvelope(requestBytes)
	if err != nil {
		return nil, AppError(fmt.Errorf("%w: %w", processor.ErrInstructionUnpack, err))
	}

	accounts := make([]state.Account, len(keys))
	for i, key := range keys {
		account, err := h.store.GetAccount(ctx, key)
		if errors.Is(err, state.ErrAccountNotFound) {
			return nil, AppError(fmt.Errorf("%w: %w", processor.ErrMissingParticipant, err))
		}
		if err != nil {
			h.log.Error("failed to load account",
				log.Stringer("nodeID", nodeID),
				log.Stringer("account", key),
				log.Err(err),
			)
			return nil, trackverify.ErrUnexpected
		}
		accounts[i] = account
	}

	if err := h.processor.ProcessInstruction(ctx, accounts, payload); err != nil {
		h.log.Debug("verification rejected",
			log.Stringer("nodeID", nodeID),
			log.Err(err),
		)
		return nil, AppError(err)
	}
	return nil, nil
}

// AppError converts a processing error to the error returned to the
// requester.
func AppError(err error) *trackverify.Error {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return &trackverify.Error{
				Code:    c.code,
				Message: err.Error(),
			}
		}
	}
	return trackverify.ErrUnexpected
}

type Config struct {
	// ProgramID identifies this module on the ledger
	ProgramID ids.ID
	// RegistryNodeID hosts the signer registry
	RegistryNodeID ids.NodeID
	// Each requester may send ThrottleLimit requests per ThrottlePeriod
	ThrottlePeriod time.Duration
	ThrottleLimit  int
	Namespace      string
}

func DefaultConfig() Config {
	return Config{
		ThrottlePeriod: time.Second,
		ThrottleLimit:  100,
		Namespace:      "trackverify",
	}
}

// Register serves verification instructions on network under
// trackverify.VerifyHandlerID, validating signatures with the registry at
// config.RegistryNodeID.
func Register(
	logger log.Logger,
	network *trackverify.Network,
	registerer metric.Registerer,
	store state.Store,
	config Config,
) error {
	if config.ThrottleLimit <= 0 {
		return fmt.Errorf("%w: %d", errInvalidThrottleLimit, config.ThrottleLimit)
	}

	registryClient := registry.NewClient(
		logger,
		network.NewClient(registry.HandlerID),
		config.RegistryNodeID,
	)

	p, err := processor.New(processor.Config{
		ProgramID:  config.ProgramID,
		Log:        logger,
		Registerer: registerer,
		Namespace:  config.Namespace,
	}, registryClient)
	if err != nil {
		return err
	}

	handler := trackverify.NewThrottlerHandler(
		NewHandler(logger, store, p),
		trackverify.NewRateThrottler(config.ThrottlePeriod, config.ThrottleLimit),
		logger,
	)
	return network.AddHandler(trackverify.VerifyHandlerID, handler)
}
