// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trackverifytest wires in-memory networks for tests.
package trackverifytest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
	log "github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/trackverify"
)

// NewClient generates a client-server pair and returns the client used to
// communicate with a server with the specified handler
func NewClient(
	t *testing.T,
	handlerID uint64,
	clientNodeID ids.NodeID,
	clientHandler trackverify.Handler,
	serverNodeID ids.NodeID,
	serverHandler trackverify.Handler,
) *trackverify.Client {
	return NewClientWithPeers(
		t,
		handlerID,
		clientNodeID,
		clientHandler,
		map[ids.NodeID]trackverify.Handler{
			serverNodeID: serverHandler,
		},
	)
}

// NewClientWithPeers generates a client to communicate to a set of peers.
// Every peer registers its handler under handlerID.
func NewClientWithPeers(
	t *testing.T,
	handlerID uint64,
	clientNodeID ids.NodeID,
	clientHandler trackverify.Handler,
	peers map[ids.NodeID]trackverify.Handler,
) *trackverify.Client {
	peers[clientNodeID] = clientHandler

	peerSenders := make(map[ids.NodeID]*AppSender)
	peerNetworks := make(map[ids.NodeID]*trackverify.Network)
	for nodeID := range peers {
		peerSenders[nodeID] = &AppSender{T: t}
		peerNetwork, err := trackverify.NewNetwork(log.NewNoOpLogger(), peerSenders[nodeID], metric.NewRegistry(), "")
		require.NoError(t, err)
		peerNetworks[nodeID] = peerNetwork
	}

	peerSenders[clientNodeID].SendRequestF = func(ctx context.Context, nodeIDs set.Set[ids.NodeID], requestID uint32, requestBytes []byte) error {
		for nodeID := range nodeIDs {
			network, ok := peerNetworks[nodeID]
			if !ok {
				return fmt.Errorf("%s is not connected", nodeID)
			}

			// Send the request asynchronously to avoid deadlock when the server
			// sends the response back to the client
			go func() {
				_ = network.Request(ctx, clientNodeID, requestID, time.Time{}, requestBytes)
			}()
		}

		return nil
	}

	for nodeID := range peers {
		peerSenders[nodeID].SendResponseF = func(ctx context.Context, _ ids.NodeID, requestID uint32, responseBytes []byte) error {
			go func() {
				_ = peerNetworks[clientNodeID].Response(ctx, nodeID, requestID, responseBytes)
			}()

			return nil
		}
	}

	for nodeID := range peers {
		peerSenders[nodeID].SendErrorF = func(ctx context.Context, _ ids.NodeID, requestID uint32, errorCode int32, errorMessage string) error {
			go func() {
				_ = peerNetworks[clientNodeID].RequestFailed(ctx, nodeID, requestID, &trackverify.Error{
					Code:    errorCode,
					Message: errorMessage,
				})
			}()

			return nil
		}
	}

	for nodeID := range peers {
		require.NoError(t, peerNetworks[nodeID].AddHandler(handlerID, peers[nodeID]))
	}

	return peerNetworks[clientNodeID].NewClient(handlerID)
}
