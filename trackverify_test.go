// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trackverify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/metric"
)

type testSender struct {
	sendResponse func(nodeID ids.NodeID, requestID uint32, response []byte)
}

func (*testSender) SendRequest(context.Context, set.Set[ids.NodeID], uint32, []byte) error {
	return nil
}

func (s *testSender) SendResponse(_ context.Context, nodeID ids.NodeID, requestID uint32, response []byte) error {
	if s.sendResponse != nil {
		s.sendResponse(nodeID, requestID, response)
	}
	return nil
}

func (*testSender) SendError(context.Context, ids.NodeID, uint32, int32, string) error {
	return nil
}

func TestNoOpHandler(t *testing.T) {
	require := require.New(t)

	resp, err := NoOpHandler{}.Request(context.Background(), ids.EmptyNodeID, time.Now(), nil)
	require.Nil(err)
	require.Nil(resp)
}

func TestThrottler(t *testing.T) {
	require := require.New(t)

	throttler := NewRateThrottler(time.Minute, 5)
	nodeID := ids.GenerateTestNodeID()

	for i := 0; i < 5; i++ {
		require.True(throttler.Handle(nodeID), "request %d", i)
	}
	require.False(throttler.Handle(nodeID))

	// budgets are per node
	require.True(throttler.Handle(ids.GenerateTestNodeID()))
}

func TestThrottlerHandler(t *testing.T) {
	require := require.New(t)

	calls := 0
	handler := NewThrottlerHandler(
		TestHandler{
			RequestF: func(context.Context, ids.NodeID, time.Time, []byte) ([]byte, *Error) {
				calls++
				return []byte("ok"), nil
			},
		},
		NewRateThrottler(time.Minute, 1),
		log.NewNoOpLogger(),
	)

	nodeID := ids.GenerateTestNodeID()
	resp, err := handler.Request(context.Background(), nodeID, time.Time{}, nil)
	require.Nil(err)
	require.Equal([]byte("ok"), resp)

	_, err = handler.Request(context.Background(), nodeID, time.Time{}, nil)
	require.Equal(ErrThrottled, err)
	require.Equal(1, calls)
}

func TestPrefixMessage(t *testing.T) {
	require.Equal(
		t,
		[]byte{0x01, 0x02, 0x03, 0x04, 0x05},
		PrefixMessage([]byte{0x01, 0x02}, []byte{0x03, 0x04, 0x05}),
	)
}

func TestParseMessage(t *testing.T) {
	require := require.New(t)

	msg := PrefixMessage(ProtocolPrefix(RegistryHandlerID), []byte("hello"))
	handlerID, payload, ok := ParseMessage(msg)
	require.True(ok)
	require.Equal(uint64(RegistryHandlerID), handlerID)
	require.Equal([]byte("hello"), payload)

	_, _, ok = ParseMessage(nil)
	require.False(ok)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int32
	}{
		{"ErrUnexpected", ErrUnexpected, -1},
		{"ErrUnregisteredHandler", ErrUnregisteredHandler, -2},
		{"ErrThrottled", ErrThrottled, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Code)
		})
	}
}

func TestNetworkMetrics(t *testing.T) {
	require := require.New(t)

	var sentResponse []byte
	sender := &testSender{
		sendResponse: func(_ ids.NodeID, _ uint32, response []byte) {
			sentResponse = response
		},
	}

	reg := metric.NewRegistry()
	network, err := NewNetwork(log.NewNoOpLogger(), sender, reg, "trackverify")
	require.NoError(err)
	require.NoError(network.AddHandler(VerifyHandlerID, TestHandler{
		RequestF: func(context.Context, ids.NodeID, time.Time, []byte) ([]byte, *Error) {
			return []byte("ok"), nil
		},
	}))

	msg := PrefixMessage(ProtocolPrefix(VerifyHandlerID), []byte("req"))
	require.NoError(network.Request(context.Background(), ids.GenerateTestNodeID(), 1, time.Time{}, msg))
	require.Equal([]byte("ok"), sentResponse)

	families, err := reg.Gather()
	require.NoError(err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	require.ElementsMatch([]string{"trackverify_msg_count", "trackverify_msg_time"}, names)

	// a second network cannot share the registry under the same namespace
	_, err = NewNetwork(log.NewNoOpLogger(), sender, reg, "trackverify")
	require.Error(err)
}

func TestUnrequestedResponse(t *testing.T) {
	network, err := NewNetwork(log.NewNoOpLogger(), &testSender{}, metric.NewRegistry(), "")
	require.NoError(t, err)

	err = network.Response(context.Background(), ids.GenerateTestNodeID(), 1, nil)
	require.ErrorIs(t, err, ErrUnrequestedResponse)
}
