// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trackverify routes verification requests between nodes.
package trackverify

import (
	"context"
	"encoding/binary"
	"errors"
	"strconv"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

var labelNames = []string{opLabel, handlerLabel}

// NewNetwork returns an instance of Network
func NewNetwork(
	log log.Logger,
	sender Sender,
	registerer metric.Registerer,
	namespace string,
) (*Network, error) {
	m := metrics{
		msgTime: metric.NewGaugeVec(
			metric.GaugeOpts{
				Namespace: namespace,
				Name:      "msg_time",
				Help:      "message handling time (ns)",
			},
			labelNames,
		),
		msgCount: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "msg_count",
				Help:      "message count (n)",
			},
			labelNames,
		),
	}

	err := errors.Join(
		registerer.Register(m.msgTime),
		registerer.Register(m.msgCount),
	)
	if err != nil {
		return nil, err
	}

	return &Network{
		sender: sender,
		router: newRouter(log, sender, m),
	}, nil
}

// Network dispatches inbound messages to registered handlers and hands out
// clients for outbound requests.
type Network struct {
	sender Sender
	router *router
}

func (n *Network) Request(ctx context.Context, nodeID ids.NodeID, requestID uint32, deadline time.Time, request []byte) error {
	return n.router.Request(ctx, nodeID, requestID, deadline, request)
}

func (n *Network) Response(ctx context.Context, nodeID ids.NodeID, requestID uint32, response []byte) error {
	return n.router.Response(ctx, nodeID, requestID, response)
}

func (n *Network) RequestFailed(ctx context.Context, nodeID ids.NodeID, requestID uint32, appErr *Error) error {
	return n.router.RequestFailed(ctx, nodeID, requestID, appErr)
}

// NewClient returns a Client that sends requests to handlerID.
func (n *Network) NewClient(handlerID uint64) *Client {
	return &Client{
		handlerIDStr:  strconv.FormatUint(handlerID, 10),
		handlerPrefix: ProtocolPrefix(handlerID),
		sender:        n.sender,
		router:        n.router,
	}
}

// AddHandler reserves an identifier for a request protocol
func (n *Network) AddHandler(handlerID uint64, handler Handler) error {
	return n.router.addHandler(handlerID, handler)
}

func ProtocolPrefix(handlerID uint64) []byte {
	return binary.AppendUvarint(nil, handlerID)
}
