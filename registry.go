// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package obelisk

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gobelisk/bitcoin"
)

const (
	cmdPoolBroadcast         = "transaction_pool.broadcast"
	cmdPoolValidate          = "transaction_pool.validate2"
	cmdPoolFetchTransaction  = "transaction_pool.fetch_transaction2"
	cmdChainBroadcast        = "blockchain.broadcast"
	cmdChainValidate         = "blockchain.validate"
	cmdChainFetchTransaction = "blockchain.fetch_transaction2"
	cmdFetchLastHeight       = "blockchain.fetch_last_height"
	cmdFetchBlock            = "blockchain.fetch_block"
	cmdFetchBlockHeader      = "blockchain.fetch_block_header"
	cmdFetchTransactionIndex = "blockchain.fetch_transaction_index"
	cmdFetchStealth          = "blockchain.fetch_stealth2"
	cmdFetchHistory          = "blockchain.fetch_history4"
	cmdSubscribeAddress      = "subscribe.address"
	cmdSubscribeStealth      = "subscribe.stealth"
)

// errHandlerType reports a handler whose type does not match its command's
// reply shape. The public request methods make this unreachable
var errHandlerType = errors.New("handler type does not match command")

// deliverFunc invokes a pending request's handler. A non-nil err is passed
// through to the handler as-is with zero-value results. Otherwise payload
// is decoded per the command's reply shape and the handler receives either
// the result or the server's error status. The returned error is non-nil
// only when the handler was NOT invoked, so the caller can keep the request
// pending
type deliverFunc func(handler any, err error, payload []byte) error

type commandSpec struct {
	deliver deliverFunc
	// subscription requests stay pending after their first reply so the
	// same handler receives later update messages
	subscription bool
}

// commandTable is the static registry of every command this client issues,
// keyed by the command string echoed back in replies
var commandTable = map[string]commandSpec{
	cmdPoolBroadcast:         {deliver: deliverResult},
	cmdPoolValidate:          {deliver: deliverResult},
	cmdPoolFetchTransaction:  {deliver: deliverTransaction},
	cmdChainBroadcast:        {deliver: deliverResult},
	cmdChainValidate:         {deliver: deliverResult},
	cmdChainFetchTransaction: {deliver: deliverTransaction},
	cmdFetchLastHeight:       {deliver: deliverHeight},
	cmdFetchBlock:            {deliver: deliverBlock},
	cmdFetchBlockHeader:      {deliver: deliverBlockHeader},
	cmdFetchTransactionIndex: {deliver: deliverTransactionIndex},
	cmdFetchStealth:          {deliver: deliverStealth},
	cmdFetchHistory:          {deliver: deliverHistory},
	cmdSubscribeAddress:      {deliver: deliverUpdate, subscription: true},
	cmdSubscribeStealth:      {deliver: deliverUpdate, subscription: true},
}

// splitReply separates a reply payload into its leading status code and the
// result body
func splitReply(payload []byte) (uint32, []byte, error) {
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf(
			"%w: reply shorter than status code",
			ErrMalformedReply,
		)
	}
	r := bitcoin.NewReader(payload)
	status := r.ReadUint32()
	return status, payload[4:], nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %s", ErrMalformedReply, err)
}

func deliverResult(handler any, err error, payload []byte) error {
	h, ok := handler.(ResultFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status))
		return nil
	}
	if len(body) > 0 {
		return fmt.Errorf(
			"%w: %d unexpected bytes after status",
			ErrMalformedReply,
			len(body),
		)
	}
	h(nil)
	return nil
}

func deliverHeight(handler any, err error, payload []byte) error {
	h, ok := handler.(HeightFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, 0)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), 0)
		return nil
	}
	r := bitcoin.NewReader(body)
	height := r.ReadUint32()
	if err := r.Finish(); err != nil {
		return malformed(err)
	}
	h(nil, uint64(height))
	return nil
}

func deliverTransactionIndex(handler any, err error, payload []byte) error {
	h, ok := handler.(TransactionIndexFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, 0, 0)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), 0, 0)
		return nil
	}
	r := bitcoin.NewReader(body)
	height := r.ReadUint32()
	index := r.ReadUint32()
	if err := r.Finish(); err != nil {
		return malformed(err)
	}
	h(nil, uint64(height), uint64(index))
	return nil
}

func deliverBlock(handler any, err error, payload []byte) error {
	h, ok := handler.(BlockFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, nil)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), nil)
		return nil
	}
	block, err := bitcoin.NewBlockFromBytes(body)
	if err != nil {
		return malformed(err)
	}
	h(nil, block)
	return nil
}

func deliverBlockHeader(handler any, err error, payload []byte) error {
	h, ok := handler.(BlockHeaderFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, nil)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), nil)
		return nil
	}
	header, err := bitcoin.NewHeaderFromBytes(body)
	if err != nil {
		return malformed(err)
	}
	h(nil, header)
	return nil
}

func deliverTransaction(handler any, err error, payload []byte) error {
	h, ok := handler.(TransactionFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, nil)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), nil)
		return nil
	}
	tx, err := bitcoin.NewTransactionFromBytes(body)
	if err != nil {
		return malformed(err)
	}
	h(nil, tx)
	return nil
}

func deliverHistory(handler any, err error, payload []byte) error {
	h, ok := handler.(HistoryFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, nil)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), nil)
		return nil
	}
	history, err := bitcoin.NewHistoryListFromBytes(body)
	if err != nil {
		return malformed(err)
	}
	h(nil, history)
	return nil
}

func deliverStealth(handler any, err error, payload []byte) error {
	h, ok := handler.(StealthFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, nil)
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), nil)
		return nil
	}
	stealth, err := bitcoin.NewStealthListFromBytes(body)
	if err != nil {
		return malformed(err)
	}
	h(nil, stealth)
	return nil
}

// deliverUpdate handles both halves of subscription traffic. The initial
// acknowledgement carries an empty body; update pushes carry the sequence,
// height, and transaction hash of a matching confirmation
func deliverUpdate(handler any, err error, payload []byte) error {
	h, ok := handler.(UpdateFunc)
	if !ok {
		return errHandlerType
	}
	if err != nil {
		h(err, 0, 0, bitcoin.Hash{})
		return nil
	}
	status, body, err := splitReply(payload)
	if err != nil {
		return err
	}
	if status != StatusSuccess {
		h(ServerError(status), 0, 0, bitcoin.Hash{})
		return nil
	}
	if len(body) == 0 {
		// Subscription acknowledged
		h(nil, 0, 0, bitcoin.Hash{})
		return nil
	}
	r := bitcoin.NewReader(body)
	sequence := r.ReadUint16()
	height := r.ReadUint32()
	txHash := r.ReadHash()
	if err := r.Finish(); err != nil {
		return malformed(err)
	}
	h(nil, sequence, uint64(height), txHash)
	return nil
}
