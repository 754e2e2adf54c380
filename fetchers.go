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
	"github.com/blinklabs-io/gobelisk/bitcoin"
)

// BroadcastTransaction submits a transaction to the server's memory pool
func (c *Client) BroadcastTransaction(
	tx *bitcoin.Transaction,
	handler ResultFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	return c.sendRequest(cmdPoolBroadcast, tx.Serialize(), handler)
}

// ValidateTransaction checks a transaction against the server's memory
// pool without broadcasting it
func (c *Client) ValidateTransaction(
	tx *bitcoin.Transaction,
	handler ResultFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	return c.sendRequest(cmdPoolValidate, tx.Serialize(), handler)
}

// FetchPoolTransaction fetches a transaction from the server's memory pool
// by hash
func (c *Client) FetchPoolTransaction(
	hash bitcoin.Hash,
	handler TransactionFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteHash(hash)
	return c.sendRequest(cmdPoolFetchTransaction, w.Bytes(), handler)
}

// BroadcastBlock submits a block to the server
func (c *Client) BroadcastBlock(
	block *bitcoin.Block,
	handler ResultFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	return c.sendRequest(cmdChainBroadcast, block.Serialize(), handler)
}

// ValidateBlock checks a block against the server's chain without
// submitting it
func (c *Client) ValidateBlock(
	block *bitcoin.Block,
	handler ResultFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	return c.sendRequest(cmdChainValidate, block.Serialize(), handler)
}

// FetchTransaction fetches a confirmed transaction by hash
func (c *Client) FetchTransaction(
	hash bitcoin.Hash,
	handler TransactionFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteHash(hash)
	return c.sendRequest(cmdChainFetchTransaction, w.Bytes(), handler)
}

// FetchLastHeight fetches the height of the newest block in the server's
// chain
func (c *Client) FetchLastHeight(handler HeightFunc) error {
	if handler == nil {
		return errNilHandler
	}
	return c.sendRequest(cmdFetchLastHeight, nil, handler)
}

// FetchBlockByHeight fetches a block by height
func (c *Client) FetchBlockByHeight(
	height uint32,
	handler BlockFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteUint32(height)
	return c.sendRequest(cmdFetchBlock, w.Bytes(), handler)
}

// FetchBlockByHash fetches a block by hash
func (c *Client) FetchBlockByHash(
	hash bitcoin.Hash,
	handler BlockFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteHash(hash)
	return c.sendRequest(cmdFetchBlock, w.Bytes(), handler)
}

// FetchBlockHeaderByHeight fetches a block header by height
func (c *Client) FetchBlockHeaderByHeight(
	height uint32,
	handler BlockHeaderFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteUint32(height)
	return c.sendRequest(cmdFetchBlockHeader, w.Bytes(), handler)
}

// FetchBlockHeaderByHash fetches a block header by hash
func (c *Client) FetchBlockHeaderByHash(
	hash bitcoin.Hash,
	handler BlockHeaderFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteHash(hash)
	return c.sendRequest(cmdFetchBlockHeader, w.Bytes(), handler)
}

// FetchTransactionIndex fetches the block height and position of a
// confirmed transaction
func (c *Client) FetchTransactionIndex(
	hash bitcoin.Hash,
	handler TransactionIndexFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteHash(hash)
	return c.sendRequest(cmdFetchTransactionIndex, w.Bytes(), handler)
}

// FetchStealth fetches the stealth rows matching a bit prefix, starting at
// fromHeight
func (c *Client) FetchStealth(
	prefix bitcoin.Binary,
	fromHeight uint32,
	handler StealthFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteBinary(prefix)
	w.WriteUint32(fromHeight)
	return c.sendRequest(cmdFetchStealth, w.Bytes(), handler)
}

// FetchHistory fetches the output and spend history of a payment address,
// starting at fromHeight
func (c *Client) FetchHistory(
	address bitcoin.PaymentAddress,
	fromHeight uint32,
	handler HistoryFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteShortHash(address.Hash())
	w.WriteUint32(fromHeight)
	return c.sendRequest(cmdFetchHistory, w.Bytes(), handler)
}

// FetchUnspentOutputs fetches a payment address's history and selects
// unspent outputs covering the target value with the chosen algorithm. The
// selection is empty when the address's unspent value cannot cover the
// target
func (c *Client) FetchUnspentOutputs(
	address bitcoin.PaymentAddress,
	satoshi uint64,
	algorithm bitcoin.SelectAlgorithm,
	handler PointsValueFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	inner := HistoryFunc(
		func(err error, history bitcoin.HistoryList) {
			if err != nil {
				handler(err, bitcoin.PointsValue{})
				return
			}
			unspent := history.UnspentOutputs()
			handler(nil, bitcoin.SelectOutputs(unspent, satoshi, algorithm))
		},
	)
	return c.FetchHistory(address, 0, inner)
}
