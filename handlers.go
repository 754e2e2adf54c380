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

// Every request takes a completion handler. The handler fires exactly once,
// from Wait or Monitor, with either the decoded result or a non-nil error:
// a ServerError for a non-zero status, ErrTimeout when the deadline sweep
// claims the request, or ErrShuttingDown when the client closes first. When
// the error is non-nil the remaining arguments are zero values.

// ResultFunc handles a reply carrying no result beyond its status
type ResultFunc func(error)

// HeightFunc handles a block height reply
type HeightFunc func(error, uint64)

// TransactionIndexFunc handles a transaction position reply, a block
// height and an index within that block
type TransactionIndexFunc func(error, uint64, uint64)

// BlockFunc handles a fetched block
type BlockFunc func(error, *bitcoin.Block)

// BlockHeaderFunc handles a fetched block header
type BlockHeaderFunc func(error, *bitcoin.Header)

// TransactionFunc handles a fetched transaction
type TransactionFunc func(error, *bitcoin.Transaction)

// HistoryFunc handles a payment address history reply
type HistoryFunc func(error, bitcoin.HistoryList)

// StealthFunc handles a stealth row reply
type StealthFunc func(error, bitcoin.StealthList)

// PointsValueFunc handles a selected unspent output set
type PointsValueFunc func(error, bitcoin.PointsValue)

// UpdateFunc handles subscription traffic: first the empty acknowledgement,
// then one call per matching confirmation, carrying the update sequence,
// the block height, and the transaction hash
type UpdateFunc func(error, uint16, uint64, bitcoin.Hash)

// BlockNotifyFunc handles a block announced on the block feed
type BlockNotifyFunc func(*bitcoin.Block)

// TransactionNotifyFunc handles a transaction announced on the
// transaction feed
type TransactionNotifyFunc func(*bitcoin.Transaction)
