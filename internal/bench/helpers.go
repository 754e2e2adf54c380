// Copyright 2026 Blink Labs Software
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

// Package bench provides benchmark fixtures for the wire codecs.
package bench

import (
	"encoding/binary"

	"github.com/blinklabs-io/gobelisk/bitcoin"
)

// benchTransaction builds a two-input, two-output transaction whose input
// points are derived from seed, so fixtures stay distinct without random
// state
func benchTransaction(seed uint32) *bitcoin.Transaction {
	var prevHash bitcoin.Hash
	binary.LittleEndian.PutUint32(prevHash[:4], seed)
	script := []byte{
		0x76, 0xa9, 0x14,
		0x62, 0xe9, 0x07, 0xb1, 0x5c, 0xbf, 0x27, 0xd5, 0x42, 0x53,
		0x99, 0xeb, 0xf6, 0xf0, 0xfb, 0x50, 0xeb, 0xb8, 0x8f, 0x18,
		0x88, 0xac,
	}
	return &bitcoin.Transaction{
		Version: 1,
		Inputs: []bitcoin.TransactionInput{
			{
				PreviousOutput: bitcoin.OutPoint{Hash: prevHash, Index: 0},
				Script:         script,
				Sequence:       0xffffffff,
			},
			{
				PreviousOutput: bitcoin.OutPoint{Hash: prevHash, Index: 1},
				Script:         script,
				Sequence:       0xffffffff,
			},
		},
		Outputs: []bitcoin.TransactionOutput{
			{
				Value:  50000,
				Script: script,
			},
			{
				Value:  25000,
				Script: script,
			},
		},
	}
}

// benchBlock builds a block carrying count transactions
func benchBlock(count uint32) *bitcoin.Block {
	block := &bitcoin.Block{
		Header: bitcoin.Header{
			Version:   1,
			Timestamp: 1231006505,
			Bits:      0x1d00ffff,
			Nonce:     2083236893,
		},
	}
	for i := uint32(0); i < count; i++ {
		block.Transactions = append(block.Transactions, benchTransaction(i))
	}
	if count > 0 {
		block.Header.MerkleRoot = block.Transactions[0].Hash()
	}
	return block
}

// benchHistoryPayload builds a serialized history reply with the given
// number of output rows
func benchHistoryPayload(rows uint32) []byte {
	w := bitcoin.NewWriter()
	w.WriteVarInt(uint64(rows))
	for i := uint32(0); i < rows; i++ {
		var hash bitcoin.Hash
		binary.LittleEndian.PutUint32(hash[:4], i)
		w.WriteUint8(uint8(bitcoin.PointKindOutput))
		w.WriteHash(hash)
		w.WriteUint32(i)
		w.WriteUint32(500000 + i)
		w.WriteUint64(5000)
	}
	return w.Bytes()
}
