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

package bitcoin_test

import (
	"testing"

	"github.com/blinklabs-io/gobelisk/bitcoin"
	test "github.com/blinklabs-io/gobelisk/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlock() *bitcoin.Block {
	coinbase := &bitcoin.Transaction{
		Version: 1,
		Inputs: []bitcoin.TransactionInput{
			{
				PreviousOutput: bitcoin.OutPoint{
					Index: 0xffffffff,
				},
				Script:   test.DecodeHexString("0401020304"),
				Sequence: 0xffffffff,
			},
		},
		Outputs: []bitcoin.TransactionOutput{
			{
				Value:  5000000000,
				Script: test.DecodeHexString("51"),
			},
		},
	}
	return &bitcoin.Block{
		Header: bitcoin.Header{
			Version: 2,
			PrevBlock: test.DecodeHash(
				"000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
			),
			MerkleRoot: coinbase.Hash(),
			Timestamp:  1231469665,
			Bits:       0x1d00ffff,
			Nonce:      2573394689,
		},
		Transactions: []*bitcoin.Transaction{coinbase, testTransaction()},
	}
}

func TestBlockRoundTrip(t *testing.T) {
	block := testBlock()
	raw := block.Serialize()
	decoded, err := bitcoin.NewBlockFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, block, decoded)
	assert.Equal(t, block.Header.Hash(), decoded.Hash())
}

func TestBlockTruncated(t *testing.T) {
	raw := testBlock().Serialize()
	_, err := bitcoin.NewBlockFromBytes(raw[:len(raw)-5])
	require.Error(t, err)
	_, err = bitcoin.NewBlockFromBytes(raw[:bitcoin.HeaderSize])
	require.Error(t, err)
}

func TestBlockTrailingBytes(t *testing.T) {
	raw := testBlock().Serialize()
	_, err := bitcoin.NewBlockFromBytes(append(raw, 0xde, 0xad))
	assert.ErrorIs(t, err, bitcoin.ErrTrailingBytes)
}

func TestBlockImplausibleTransactionCount(t *testing.T) {
	w := bitcoin.NewWriter()
	w.WriteBytes(testBlock().Header.Serialize())
	w.WriteVarInt(1 << 40)
	_, err := bitcoin.NewBlockFromBytes(w.Bytes())
	assert.ErrorIs(t, err, bitcoin.ErrShortPayload)
}
