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

package bitcoin

import "fmt"

// Block is a block header together with the transactions it confirms
type Block struct {
	Header       Header
	Transactions []*Transaction
}

// NewBlockFromBytes decodes a serialized block
func NewBlockFromBytes(data []byte) (*Block, error) {
	r := NewReader(data)
	var b Block
	b.Header = decodeHeader(r)
	txCount := r.ReadVarInt()
	// The smallest possible transaction still needs ten bytes
	if txCount > uint64(r.Remaining())/10 {
		r.fail(fmt.Errorf(
			"%w: implausible transaction count %d",
			ErrShortPayload,
			txCount,
		))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	b.Transactions = make([]*Transaction, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := decodeTransaction(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		b.Transactions = append(b.Transactions, &tx)
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Serialize returns the wire form of the block
func (b *Block) Serialize() []byte {
	w := NewWriter()
	b.Header.encode(w)
	w.WriteVarInt(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		w.WriteBytes(tx.Serialize())
	}
	return w.Bytes()
}

// Hash returns the block hash
func (b *Block) Hash() Hash {
	return b.Header.Hash()
}
