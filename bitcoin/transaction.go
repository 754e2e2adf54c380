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

import (
	"encoding/binary"
	"fmt"
)

const (
	witnessMarker = 0x00
	witnessFlag   = 0x01

	// minInputSize and minOutputSize bound how many inputs or outputs a
	// payload of a given length could possibly hold
	minInputSize  = HashSize + 4 + 1 + 4
	minOutputSize = 8 + 1
)

// OutPoint identifies a transaction output by transaction hash and index
type OutPoint struct {
	Hash  Hash
	Index uint32
}

func (p OutPoint) String() string {
	return fmt.Sprintf("%s:%d", p.Hash, p.Index)
}

// Checksum returns the short digest used to correlate a spend row of
// address history with the output row it consumes
func (p OutPoint) Checksum() uint64 {
	w := NewWriter()
	w.WriteHash(p.Hash)
	w.WriteUint32(p.Index)
	digest := DoubleHash(w.Bytes())
	return binary.LittleEndian.Uint64(digest[:8])
}

// TransactionInput spends a previous output
type TransactionInput struct {
	PreviousOutput OutPoint
	Script         []byte
	Sequence       uint32
	Witness        [][]byte
}

// TransactionOutput carries value to an output script
type TransactionOutput struct {
	Value  uint64
	Script []byte
}

// Transaction is a bitcoin transaction
type Transaction struct {
	Version  uint32
	Inputs   []TransactionInput
	Outputs  []TransactionOutput
	LockTime uint32
}

// NewTransactionFromBytes decodes a serialized transaction in either the
// base or the witness encoding
func NewTransactionFromBytes(data []byte) (*Transaction, error) {
	r := NewReader(data)
	tx := decodeTransaction(r)
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return &tx, nil
}

func decodeTransaction(r *Reader) Transaction {
	var tx Transaction
	tx.Version = r.ReadUint32()
	inputCount := r.ReadVarInt()
	hasWitness := false
	// A zero input count marks the witness encoding: a flag byte follows,
	// then the real input count
	if inputCount == witnessMarker && r.Err() == nil && r.Remaining() > 0 {
		if flag := r.ReadUint8(); flag != witnessFlag {
			r.fail(fmt.Errorf("invalid witness flag 0x%02x", flag))
			return tx
		}
		hasWitness = true
		inputCount = r.ReadVarInt()
	}
	if inputCount > uint64(r.Remaining())/minInputSize {
		r.fail(fmt.Errorf("%w: implausible input count %d", ErrShortPayload, inputCount))
		return tx
	}
	tx.Inputs = make([]TransactionInput, 0, inputCount)
	for i := uint64(0); i < inputCount; i++ {
		var in TransactionInput
		in.PreviousOutput.Hash = r.ReadHash()
		in.PreviousOutput.Index = r.ReadUint32()
		in.Script = r.ReadVarBytes()
		in.Sequence = r.ReadUint32()
		tx.Inputs = append(tx.Inputs, in)
	}
	outputCount := r.ReadVarInt()
	if outputCount > uint64(r.Remaining())/minOutputSize {
		r.fail(fmt.Errorf("%w: implausible output count %d", ErrShortPayload, outputCount))
		return tx
	}
	tx.Outputs = make([]TransactionOutput, 0, outputCount)
	for i := uint64(0); i < outputCount; i++ {
		var out TransactionOutput
		out.Value = r.ReadUint64()
		out.Script = r.ReadVarBytes()
		tx.Outputs = append(tx.Outputs, out)
	}
	if hasWitness {
		for i := range tx.Inputs {
			itemCount := r.ReadVarInt()
			if itemCount > uint64(r.Remaining()) {
				r.fail(fmt.Errorf("%w: implausible witness item count %d", ErrShortPayload, itemCount))
				return tx
			}
			witness := make([][]byte, 0, itemCount)
			for j := uint64(0); j < itemCount; j++ {
				witness = append(witness, r.ReadVarBytes())
			}
			tx.Inputs[i].Witness = witness
		}
	}
	tx.LockTime = r.ReadUint32()
	return tx
}

// Serialize returns the wire form of the transaction, using the witness
// encoding when any input carries witness data
func (t *Transaction) Serialize() []byte {
	w := NewWriter()
	t.encode(w, t.HasWitness())
	return w.Bytes()
}

// SerializeBase returns the wire form without witness data. Transaction
// hashes are computed over this encoding
func (t *Transaction) SerializeBase() []byte {
	w := NewWriter()
	t.encode(w, false)
	return w.Bytes()
}

func (t *Transaction) encode(w *Writer, withWitness bool) {
	w.WriteUint32(t.Version)
	if withWitness {
		w.WriteUint8(witnessMarker)
		w.WriteUint8(witnessFlag)
	}
	w.WriteVarInt(uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		w.WriteHash(in.PreviousOutput.Hash)
		w.WriteUint32(in.PreviousOutput.Index)
		w.WriteVarBytes(in.Script)
		w.WriteUint32(in.Sequence)
	}
	w.WriteVarInt(uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		w.WriteUint64(out.Value)
		w.WriteVarBytes(out.Script)
	}
	if withWitness {
		for _, in := range t.Inputs {
			w.WriteVarInt(uint64(len(in.Witness)))
			for _, item := range in.Witness {
				w.WriteVarBytes(item)
			}
		}
	}
	w.WriteUint32(t.LockTime)
}

// HasWitness returns true when any input carries witness data
func (t *Transaction) HasWitness() bool {
	for _, in := range t.Inputs {
		if len(in.Witness) > 0 {
			return true
		}
	}
	return false
}

// Hash returns the transaction hash, computed over the base encoding
func (t *Transaction) Hash() Hash {
	return DoubleHash(t.SerializeBase())
}
