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

// HeaderSize is the fixed length of a serialized block header
const HeaderSize = 80

// Header is a block header
type Header struct {
	Version    uint32
	PrevBlock  Hash
	MerkleRoot Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// NewHeaderFromBytes decodes a serialized block header
func NewHeaderFromBytes(data []byte) (*Header, error) {
	r := NewReader(data)
	h := decodeHeader(r)
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return &h, nil
}

func decodeHeader(r *Reader) Header {
	var h Header
	h.Version = r.ReadUint32()
	h.PrevBlock = r.ReadHash()
	h.MerkleRoot = r.ReadHash()
	h.Timestamp = r.ReadUint32()
	h.Bits = r.ReadUint32()
	h.Nonce = r.ReadUint32()
	return h
}

// Serialize returns the 80-byte wire form of the header
func (h *Header) Serialize() []byte {
	w := NewWriter()
	h.encode(w)
	return w.Bytes()
}

func (h *Header) encode(w *Writer) {
	w.WriteUint32(h.Version)
	w.WriteHash(h.PrevBlock)
	w.WriteHash(h.MerkleRoot)
	w.WriteUint32(h.Timestamp)
	w.WriteUint32(h.Bits)
	w.WriteUint32(h.Nonce)
}

// Hash returns the block hash, the double-SHA256 digest of the serialized
// header
func (h *Header) Hash() Hash {
	return DoubleHash(h.Serialize())
}
