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

// stealthRowSize is the wire size of one stealth row
const stealthRowSize = HashSize + ShortHashSize + HashSize

// StealthEntry is one stealth transaction row: the hash of the ephemeral
// public key the sender used, the receiving address hash, and the hash of
// the transaction that paid it
type StealthEntry struct {
	EphemeralKeyHash Hash
	AddressHash      ShortHash
	TransactionHash  Hash
}

// StealthList is a set of stealth rows matching a prefix filter
type StealthList []StealthEntry

// NewStealthListFromBytes decodes a count-prefixed list of stealth rows
func NewStealthListFromBytes(data []byte) (StealthList, error) {
	r := NewReader(data)
	count := r.ReadVarInt()
	if count > uint64(r.Remaining())/stealthRowSize {
		return nil, fmt.Errorf(
			"%w: implausible stealth row count %d",
			ErrShortPayload,
			count,
		)
	}
	list := make(StealthList, 0, count)
	for i := uint64(0); i < count; i++ {
		var entry StealthEntry
		entry.EphemeralKeyHash = r.ReadHash()
		entry.AddressHash = r.ReadShortHash()
		entry.TransactionHash = r.ReadHash()
		list = append(list, entry)
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return list, nil
}
