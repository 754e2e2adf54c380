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

// Package bitcoin implements the wire encoding for the objects carried in
// obelisk payloads: blocks, transactions, address history, stealth rows,
// and the primitive types they are built from. Integers are little-endian
// throughout, matching the bitcoin serialization convention
package bitcoin

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is a 32-byte block or transaction digest
type Hash = chainhash.Hash

// HashSize is the size of a Hash
const HashSize = chainhash.HashSize

// ShortHashSize is the size of a ShortHash
const ShortHashSize = 20

// ShortHash is the 20-byte RIPEMD160(SHA256) digest carried by payment
// addresses
type ShortHash [ShortHashSize]byte

// NewShortHash builds a ShortHash from a byte slice of the right length
func NewShortHash(b []byte) (ShortHash, error) {
	var h ShortHash
	if len(b) != ShortHashSize {
		return h, fmt.Errorf(
			"invalid short hash length: expected %d bytes, got %d",
			ShortHashSize,
			len(b),
		)
	}
	copy(h[:], b)
	return h, nil
}

func (h ShortHash) String() string {
	return hex.EncodeToString(h[:])
}

// NewHashFromString parses a hex hash given in the conventional reversed
// display order
func NewHashFromString(s string) (Hash, error) {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return Hash{}, err
	}
	return *h, nil
}

// DoubleHash returns the double-SHA256 digest of b
func DoubleHash(b []byte) Hash {
	return chainhash.DoubleHashH(b)
}
