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
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// Address version bytes for the networks obelisk servers index
const (
	AddressVersionMainnet     byte = 0x00
	AddressVersionMainnetP2SH byte = 0x05
	AddressVersionTestnet     byte = 0x6f
	AddressVersionTestnetP2SH byte = 0xc4
)

// PaymentAddress is a base58check-encoded short hash of a public key or
// script
type PaymentAddress struct {
	version byte
	hash    ShortHash
}

// NewPaymentAddress decodes a base58check payment address
func NewPaymentAddress(encoded string) (PaymentAddress, error) {
	decoded, version, err := base58.CheckDecode(encoded)
	if err != nil {
		return PaymentAddress{}, fmt.Errorf(
			"malformed payment address: %w",
			err,
		)
	}
	hash, err := NewShortHash(decoded)
	if err != nil {
		return PaymentAddress{}, fmt.Errorf(
			"malformed payment address: %w",
			err,
		)
	}
	return PaymentAddress{
		version: version,
		hash:    hash,
	}, nil
}

// NewPaymentAddressFromHash builds a payment address from a version byte
// and a short hash
func NewPaymentAddressFromHash(version byte, hash ShortHash) PaymentAddress {
	return PaymentAddress{
		version: version,
		hash:    hash,
	}
}

// Version returns the address version byte
func (a PaymentAddress) Version() byte {
	return a.version
}

// Hash returns the 20-byte hash the address encodes
func (a PaymentAddress) Hash() ShortHash {
	return a.hash
}

// Encoded returns the base58check form of the address
func (a PaymentAddress) Encoded() string {
	return base58.CheckEncode(a.hash[:], a.version)
}

func (a PaymentAddress) String() string {
	return a.Encoded()
}
