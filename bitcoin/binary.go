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
	"strings"
)

// Binary is a left-to-right bit prefix, used to filter stealth queries and
// stealth subscriptions. Bits beyond the bit count are always zero
type Binary struct {
	bitCount uint8
	data     []byte
}

// NewBinary builds a bit prefix from packed bytes. The slice must be
// exactly long enough to hold bitCount bits; unused trailing bits are
// cleared
func NewBinary(bitCount uint8, data []byte) (Binary, error) {
	byteCount := binaryByteCount(bitCount)
	if len(data) != byteCount {
		return Binary{}, fmt.Errorf(
			"invalid prefix length: %d bits need %d bytes, got %d",
			bitCount,
			byteCount,
			len(data),
		)
	}
	b := Binary{
		bitCount: bitCount,
		data:     make([]byte, byteCount),
	}
	copy(b.data, data)
	if trailing := byteCount*8 - int(bitCount); trailing > 0 {
		b.data[byteCount-1] &= 0xff << trailing
	}
	return b, nil
}

// NewBinaryFromString parses a prefix written as "0" and "1" characters,
// most significant bit first
func NewBinaryFromString(s string) (Binary, error) {
	if len(s) > 0xff {
		return Binary{}, fmt.Errorf("prefix too long: %d bits", len(s))
	}
	b := Binary{
		bitCount: uint8(len(s)),
		data:     make([]byte, binaryByteCount(uint8(len(s)))),
	}
	for i, c := range s {
		switch c {
		case '1':
			b.data[i/8] |= 0x80 >> (i % 8)
		case '0':
		default:
			return Binary{}, fmt.Errorf("invalid prefix character %q", c)
		}
	}
	return b, nil
}

// BitCount returns the number of significant bits in the prefix
func (b Binary) BitCount() uint8 {
	return b.bitCount
}

// Bytes returns the packed prefix bytes
func (b Binary) Bytes() []byte {
	return b.data
}

func (b Binary) String() string {
	var sb strings.Builder
	for i := 0; i < int(b.bitCount); i++ {
		if b.data[i/8]&(0x80>>(i%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func binaryByteCount(bitCount uint8) int {
	return (int(bitCount) + 7) / 8
}
