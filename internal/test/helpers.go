package test

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gobelisk/bitcoin"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// DecodeHash is a helper function for tests that parses a hash from its
// reversed display hex. It panics instead of returning an error, which makes
// it usable inline.
func DecodeHash(hexData string) bitcoin.Hash {
	h, err := bitcoin.NewHashFromString(strings.TrimSpace(hexData))
	if err != nil {
		panic(fmt.Sprintf("error decoding hash: %s", err))
	}
	return h
}

// DecodeShortHash is a helper function for tests that decodes a 20-byte hash
// from hex. It panics instead of returning an error, which makes it usable
// inline.
func DecodeShortHash(hexData string) bitcoin.ShortHash {
	h, err := bitcoin.NewShortHash(DecodeHexString(hexData))
	if err != nil {
		panic(fmt.Sprintf("error decoding short hash: %s", err))
	}
	return h
}
