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

package obelisk

import (
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/gobelisk/transport"
	"github.com/jinzhu/copier"
)

const defaultDialTimeout = 10 * time.Second

// Settings describes how to reach a server. Only Server is required; the
// feed endpoints are needed only by SubscribeBlock and
// SubscribeTransaction. When ServerPublicKey is set every channel is
// encrypted, and ClientPrivateKey may additionally be set to authenticate
// this client to servers that restrict access
type Settings struct {
	// Retries is the number of additional dial attempts after a failed one
	Retries uint32
	// DialTimeout bounds each dial attempt. Zero means a 10 second default
	DialTimeout time.Duration
	// Server is the query endpoint
	Server transport.Endpoint
	// BlockServer is the block feed endpoint
	BlockServer transport.Endpoint
	// TransactionServer is the transaction feed endpoint
	TransactionServer transport.Endpoint
	// SocksProxy is an optional SOCKS5 proxy address such as
	// "127.0.0.1:9050". Empty means a direct connection
	SocksProxy string
	// ServerPublicKey is the server's 32-byte Curve25519 public key. Empty
	// means a plaintext connection
	ServerPublicKey []byte
	// ClientPrivateKey is this client's 32-byte Curve25519 private key.
	// Empty means an anonymous (unauthenticated) encrypted connection
	ClientPrivateKey []byte
}

// snapshot deep-copies the settings so callers mutating their slice fields
// after Connect cannot affect an established connection
func (s Settings) snapshot() (Settings, error) {
	var out Settings
	err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true})
	if err != nil {
		return out, err
	}
	return out, nil
}

// dialConfig validates the key material and converts the settings into the
// transport layer's dial configuration
func (s Settings) dialConfig() (transport.DialConfig, error) {
	cfg := transport.DialConfig{
		Timeout: s.DialTimeout,
		Proxy:   s.SocksProxy,
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultDialTimeout
	}
	switch len(s.ServerPublicKey) {
	case 0:
	case transport.KeySize:
		cfg.ServerPublicKey = new([transport.KeySize]byte)
		copy(cfg.ServerPublicKey[:], s.ServerPublicKey)
	default:
		return cfg, fmt.Errorf(
			"server public key must be %d bytes, got %d",
			transport.KeySize,
			len(s.ServerPublicKey),
		)
	}
	switch len(s.ClientPrivateKey) {
	case 0:
	case transport.KeySize:
		if cfg.ServerPublicKey == nil {
			return cfg, errors.New(
				"client private key requires a server public key",
			)
		}
		cfg.ClientPrivateKey = new([transport.KeySize]byte)
		copy(cfg.ClientPrivateKey[:], s.ClientPrivateKey)
	default:
		return cfg, fmt.Errorf(
			"client private key must be %d bytes, got %d",
			transport.KeySize,
			len(s.ClientPrivateKey),
		)
	}
	return cfg, nil
}
