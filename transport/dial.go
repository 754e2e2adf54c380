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

package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/btcsuite/go-socks/socks"
)

// DialConfig carries the connection parameters shared by all sockets a
// client opens against one server deployment
type DialConfig struct {
	// Timeout bounds the TCP connect and, for encrypted endpoints, the
	// session handshake. Zero means no timeout
	Timeout time.Duration
	// Proxy optionally routes the connection through a SOCKS5 proxy at
	// "host:port"
	Proxy string
	// ServerPublicKey enables session encryption when set
	ServerPublicKey *[KeySize]byte
	// ClientPrivateKey authenticates this client to servers that restrict
	// access to known client keys. Ignored unless ServerPublicKey is set
	ClientPrivateKey *[KeySize]byte
}

// Dial connects a socket to an endpoint, negotiating session encryption
// when the config carries a server public key
func Dial(endpoint Endpoint, cfg DialConfig) (*Socket, error) {
	conn, err := dialConn(endpoint, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ServerPublicKey != nil {
		if cfg.Timeout > 0 {
			if err := conn.SetDeadline(time.Now().Add(cfg.Timeout)); err != nil {
				conn.Close()
				return nil, err
			}
		}
		secure, err := NewClientConn(
			conn,
			cfg.ServerPublicKey,
			cfg.ClientPrivateKey,
		)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("connect %s: %w", endpoint, err)
		}
		if err := conn.SetDeadline(time.Time{}); err != nil {
			conn.Close()
			return nil, err
		}
		conn = secure
	}
	return NewSocket(conn), nil
}

func dialConn(endpoint Endpoint, cfg DialConfig) (net.Conn, error) {
	if cfg.Proxy != "" {
		proxy := &socks.Proxy{
			Addr: cfg.Proxy,
		}
		return proxy.DialTimeout("tcp", endpoint.HostPort(), cfg.Timeout)
	}
	return net.DialTimeout("tcp", endpoint.HostPort(), cfg.Timeout)
}
