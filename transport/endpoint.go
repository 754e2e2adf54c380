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

// Package transport implements the framed message channel used to talk to
// obelisk servers: TCP endpoints with optional SOCKS5 proxying, optional
// Curve25519 session encryption, and a multipart frame codec
package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint identifies a server socket in "tcp://host:port" form
type Endpoint struct {
	Host string
	Port uint16
}

// ParseEndpoint parses an endpoint URI. The "tcp://" scheme prefix is
// optional, but any other scheme is rejected
func ParseEndpoint(uri string) (Endpoint, error) {
	s := uri
	if idx := strings.Index(s, "://"); idx >= 0 {
		if scheme := s[:idx]; scheme != "tcp" {
			return Endpoint{}, fmt.Errorf(
				"unsupported endpoint scheme: %s",
				scheme,
			)
		}
		s = s[idx+3:]
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("malformed endpoint %q: %w", uri, err)
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("malformed endpoint %q: empty host", uri)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Endpoint{}, fmt.Errorf(
			"malformed endpoint %q: invalid port: %w",
			uri,
			err,
		)
	}
	return Endpoint{Host: host, Port: uint16(port)}, nil
}

// String returns the endpoint in "tcp://host:port" form
func (e Endpoint) String() string {
	return "tcp://" + e.HostPort()
}

// HostPort returns the endpoint in the "host:port" form expected by net.Dial
func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// IsZero returns true for an unconfigured endpoint
func (e Endpoint) IsZero() bool {
	return e.Host == "" && e.Port == 0
}
