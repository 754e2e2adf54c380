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

package transport_test

import (
	"testing"

	"github.com/blinklabs-io/gobelisk/transport"
)

func TestParseEndpoint(t *testing.T) {
	testDefs := []struct {
		uri          string
		expectedHost string
		expectedPort uint16
		expectErr    bool
	}{
		{
			uri:          "tcp://mainnet.libbitcoin.net:9091",
			expectedHost: "mainnet.libbitcoin.net",
			expectedPort: 9091,
		},
		{
			uri:          "localhost:9091",
			expectedHost: "localhost",
			expectedPort: 9091,
		},
		{
			uri:          "tcp://127.0.0.1:19091",
			expectedHost: "127.0.0.1",
			expectedPort: 19091,
		},
		{
			uri:          "tcp://[::1]:9091",
			expectedHost: "::1",
			expectedPort: 9091,
		},
		{
			uri:       "ipc:///tmp/server",
			expectErr: true,
		},
		{
			uri:       "tcp://nohost",
			expectErr: true,
		},
		{
			uri:       "tcp://host:notaport",
			expectErr: true,
		},
		{
			uri:       "tcp://host:70000",
			expectErr: true,
		},
		{
			uri:       "tcp://:9091",
			expectErr: true,
		},
	}
	for _, testDef := range testDefs {
		endpoint, err := transport.ParseEndpoint(testDef.uri)
		if testDef.expectErr {
			if err == nil {
				t.Errorf("expected error parsing %q, got none", testDef.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error parsing %q: %s", testDef.uri, err)
			continue
		}
		if endpoint.Host != testDef.expectedHost ||
			endpoint.Port != testDef.expectedPort {
			t.Errorf(
				"did not get expected endpoint for %q: got %s:%d",
				testDef.uri,
				endpoint.Host,
				endpoint.Port,
			)
		}
	}
}

func TestEndpointString(t *testing.T) {
	endpoint := transport.Endpoint{Host: "mainnet.libbitcoin.net", Port: 9091}
	if endpoint.String() != "tcp://mainnet.libbitcoin.net:9091" {
		t.Fatalf("did not get expected URI: %s", endpoint.String())
	}
	if endpoint.HostPort() != "mainnet.libbitcoin.net:9091" {
		t.Fatalf("did not get expected host:port: %s", endpoint.HostPort())
	}
	if endpoint.IsZero() {
		t.Fatalf("expected non-zero endpoint")
	}
	if !(transport.Endpoint{}).IsZero() {
		t.Fatalf("expected zero endpoint")
	}
}
