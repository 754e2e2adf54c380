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

package obelisk_mock

import (
	"testing"
	"time"

	obelisk "github.com/blinklabs-io/gobelisk"
)

// Basic test of conversation mock functionality
func TestBasic(t *testing.T) {
	server, err := NewServer(
		[]ConversationEntry{
			{
				Type:    EntryTypeInput,
				Command: "blockchain.fetch_last_height",
			},
			{
				Type:    EntryTypeOutput,
				Command: "blockchain.fetch_last_height",
				Body:    []byte{0x60, 0xae, 0x0a, 0x00},
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error when creating mock server: %s", err)
	}
	defer server.Close()
	client, err := obelisk.New()
	if err != nil {
		t.Fatalf("unexpected error when creating client object: %s", err)
	}
	settings := obelisk.Settings{
		Server: server.Endpoint(),
	}
	if err := client.Connect(settings); err != nil {
		t.Fatalf("unexpected error when connecting: %s", err)
	}
	var handlerErr error
	var handlerHeight uint64
	err = client.FetchLastHeight(
		func(err error, height uint64) {
			handlerErr = err
			handlerHeight = height
		},
	)
	if err != nil {
		t.Fatalf("unexpected error when sending request: %s", err)
	}
	client.Wait(5 * time.Second)
	if handlerErr != nil {
		t.Fatalf("unexpected handler error: %s", handlerErr)
	}
	if handlerHeight != 700000 {
		t.Fatalf(
			"did not get expected height: expected 700000, got %d",
			handlerHeight,
		)
	}
	// Close client connection
	if err := client.Close(); err != nil {
		t.Fatalf("unexpected error when closing client object: %s", err)
	}
}
