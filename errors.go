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
)

// StatusSuccess is the reply status code for a successful operation
const StatusSuccess uint32 = 0

var (
	// ErrTimeout is delivered to every handler still pending when a wait
	// or monitor deadline expires
	ErrTimeout = errors.New("request timed out")
	// ErrShuttingDown is delivered to every handler still pending when the
	// client shuts down
	ErrShuttingDown = errors.New("client is shutting down")
	// ErrNotConnected is returned when an operation needs a connection the
	// client does not have
	ErrNotConnected = errors.New("client is not connected")
	// ErrAlreadyConnected is returned by Connect on a connected client
	ErrAlreadyConnected = errors.New("client is already connected")
	// ErrNoEndpoint is returned when an operation needs an endpoint the
	// settings do not carry
	ErrNoEndpoint = errors.New("no endpoint configured")
	// ErrUnknownCommand reports a reply naming a command this client never
	// issues
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMalformedReply reports a reply payload that does not decode as
	// the shape its command calls for
	ErrMalformedReply = errors.New("malformed reply")

	errNilHandler = errors.New("nil handler")
)

// ServerError is a non-zero status code returned by the server, carried
// through to the request's handler verbatim
type ServerError uint32

func (e ServerError) Error() string {
	return fmt.Sprintf("server returned error code %d", uint32(e))
}

// Code returns the raw status code
func (e ServerError) Code() uint32 {
	return uint32(e)
}

// ProtocolError reports a message received on the query channel that could
// not be routed or decoded. These are surfaced on the client's error
// channel; no per-request handler is involved
type ProtocolError struct {
	Command string
	Err     error
}

func (e ProtocolError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("protocol error: %s: %s", e.Command, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Err)
}

func (e ProtocolError) Unwrap() error {
	return e.Err
}
