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
	"encoding/binary"
	"fmt"
	"time"
)

// pendingRequest tracks a request awaiting its reply
type pendingRequest struct {
	command      string
	issued       time.Time
	handler      any
	subscription bool
}

// sendRequest registers a handler and sends a correlated request on the
// query channel. Send failures are returned synchronously, and the handler
// will never be invoked when sendRequest returns an error
func (c *Client) sendRequest(command string, payload []byte, handler any) error {
	c.mutex.Lock()
	if c.closing {
		c.mutex.Unlock()
		return ErrShuttingDown
	}
	sock := c.query
	if sock == nil {
		c.mutex.Unlock()
		return ErrNotConnected
	}
	c.lastId++
	id := c.lastId
	c.pending[id] = pendingRequest{
		command:      command,
		issued:       time.Now(),
		handler:      handler,
		subscription: commandTable[command].subscription,
	}
	c.mutex.Unlock()
	var idBytes [4]byte
	binary.LittleEndian.PutUint32(idBytes[:], id)
	if err := sock.Send([]byte(command), idBytes[:], payload); err != nil {
		c.mutex.Lock()
		delete(c.pending, id)
		c.mutex.Unlock()
		return err
	}
	c.logger.Debug(
		"sent request",
		"command", command,
		"id", id,
		"payload_size", len(payload),
	)
	return nil
}

// dispatch routes one query channel message to its pending handler. Replies
// that correlate to nothing are dropped; messages that cannot be routed or
// decoded are surfaced as ProtocolError on the error channel
func (c *Client) dispatch(msg [][]byte) {
	if len(msg) != 3 || len(msg[1]) != 4 {
		c.sendProtocolError(ProtocolError{
			Err: fmt.Errorf("message has wrong shape: %d frames", len(msg)),
		})
		return
	}
	command := string(msg[0])
	id := binary.LittleEndian.Uint32(msg[1])
	payload := msg[2]
	spec, ok := commandTable[command]
	if !ok {
		c.sendProtocolError(ProtocolError{
			Command: command,
			Err:     ErrUnknownCommand,
		})
		return
	}
	c.mutex.Lock()
	entry, ok := c.pending[id]
	if !ok {
		c.mutex.Unlock()
		c.logger.Debug(
			"dropped reply with no pending request",
			"command", command,
			"id", id,
		)
		return
	}
	if entry.command != command {
		c.mutex.Unlock()
		c.sendProtocolError(ProtocolError{
			Command: command,
			Err: fmt.Errorf(
				"reply command does not match request %q",
				entry.command,
			),
		})
		return
	}
	// Subscriptions stay registered so the same handler receives later
	// updates under the same id
	if !entry.subscription {
		delete(c.pending, id)
	}
	c.mutex.Unlock()
	if err := spec.deliver(entry.handler, nil, payload); err != nil {
		// The handler was not invoked. Re-register the request so a later
		// sweep still delivers it exactly once, unless the client is already
		// closing, in which case no sweep is coming and we deliver the
		// shutdown error ourselves
		if !entry.subscription {
			c.mutex.Lock()
			closing := c.closing
			if !closing {
				c.pending[id] = entry
			}
			c.mutex.Unlock()
			if closing {
				_ = spec.deliver(entry.handler, ErrShuttingDown, nil)
			}
		}
		c.sendProtocolError(ProtocolError{Command: command, Err: err})
	}
}

// clearOutstanding empties the pending table and delivers err to every
// handler it held. Handlers run on the calling goroutine, outside the lock,
// so they are free to issue new requests
func (c *Client) clearOutstanding(err error) {
	c.mutex.Lock()
	swept := c.pending
	c.pending = make(map[uint32]pendingRequest)
	c.mutex.Unlock()
	for id, entry := range swept {
		c.logger.Debug(
			"sweeping outstanding request",
			"command", entry.command,
			"id", id,
			"age", time.Since(entry.issued).String(),
		)
		if spec, ok := commandTable[entry.command]; ok {
			_ = spec.deliver(entry.handler, err, nil)
		}
	}
}

// requestsOutstanding returns whether any request is awaiting delivery
func (c *Client) requestsOutstanding() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.pending) > 0
}

// sendProtocolError surfaces a routing or decode failure on the error
// channel without blocking the dispatch loop
func (c *Client) sendProtocolError(perr ProtocolError) {
	c.logger.Debug(
		"protocol error",
		"command", perr.Command,
		"error", perr.Err,
	)
	select {
	case <-c.doneChan:
		return
	default:
	}
	select {
	case c.errorChan <- perr:
	default:
	}
}
