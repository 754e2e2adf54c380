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
	"errors"
	"net"
	"sync"
)

// recvQueueSize is the number of received messages buffered before the read
// loop applies backpressure
const recvQueueSize = 10

var ErrSocketClosed = errors.New("socket is closed")

// Socket is a connected duplex message channel. Sends are atomic at the
// message level and received messages are delivered in order on a buffered
// channel. The receive channel is closed when the socket stops, whether by
// a call to Stop or by a read error
type Socket struct {
	conn      net.Conn
	sendMutex sync.Mutex
	recvChan  chan [][]byte
	ErrorChan chan error
	doneChan  chan bool
	onceStop  sync.Once
}

// NewSocket wraps an established connection and starts its read loop
func NewSocket(conn net.Conn) *Socket {
	s := &Socket{
		conn:      conn,
		recvChan:  make(chan [][]byte, recvQueueSize),
		ErrorChan: make(chan error, 10),
		doneChan:  make(chan bool),
	}
	go s.readLoop()
	return s
}

// Stop shuts the socket down and closes the underlying connection. It is
// safe to call more than once
func (s *Socket) Stop() {
	s.onceStop.Do(func() {
		// Close doneChan to signify that we're shutting down
		close(s.doneChan)
		s.conn.Close()
	})
}

// RecvChan returns the channel of received messages. Each message is the
// ordered list of frame bodies it was sent with
func (s *Socket) RecvChan() <-chan [][]byte {
	return s.recvChan
}

// Send writes a message made up of the given frame bodies
func (s *Socket) Send(parts ...[]byte) error {
	// We use a mutex to make sure only one message can be sent at a time
	s.sendMutex.Lock()
	defer s.sendMutex.Unlock()
	select {
	case <-s.doneChan:
		return ErrSocketClosed
	default:
	}
	return writeMessage(s.conn, parts)
}

func (s *Socket) sendError(err error) {
	// Immediately return if we're already shutting down
	select {
	case <-s.doneChan:
		return
	default:
	}
	// Send error to consumer
	s.ErrorChan <- err
	// Stop the socket on any read error
	s.Stop()
}

func (s *Socket) readLoop() {
	// The read loop is the only writer to recvChan, so it closes the
	// channel on the way out to signal consumers that the socket is dead
	defer close(s.recvChan)
	for {
		// Break out of read loop if we're shutting down
		select {
		case <-s.doneChan:
			return
		default:
		}
		msg, err := readMessage(s.conn)
		if err != nil {
			s.sendError(err)
			return
		}
		select {
		case s.recvChan <- msg:
		case <-s.doneChan:
			return
		}
	}
}
