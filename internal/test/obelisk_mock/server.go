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
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/gobelisk/transport"
)

// ServerOptionFunc is a type that represents functions that modify the mock server config
type ServerOptionFunc func(*Server)

// WithServerKey enables encryption with the provided Curve25519 private key
func WithServerKey(key *[transport.KeySize]byte) ServerOptionFunc {
	return func(s *Server) {
		s.serverKey = key
	}
}

// Server mocks an obelisk server on a loopback listener. It accepts a
// single connection and walks the scripted conversation against it,
// panicking on any mismatch. The same type serves as a query server and,
// with output-only conversations, as a block or transaction feed server
type Server struct {
	listener     net.Listener
	serverKey    *[transport.KeySize]byte
	conversation []ConversationEntry
	waitGroup    sync.WaitGroup
	onceClose    sync.Once
	mutex        sync.Mutex
	socket       *transport.Socket
	closed       bool
}

// NewServer returns a new Server listening on a random loopback port with
// the provided conversation entries
func NewServer(
	conversation []ConversationEntry,
	options ...ServerOptionFunc,
) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener:     listener,
		conversation: conversation,
	}
	// Apply provided options functions
	for _, option := range options {
		option(s)
	}
	s.waitGroup.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Endpoint returns the endpoint a client should dial
func (s *Server) Endpoint() transport.Endpoint {
	addr, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		panic("mock server listener is not TCP")
	}
	return transport.Endpoint{
		Host: "127.0.0.1",
		Port: uint16(addr.Port), // #nosec G115 -- TCP ports fit in uint16
	}
}

// Close shuts the listener and any accepted connection down. It is safe to
// call more than once
func (s *Server) Close() error {
	s.onceClose.Do(func() {
		s.mutex.Lock()
		s.closed = true
		socket := s.socket
		s.mutex.Unlock()
		s.listener.Close()
		if socket != nil {
			socket.Stop()
		}
	})
	return nil
}

// Wait blocks until the conversation goroutine has finished
func (s *Server) Wait() {
	s.waitGroup.Wait()
}

func (s *Server) acceptLoop() {
	defer s.waitGroup.Done()
	conn, err := s.listener.Accept()
	if err != nil {
		// The listener was closed before a client arrived
		return
	}
	if s.serverKey != nil {
		secure, err := transport.NewServerConn(conn, s.serverKey)
		if err != nil {
			conn.Close()
			panic(fmt.Sprintf("mock server handshake error: %s", err))
		}
		conn = secure
	}
	socket := transport.NewSocket(conn)
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		socket.Stop()
		return
	}
	s.socket = socket
	s.mutex.Unlock()
	s.asyncLoop(socket)
}

func (s *Server) asyncLoop(socket *transport.Socket) {
	var lastId uint32
	for _, entry := range s.conversation {
		switch entry.Type {
		case EntryTypeInput:
			id, ok := s.processInputEntry(socket, entry)
			if !ok {
				// The client hung up mid-conversation
				return
			}
			lastId = id
		case EntryTypeOutput:
			if err := s.processOutputEntry(socket, entry, lastId); err != nil {
				panic(fmt.Sprintf("output error: %s", err))
			}
		case EntryTypeDelay:
			time.Sleep(entry.Duration)
		case EntryTypeClose:
			s.Close()
			return
		default:
			panic(
				fmt.Sprintf(
					"unknown conversation entry type: %d: %#v",
					entry.Type,
					entry,
				),
			)
		}
	}
}

func (s *Server) processInputEntry(
	socket *transport.Socket,
	entry ConversationEntry,
) (uint32, bool) {
	msg, ok := <-socket.RecvChan()
	if !ok {
		return 0, false
	}
	if len(msg) != 3 || len(msg[1]) != 4 {
		panic(fmt.Sprintf("input message has wrong shape: %d frames", len(msg)))
	}
	command := string(msg[0])
	if command != entry.Command {
		panic(
			fmt.Sprintf(
				"input command did not match expected value: expected %s, got %s",
				entry.Command,
				command,
			),
		)
	}
	if entry.Payload != nil && !bytes.Equal(msg[2], entry.Payload) {
		panic(
			fmt.Sprintf(
				"input payload did not match expected value: expected %x, got %x",
				entry.Payload,
				msg[2],
			),
		)
	}
	return binary.LittleEndian.Uint32(msg[1]), true
}

func (s *Server) processOutputEntry(
	socket *transport.Socket,
	entry ConversationEntry,
	lastId uint32,
) error {
	if entry.RawFrames != nil {
		return socket.Send(entry.RawFrames...)
	}
	id := entry.Id
	if id == 0 {
		id = lastId
	}
	var idBytes [4]byte
	binary.LittleEndian.PutUint32(idBytes[:], id)
	payload := binary.LittleEndian.AppendUint32(nil, entry.Status)
	payload = append(payload, entry.Body...)
	return socket.Send([]byte(entry.Command), idBytes[:], payload)
}
