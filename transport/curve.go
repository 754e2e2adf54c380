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
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// Session encryption follows the CurveZMQ model: the client knows the
// server's static public key ahead of time, both sides exchange transient
// keys during a two-message handshake, and every payload after the
// handshake travels inside a NaCl box sealed with the transient session
// key. Clients may additionally present a static key of their own, vouched
// for by a box only the static key holder could have produced, for servers
// that restrict access to known clients.

// KeySize is the size of a Curve25519 key
const KeySize = 32

const (
	handshakeVersion = 0x01

	vouchSize         = KeySize + box.Overhead
	helloPlainSize    = KeySize + vouchSize
	helloSealedSize   = helloPlainSize + box.Overhead
	welcomeSealedSize = KeySize + box.Overhead

	noncePrefixClient = "gobelisk-msg-cli"
	noncePrefixServer = "gobelisk-msg-srv"

	maxRecordSize = MaxFrameBody + 4096
)

var (
	ErrHandshakeFailed = errors.New("session handshake failed")
	ErrDecryptFailed   = errors.New("message decryption failed")
	ErrRecordTooLarge  = errors.New("encrypted record exceeds maximum size")
)

// ParseKey decodes a hex-encoded Curve25519 key
func ParseKey(s string) (*[KeySize]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed key: %w", err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf(
			"malformed key: expected %d bytes, got %d",
			KeySize,
			len(raw),
		)
	}
	key := new([KeySize]byte)
	copy(key[:], raw)
	return key, nil
}

// GenerateKeypair returns a new random Curve25519 keypair
func GenerateKeypair() (*[KeySize]byte, *[KeySize]byte, error) {
	return box.GenerateKey(rand.Reader)
}

// PublicKey derives the public key for a Curve25519 private key
func PublicKey(privateKey *[KeySize]byte) (*[KeySize]byte, error) {
	raw, err := curve25519.X25519(privateKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	key := new([KeySize]byte)
	copy(key[:], raw)
	return key, nil
}

// SecureConn wraps a network connection with per-message encryption. Each
// write becomes a length-prefixed sealed record, and reads reassemble the
// plaintext stream from received records
type SecureConn struct {
	conn       net.Conn
	shared     [KeySize]byte
	peerKey    [KeySize]byte
	sendPrefix string
	recvPrefix string
	sendSeq    uint64
	recvSeq    uint64
	readBuf    bytes.Buffer
	readMutex  sync.Mutex
	writeMutex sync.Mutex
}

// NewClientConn performs the client side of the session handshake over conn
// and returns the encrypted connection. The server is authenticated by its
// ability to unseal the hello box addressed to serverPublicKey. A client
// private key is only needed for servers that restrict access to known
// clients; pass nil to connect anonymously
func NewClientConn(
	conn net.Conn,
	serverPublicKey *[KeySize]byte,
	clientPrivateKey *[KeySize]byte,
) (*SecureConn, error) {
	transientPub, transientPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, helloPlainSize)
	if clientPrivateKey != nil {
		clientPublicKey, err := PublicKey(clientPrivateKey)
		if err != nil {
			return nil, err
		}
		// The vouch proves to the server that the transient key was issued
		// by the holder of the client's static key
		vouch := box.Seal(
			nil,
			transientPub[:],
			handshakeNonce("vouch"),
			serverPublicKey,
			clientPrivateKey,
		)
		copy(plain, clientPublicKey[:])
		copy(plain[KeySize:], vouch)
	}
	sealed := box.Seal(
		nil,
		plain,
		handshakeNonce("hello"),
		serverPublicKey,
		transientPriv,
	)
	hello := make([]byte, 0, 1+KeySize+helloSealedSize)
	hello = append(hello, handshakeVersion)
	hello = append(hello, transientPub[:]...)
	hello = append(hello, sealed...)
	if err := writeMessage(conn, [][]byte{hello}); err != nil {
		return nil, err
	}
	msg, err := readMessage(conn)
	if err != nil {
		return nil, err
	}
	if len(msg) != 1 {
		return nil, fmt.Errorf("%w: unexpected welcome shape", ErrHandshakeFailed)
	}
	welcome := msg[0]
	if len(welcome) != 1+welcomeSealedSize || welcome[0] != handshakeVersion {
		return nil, fmt.Errorf("%w: malformed welcome", ErrHandshakeFailed)
	}
	opened, ok := box.Open(
		nil,
		welcome[1:],
		handshakeNonce("welcome"),
		serverPublicKey,
		transientPriv,
	)
	if !ok {
		return nil, fmt.Errorf(
			"%w: server authentication failed",
			ErrHandshakeFailed,
		)
	}
	serverTransientPub := new([KeySize]byte)
	copy(serverTransientPub[:], opened)
	s := &SecureConn{
		conn:       conn,
		peerKey:    *serverPublicKey,
		sendPrefix: noncePrefixClient,
		recvPrefix: noncePrefixServer,
	}
	box.Precompute(&s.shared, serverTransientPub, transientPriv)
	return s, nil
}

// NewServerConn performs the server side of the session handshake over conn
// and returns the encrypted connection. Clients presenting a static key
// must vouch for their transient key; anonymous clients are accepted with a
// zero peer key
func NewServerConn(
	conn net.Conn,
	serverPrivateKey *[KeySize]byte,
) (*SecureConn, error) {
	msg, err := readMessage(conn)
	if err != nil {
		return nil, err
	}
	if len(msg) != 1 {
		return nil, fmt.Errorf("%w: unexpected hello shape", ErrHandshakeFailed)
	}
	hello := msg[0]
	if len(hello) != 1+KeySize+helloSealedSize ||
		hello[0] != handshakeVersion {
		return nil, fmt.Errorf("%w: malformed hello", ErrHandshakeFailed)
	}
	clientTransientPub := new([KeySize]byte)
	copy(clientTransientPub[:], hello[1:1+KeySize])
	plain, ok := box.Open(
		nil,
		hello[1+KeySize:],
		handshakeNonce("hello"),
		clientTransientPub,
		serverPrivateKey,
	)
	if !ok {
		return nil, fmt.Errorf("%w: cannot open hello", ErrHandshakeFailed)
	}
	clientPublicKey := new([KeySize]byte)
	copy(clientPublicKey[:], plain[:KeySize])
	if *clientPublicKey != ([KeySize]byte{}) {
		vouched, ok := box.Open(
			nil,
			plain[KeySize:],
			handshakeNonce("vouch"),
			clientPublicKey,
			serverPrivateKey,
		)
		if !ok || !bytes.Equal(vouched, clientTransientPub[:]) {
			return nil, fmt.Errorf(
				"%w: client vouch rejected",
				ErrHandshakeFailed,
			)
		}
	}
	transientPub, transientPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	sealed := box.Seal(
		nil,
		transientPub[:],
		handshakeNonce("welcome"),
		clientTransientPub,
		serverPrivateKey,
	)
	welcome := make([]byte, 0, 1+welcomeSealedSize)
	welcome = append(welcome, handshakeVersion)
	welcome = append(welcome, sealed...)
	if err := writeMessage(conn, [][]byte{welcome}); err != nil {
		return nil, err
	}
	s := &SecureConn{
		conn:       conn,
		peerKey:    *clientPublicKey,
		sendPrefix: noncePrefixServer,
		recvPrefix: noncePrefixClient,
	}
	box.Precompute(&s.shared, clientTransientPub, transientPriv)
	return s, nil
}

// PeerKey returns the static public key presented by the peer during the
// handshake. On the server side this is zero for anonymous clients
func (s *SecureConn) PeerKey() [KeySize]byte {
	return s.peerKey
}

func (s *SecureConn) Write(p []byte) (int, error) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	nonce := recordNonce(s.sendPrefix, s.sendSeq)
	s.sendSeq++
	sealed := box.SealAfterPrecomputation(nil, p, nonce, &s.shared)
	record := make([]byte, 4+len(sealed))
	binary.BigEndian.PutUint32(record, uint32(len(sealed)))
	copy(record[4:], sealed)
	if _, err := s.conn.Write(record); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *SecureConn) Read(p []byte) (int, error) {
	s.readMutex.Lock()
	defer s.readMutex.Unlock()
	for s.readBuf.Len() == 0 {
		var lenBuf [4]byte
		if _, err := io.ReadFull(s.conn, lenBuf[:]); err != nil {
			return 0, err
		}
		recordLen := binary.BigEndian.Uint32(lenBuf[:])
		if recordLen > maxRecordSize {
			return 0, ErrRecordTooLarge
		}
		if recordLen < box.Overhead {
			return 0, ErrDecryptFailed
		}
		sealed := make([]byte, recordLen)
		if _, err := io.ReadFull(s.conn, sealed); err != nil {
			return 0, err
		}
		nonce := recordNonce(s.recvPrefix, s.recvSeq)
		s.recvSeq++
		plain, ok := box.OpenAfterPrecomputation(nil, sealed, nonce, &s.shared)
		if !ok {
			return 0, ErrDecryptFailed
		}
		s.readBuf.Write(plain)
	}
	return s.readBuf.Read(p)
}

func (s *SecureConn) Close() error {
	return s.conn.Close()
}

func (s *SecureConn) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *SecureConn) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *SecureConn) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

func (s *SecureConn) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *SecureConn) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// handshakeNonce builds the fixed nonce for a handshake message. Transient
// keys are fresh for every connection, so these never repeat for a key
func handshakeNonce(label string) *[24]byte {
	nonce := new([24]byte)
	copy(nonce[:], "gobelisk:"+label)
	return nonce
}

// recordNonce builds the nonce for a data record from the direction prefix
// and the per-direction record sequence number
func recordNonce(prefix string, seq uint64) *[24]byte {
	nonce := new([24]byte)
	copy(nonce[:], prefix)
	binary.BigEndian.PutUint64(nonce[16:], seq)
	return nonce
}
