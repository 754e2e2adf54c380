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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/blinklabs-io/gobelisk/transport"
	"go.uber.org/goleak"
)

func listenerEndpoint(t *testing.T, listener net.Listener) transport.Endpoint {
	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("listener is not TCP")
	}
	return transport.Endpoint{
		Host: "127.0.0.1",
		Port: uint16(addr.Port), // #nosec G115 -- TCP ports fit in uint16
	}
}

func TestDialDirect(t *testing.T) {
	defer goleak.VerifyNone(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error creating listener: %s", err)
	}
	defer listener.Close()
	sockChan := make(chan *transport.Socket, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			// We can't call t.Fatalf() from a different Goroutine, so we panic
			// instead
			panic(fmt.Sprintf("accept error: %s", err))
		}
		server := transport.NewSocket(conn)
		if err := server.Send([]byte("hello")); err != nil {
			panic(fmt.Sprintf("send error: %s", err))
		}
		sockChan <- server
	}()
	client, err := transport.Dial(
		listenerEndpoint(t, listener),
		transport.DialConfig{Timeout: 2 * time.Second},
	)
	if err != nil {
		t.Fatalf("unexpected error dialing: %s", err)
	}
	defer client.Stop()
	server := <-sockChan
	defer server.Stop()
	select {
	case msg := <-client.RecvChan():
		if len(msg) != 1 || !bytes.Equal(msg[0], []byte("hello")) {
			t.Fatalf("did not get expected message: %v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
}

// serveSocksConnect performs the server half of a SOCKS5 CONNECT handshake
// and returns the target address the client asked for. The same connection
// then carries the tunneled traffic
func serveSocksConnect(conn net.Conn) (string, error) {
	greeting := make([]byte, 2)
	if _, err := io.ReadFull(conn, greeting); err != nil {
		return "", err
	}
	if greeting[0] != 5 {
		return "", fmt.Errorf("unexpected SOCKS version %d", greeting[0])
	}
	methods := make([]byte, greeting[1])
	if _, err := io.ReadFull(conn, methods); err != nil {
		return "", err
	}
	// No authentication
	if _, err := conn.Write([]byte{5, 0}); err != nil {
		return "", err
	}
	request := make([]byte, 4)
	if _, err := io.ReadFull(conn, request); err != nil {
		return "", err
	}
	if request[1] != 1 {
		return "", fmt.Errorf("unexpected SOCKS command %d", request[1])
	}
	var host string
	switch request[3] {
	case 1:
		addr := make([]byte, 4)
		if _, err := io.ReadFull(conn, addr); err != nil {
			return "", err
		}
		host = net.IP(addr).String()
	case 3:
		length := make([]byte, 1)
		if _, err := io.ReadFull(conn, length); err != nil {
			return "", err
		}
		name := make([]byte, length[0])
		if _, err := io.ReadFull(conn, name); err != nil {
			return "", err
		}
		host = string(name)
	default:
		return "", fmt.Errorf("unexpected SOCKS address type %d", request[3])
	}
	portBytes := make([]byte, 2)
	if _, err := io.ReadFull(conn, portBytes); err != nil {
		return "", err
	}
	port := binary.BigEndian.Uint16(portBytes)
	// Report success with a zero bound address
	if _, err := conn.Write([]byte{5, 0, 0, 1, 0, 0, 0, 0, 0, 0}); err != nil {
		return "", err
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", port)), nil
}

func TestDialThroughProxy(t *testing.T) {
	defer goleak.VerifyNone(t)
	proxy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error creating proxy listener: %s", err)
	}
	defer proxy.Close()
	targetChan := make(chan string, 1)
	sockChan := make(chan *transport.Socket, 1)
	go func() {
		conn, err := proxy.Accept()
		if err != nil {
			// We can't call t.Fatalf() from a different Goroutine, so we panic
			// instead
			panic(fmt.Sprintf("accept error: %s", err))
		}
		target, err := serveSocksConnect(conn)
		if err != nil {
			panic(fmt.Sprintf("SOCKS handshake error: %s", err))
		}
		targetChan <- target
		server := transport.NewSocket(conn)
		if err := server.Send([]byte("proxied")); err != nil {
			panic(fmt.Sprintf("send error: %s", err))
		}
		sockChan <- server
	}()
	// The endpoint is never dialed directly; the proxy sees it as the
	// requested target
	endpoint := transport.Endpoint{Host: "10.11.12.13", Port: 9091}
	client, err := transport.Dial(
		endpoint,
		transport.DialConfig{
			Timeout: 2 * time.Second,
			Proxy:   proxy.Addr().String(),
		},
	)
	if err != nil {
		t.Fatalf("unexpected error dialing through proxy: %s", err)
	}
	defer client.Stop()
	server := <-sockChan
	defer server.Stop()
	if target := <-targetChan; target != "10.11.12.13:9091" {
		t.Fatalf(
			"proxy did not see expected target: got %s, expected 10.11.12.13:9091",
			target,
		)
	}
	select {
	case msg := <-client.RecvChan():
		if len(msg) != 1 || !bytes.Equal(msg[0], []byte("proxied")) {
			t.Fatalf("did not get expected message: %v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
}

func TestDialRefused(t *testing.T) {
	defer goleak.VerifyNone(t)
	// Reserve a port and close it so nothing is listening there
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error creating listener: %s", err)
	}
	endpoint := listenerEndpoint(t, listener)
	listener.Close()
	if _, err := transport.Dial(
		endpoint,
		transport.DialConfig{Timeout: 2 * time.Second},
	); err == nil {
		t.Fatalf("expected error dialing closed port")
	}
}
