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

// Package obelisk implements support for querying Libbitcoin servers using
// the Obelisk network protocol.
//
// The protocol runs over a small number of framed-message channels: a query
// channel carrying correlated request and reply traffic, and optional block
// and transaction feed channels carrying announcements. Channels may be
// plaintext or encrypted with Curve25519 keys.
//
// Requests are asynchronous. Each request method registers a typed handler
// and returns immediately; handlers are invoked from Wait, Monitor, or
// Close, never from a background goroutine. Every handler is invoked exactly
// once, with the decoded result, the server's error status, ErrTimeout, or
// ErrShuttingDown.
//
// This package is the main entry point into this library. The other packages
// can be used outside of this one, but it's not a primary design goal.
package obelisk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/gobelisk/transport"
)

// The Client type manages the channels to a single server and correlates
// request and reply traffic across them
type Client struct {
	settings     Settings
	dialCfg      transport.DialConfig
	dialTimeout  time.Duration
	logger       *slog.Logger
	errorChan    chan error
	doneChan     chan interface{}
	waitGroup    sync.WaitGroup
	onceShutdown sync.Once
	onceClose    sync.Once
	// mutex guards the fields below
	mutex           sync.Mutex
	closing         bool
	query           *transport.Socket
	blockFeed       *transport.Socket
	transactionFeed *transport.Socket
	pending         map[uint32]pendingRequest
	lastId          uint32
	onBlock         BlockNotifyFunc
	onTransaction   TransactionNotifyFunc
}

// New returns a new Client object with the specified options. Use Connect
// to establish the query channel
func New(options ...ClientOptionFunc) (*Client, error) {
	c := &Client{
		doneChan: make(chan interface{}),
		pending:  make(map[uint32]pendingRequest),
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if c.errorChan == nil {
		c.errorChan = make(chan error, 10)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// ErrorChan returns the channel for asynchronous errors
func (c *Client) ErrorChan() chan error {
	return c.errorChan
}

// Logger returns the client's logger
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Connect establishes the query channel described by the settings. An error
// is returned if the settings are invalid, a connection was already
// established, or every dial attempt fails
func (c *Client) Connect(settings Settings) error {
	c.mutex.Lock()
	connected := c.query != nil
	c.mutex.Unlock()
	if connected {
		return ErrAlreadyConnected
	}
	snap, err := settings.snapshot()
	if err != nil {
		return err
	}
	if snap.DialTimeout == 0 {
		snap.DialTimeout = c.dialTimeout
	}
	dialCfg, err := snap.dialConfig()
	if err != nil {
		return err
	}
	if snap.Server.IsZero() {
		return fmt.Errorf("%w: query server", ErrNoEndpoint)
	}
	sock, err := c.dialChannel(snap.Server, dialCfg, snap.Retries)
	if err != nil {
		return err
	}
	c.mutex.Lock()
	if c.closing || c.query != nil {
		closing := c.closing
		c.mutex.Unlock()
		sock.Stop()
		if closing {
			return ErrShuttingDown
		}
		return ErrAlreadyConnected
	}
	c.settings = snap
	c.dialCfg = dialCfg
	c.query = sock
	c.mutex.Unlock()
	c.startSocket("query channel", sock)
	c.logger.Debug(
		"connected",
		"endpoint", snap.Server.String(),
		"encrypted", dialCfg.ServerPublicKey != nil,
	)
	return nil
}

// ConnectEndpoint connects to a query server with default settings
func (c *Client) ConnectEndpoint(endpoint transport.Endpoint) error {
	return c.Connect(Settings{Server: endpoint})
}

// dialChannel dials an endpoint, retrying failed attempts up to the
// configured retry count
func (c *Client) dialChannel(
	endpoint transport.Endpoint,
	cfg transport.DialConfig,
	retries uint32,
) (*transport.Socket, error) {
	var err error
	for attempt := uint32(0); attempt <= retries; attempt++ {
		var sock *transport.Socket
		sock, err = transport.Dial(endpoint, cfg)
		if err == nil {
			return sock, nil
		}
		c.logger.Debug(
			"dial attempt failed",
			"endpoint", endpoint.String(),
			"attempt", attempt+1,
			"error", err,
		)
	}
	return nil, err
}

// startSocket starts a goroutine to pass along errors from the socket
func (c *Client) startSocket(name string, sock *transport.Socket) {
	c.waitGroup.Add(1)
	go func() {
		defer c.waitGroup.Done()
		select {
		case <-c.doneChan:
			return
		case err, ok := <-sock.ErrorChan:
			// Break out of goroutine if the socket's error channel is closed
			if !ok {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Return a bare io.EOF error if error is EOF/ErrUnexpectedEOF
				c.errorChan <- io.EOF
			} else {
				// Wrap error message to denote which channel it comes from
				c.errorChan <- fmt.Errorf("%s error: %s", name, err)
			}
			// Shut down on channel errors. Outstanding requests stay pending
			// and are delivered by the caller's next Wait, Monitor, or Close
			c.shutdown()
		}
	}()
}

// shutdown stops every channel and marks the client closing. It never
// blocks, so it is safe to call from the socket error goroutines
func (c *Client) shutdown() {
	c.onceShutdown.Do(func() {
		c.mutex.Lock()
		c.closing = true
		query := c.query
		blockFeed := c.blockFeed
		transactionFeed := c.transactionFeed
		c.mutex.Unlock()
		// Close doneChan to signify that we're shutting down
		close(c.doneChan)
		if query != nil {
			query.Stop()
		}
		if blockFeed != nil {
			blockFeed.Stop()
		}
		if transactionFeed != nil {
			transactionFeed.Stop()
		}
	})
}

// Close shuts the client down. Every request still outstanding is delivered
// to its handler with ErrShuttingDown before Close returns
func (c *Client) Close() error {
	c.shutdown()
	c.clearOutstanding(ErrShuttingDown)
	// Wait for other goroutines to finish
	c.waitGroup.Wait()
	c.onceClose.Do(func() {
		close(c.errorChan)
	})
	return nil
}

// Wait services the query channel until every outstanding request has
// resolved or the timeout passes, whichever comes first. Handlers are
// invoked on the calling goroutine. On timeout, every request still
// outstanding is delivered to its handler with ErrTimeout
func (c *Client) Wait(timeout time.Duration) {
	if !c.requestsOutstanding() {
		return
	}
	var query <-chan [][]byte
	c.mutex.Lock()
	if c.query != nil {
		query = c.query.RecvChan()
	}
	c.mutex.Unlock()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-c.doneChan:
			return
		case <-timer.C:
			c.clearOutstanding(ErrTimeout)
			return
		case msg, ok := <-query:
			if !ok {
				// The channel has failed. Keep waiting so the remaining
				// requests are swept at the deadline
				query = nil
				continue
			}
			c.dispatch(msg)
			if !c.requestsOutstanding() {
				return
			}
		}
	}
}

// Monitor services the block and transaction feed channels for the full
// timeout window, invoking feed handlers on the calling goroutine. It never
// reads the query channel; replies and subscription updates there are
// serviced by Wait. On return, every request still outstanding is delivered
// to its handler with ErrTimeout
func (c *Client) Monitor(timeout time.Duration) {
	var blocks, transactions <-chan [][]byte
	c.mutex.Lock()
	if c.blockFeed != nil {
		blocks = c.blockFeed.RecvChan()
	}
	if c.transactionFeed != nil {
		transactions = c.transactionFeed.RecvChan()
	}
	c.mutex.Unlock()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-c.doneChan:
			return
		case <-timer.C:
			c.clearOutstanding(ErrTimeout)
			return
		case msg, ok := <-blocks:
			if !ok {
				blocks = nil
				continue
			}
			c.dispatchBlock(msg)
		case msg, ok := <-transactions:
			if !ok {
				transactions = nil
				continue
			}
			c.dispatchTransaction(msg)
		}
	}
}
