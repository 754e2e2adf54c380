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
	"fmt"

	"github.com/blinklabs-io/gobelisk/bitcoin"
)

// SubscribeAddress watches a payment address on the query channel. The
// handler first receives the server's acknowledgement, then one call per
// confirmation paying to or spending from the address, delivered from Wait.
// The subscription lives until a sweep claims it, so it lasts exactly as
// long as the Wait calls servicing it; re-subscribe to renew
func (c *Client) SubscribeAddress(
	address bitcoin.PaymentAddress,
	handler UpdateFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteShortHash(address.Hash())
	return c.sendRequest(cmdSubscribeAddress, w.Bytes(), handler)
}

// SubscribeStealth watches a stealth bit prefix on the query channel. The
// handler behaves exactly as in SubscribeAddress
func (c *Client) SubscribeStealth(
	prefix bitcoin.Binary,
	handler UpdateFunc,
) error {
	if handler == nil {
		return errNilHandler
	}
	w := bitcoin.NewWriter()
	w.WriteBinary(prefix)
	return c.sendRequest(cmdSubscribeStealth, w.Bytes(), handler)
}

// SubscribeBlock registers a handler for block announcements, dialing the
// block feed endpoint on first use. Calling it again replaces the handler;
// announcements are delivered from Monitor. Connect must have succeeded
// first so the feed shares the query channel's settings
func (c *Client) SubscribeBlock(handler BlockNotifyFunc) error {
	if handler == nil {
		return errNilHandler
	}
	c.mutex.Lock()
	if c.closing {
		c.mutex.Unlock()
		return ErrShuttingDown
	}
	if c.query == nil {
		c.mutex.Unlock()
		return ErrNotConnected
	}
	if c.blockFeed != nil {
		c.onBlock = handler
		c.mutex.Unlock()
		return nil
	}
	endpoint := c.settings.BlockServer
	cfg := c.dialCfg
	retries := c.settings.Retries
	c.mutex.Unlock()
	if endpoint.IsZero() {
		return fmt.Errorf("%w: block server", ErrNoEndpoint)
	}
	sock, err := c.dialChannel(endpoint, cfg, retries)
	if err != nil {
		return err
	}
	c.mutex.Lock()
	if c.closing || c.blockFeed != nil {
		// Lost a race to another subscriber, so drop the extra socket
		closing := c.closing
		if !closing {
			c.onBlock = handler
		}
		c.mutex.Unlock()
		sock.Stop()
		if closing {
			return ErrShuttingDown
		}
		return nil
	}
	c.blockFeed = sock
	c.onBlock = handler
	c.mutex.Unlock()
	c.startSocket("block feed", sock)
	c.logger.Debug(
		"subscribed to block feed",
		"endpoint", endpoint.String(),
	)
	return nil
}

// SubscribeTransaction registers a handler for transaction announcements,
// dialing the transaction feed endpoint on first use. It behaves exactly as
// SubscribeBlock otherwise
func (c *Client) SubscribeTransaction(handler TransactionNotifyFunc) error {
	if handler == nil {
		return errNilHandler
	}
	c.mutex.Lock()
	if c.closing {
		c.mutex.Unlock()
		return ErrShuttingDown
	}
	if c.query == nil {
		c.mutex.Unlock()
		return ErrNotConnected
	}
	if c.transactionFeed != nil {
		c.onTransaction = handler
		c.mutex.Unlock()
		return nil
	}
	endpoint := c.settings.TransactionServer
	cfg := c.dialCfg
	retries := c.settings.Retries
	c.mutex.Unlock()
	if endpoint.IsZero() {
		return fmt.Errorf("%w: transaction server", ErrNoEndpoint)
	}
	sock, err := c.dialChannel(endpoint, cfg, retries)
	if err != nil {
		return err
	}
	c.mutex.Lock()
	if c.closing || c.transactionFeed != nil {
		closing := c.closing
		if !closing {
			c.onTransaction = handler
		}
		c.mutex.Unlock()
		sock.Stop()
		if closing {
			return ErrShuttingDown
		}
		return nil
	}
	c.transactionFeed = sock
	c.onTransaction = handler
	c.mutex.Unlock()
	c.startSocket("transaction feed", sock)
	c.logger.Debug(
		"subscribed to transaction feed",
		"endpoint", endpoint.String(),
	)
	return nil
}

// dispatchBlock decodes one block announcement and hands it to the
// subscribed handler. Malformed announcements are dropped
func (c *Client) dispatchBlock(msg [][]byte) {
	c.mutex.Lock()
	handler := c.onBlock
	c.mutex.Unlock()
	if handler == nil {
		return
	}
	if len(msg) != 1 {
		c.logger.Debug(
			"dropped block announcement with wrong shape",
			"frames", len(msg),
		)
		return
	}
	block, err := bitcoin.NewBlockFromBytes(msg[0])
	if err != nil {
		c.logger.Debug(
			"dropped malformed block announcement",
			"error", err,
		)
		return
	}
	handler(block)
}

// dispatchTransaction decodes one transaction announcement and hands it to
// the subscribed handler. Malformed announcements are dropped
func (c *Client) dispatchTransaction(msg [][]byte) {
	c.mutex.Lock()
	handler := c.onTransaction
	c.mutex.Unlock()
	if handler == nil {
		return
	}
	if len(msg) != 1 {
		c.logger.Debug(
			"dropped transaction announcement with wrong shape",
			"frames", len(msg),
		)
		return
	}
	tx, err := bitcoin.NewTransactionFromBytes(msg[0])
	if err != nil {
		c.logger.Debug(
			"dropped malformed transaction announcement",
			"error", err,
		)
		return
	}
	handler(tx)
}
