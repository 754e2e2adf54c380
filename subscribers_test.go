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

package obelisk_test

import (
	"errors"
	"testing"
	"time"

	obelisk "github.com/blinklabs-io/gobelisk"
	"github.com/blinklabs-io/gobelisk/bitcoin"
	"github.com/blinklabs-io/gobelisk/internal/test"
	"github.com/blinklabs-io/gobelisk/internal/test/obelisk_mock"
	"go.uber.org/goleak"
)

type updateEvent struct {
	err      error
	sequence uint16
	height   uint64
	txHash   bitcoin.Hash
}

func TestSubscribeAddress(t *testing.T) {
	defer goleak.VerifyNone(t)
	address, err := bitcoin.NewPaymentAddress(
		"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
	)
	if err != nil {
		t.Fatalf("unexpected error when decoding address: %s", err)
	}
	addressHash := address.Hash()
	txHash := test.DecodeHash(genesisBlockHash)
	updateBody := []byte{0x03, 0x00}
	updateBody = append(updateBody, heightBytes(700001)...)
	updateBody = append(updateBody, txHash[:]...)
	client, server := connectedClient(
		t,
		[]obelisk_mock.ConversationEntry{
			{
				Type:    obelisk_mock.EntryTypeInput,
				Command: "subscribe.address",
				Payload: addressHash[:],
			},
			{
				Type:    obelisk_mock.EntryTypeOutput,
				Command: "subscribe.address",
			},
			{
				Type:    obelisk_mock.EntryTypeOutput,
				Command: "subscribe.address",
				Body:    updateBody,
			},
		},
	)
	defer server.Close()
	defer client.Close()
	var events []updateEvent
	if err := client.SubscribeAddress(
		address,
		func(err error, sequence uint16, height uint64, txHash bitcoin.Hash) {
			events = append(events, updateEvent{
				err:      err,
				sequence: sequence,
				height:   height,
				txHash:   txHash,
			})
		},
	); err != nil {
		t.Fatalf("unexpected error when subscribing: %s", err)
	}
	client.Wait(400 * time.Millisecond)
	// The subscription acknowledgement, one update, and the sweep at the
	// deadline
	if len(events) != 3 {
		t.Fatalf("did not get expected handler calls: got %d", len(events))
	}
	ack := events[0]
	if ack.err != nil || ack.sequence != 0 || ack.height != 0 {
		t.Fatalf("unexpected subscription acknowledgement: %+v", ack)
	}
	update := events[1]
	if update.err != nil {
		t.Fatalf("unexpected update error: %s", update.err)
	}
	if update.sequence != 3 || update.height != 700001 {
		t.Fatalf(
			"did not get expected update: sequence %d height %d",
			update.sequence,
			update.height,
		)
	}
	if update.txHash != txHash {
		t.Fatalf("did not get expected update hash: got %s", update.txHash)
	}
	if !errors.Is(events[2].err, obelisk.ErrTimeout) {
		t.Fatalf("did not get expected sweep error: %v", events[2].err)
	}
	// The sweep removed the subscription, so another wait must not touch
	// the handler again
	client.Wait(100 * time.Millisecond)
	if len(events) != 3 {
		t.Fatalf("handler fired after sweep: got %d calls", len(events))
	}
}

func TestSubscribeStealth(t *testing.T) {
	defer goleak.VerifyNone(t)
	prefix, err := bitcoin.NewBinaryFromString("10101100")
	if err != nil {
		t.Fatalf("unexpected error when building prefix: %s", err)
	}
	client, server := connectedClient(
		t,
		[]obelisk_mock.ConversationEntry{
			{
				Type:    obelisk_mock.EntryTypeInput,
				Command: "subscribe.stealth",
				Payload: []byte{0x08, 0xac},
			},
			{
				Type:    obelisk_mock.EntryTypeOutput,
				Command: "subscribe.stealth",
			},
		},
	)
	defer server.Close()
	defer client.Close()
	var events []updateEvent
	if err := client.SubscribeStealth(
		prefix,
		func(err error, sequence uint16, height uint64, txHash bitcoin.Hash) {
			events = append(events, updateEvent{
				err:      err,
				sequence: sequence,
				height:   height,
				txHash:   txHash,
			})
		},
	); err != nil {
		t.Fatalf("unexpected error when subscribing: %s", err)
	}
	client.Wait(300 * time.Millisecond)
	if len(events) != 2 {
		t.Fatalf("did not get expected handler calls: got %d", len(events))
	}
	if events[0].err != nil {
		t.Fatalf(
			"unexpected subscription acknowledgement error: %s",
			events[0].err,
		)
	}
	if !errors.Is(events[1].err, obelisk.ErrTimeout) {
		t.Fatalf("did not get expected sweep error: %v", events[1].err)
	}
}

func TestBlockFeed(t *testing.T) {
	defer goleak.VerifyNone(t)
	block := testBlock()
	blockBytes := block.Serialize()
	feedServer, err := obelisk_mock.NewServer(
		[]obelisk_mock.ConversationEntry{
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{{0xde, 0xad}},
			},
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{blockBytes},
			},
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{blockBytes},
			},
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{blockBytes},
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error when creating mock feed server: %s", err)
	}
	defer feedServer.Close()
	server, err := obelisk_mock.NewServer(nil)
	if err != nil {
		t.Fatalf("unexpected error when creating mock server: %s", err)
	}
	defer server.Close()
	client, err := obelisk.New()
	if err != nil {
		t.Fatalf("unexpected error when creating client object: %s", err)
	}
	settings := obelisk.Settings{
		Server:      server.Endpoint(),
		BlockServer: feedServer.Endpoint(),
	}
	if err := client.Connect(settings); err != nil {
		t.Fatalf("unexpected error when connecting: %s", err)
	}
	defer client.Close()
	var blocks []*bitcoin.Block
	if err := client.SubscribeBlock(
		func(block *bitcoin.Block) {
			blocks = append(blocks, block)
		},
	); err != nil {
		t.Fatalf("unexpected error when subscribing: %s", err)
	}
	client.Monitor(400 * time.Millisecond)
	// The undecodable announcement is dropped, the rest arrive in order
	if len(blocks) != 3 {
		t.Fatalf("did not get expected block count: got %d", len(blocks))
	}
	for _, b := range blocks {
		if b.Hash() != block.Hash() {
			t.Fatalf("did not get expected block hash: got %s", b.Hash())
		}
	}
}

func TestBlockFeedHandlerReplacement(t *testing.T) {
	defer goleak.VerifyNone(t)
	block := testBlock()
	blockBytes := block.Serialize()
	feedServer, err := obelisk_mock.NewServer(
		[]obelisk_mock.ConversationEntry{
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{blockBytes},
			},
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{blockBytes},
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error when creating mock feed server: %s", err)
	}
	defer feedServer.Close()
	server, err := obelisk_mock.NewServer(nil)
	if err != nil {
		t.Fatalf("unexpected error when creating mock server: %s", err)
	}
	defer server.Close()
	client, err := obelisk.New()
	if err != nil {
		t.Fatalf("unexpected error when creating client object: %s", err)
	}
	settings := obelisk.Settings{
		Server:      server.Endpoint(),
		BlockServer: feedServer.Endpoint(),
	}
	if err := client.Connect(settings); err != nil {
		t.Fatalf("unexpected error when connecting: %s", err)
	}
	defer client.Close()
	var firstCalls, secondCalls int
	if err := client.SubscribeBlock(
		func(block *bitcoin.Block) {
			firstCalls++
		},
	); err != nil {
		t.Fatalf("unexpected error when subscribing: %s", err)
	}
	// Replacing the handler reuses the existing feed connection
	if err := client.SubscribeBlock(
		func(block *bitcoin.Block) {
			secondCalls++
		},
	); err != nil {
		t.Fatalf("unexpected error when replacing handler: %s", err)
	}
	client.Monitor(400 * time.Millisecond)
	if firstCalls != 0 {
		t.Fatalf("replaced handler fired: got %d calls", firstCalls)
	}
	if secondCalls != 2 {
		t.Fatalf(
			"did not get expected handler calls: got %d",
			secondCalls,
		)
	}
}

func TestTransactionFeed(t *testing.T) {
	defer goleak.VerifyNone(t)
	tx := testTransaction()
	feedServer, err := obelisk_mock.NewServer(
		[]obelisk_mock.ConversationEntry{
			{
				Type:      obelisk_mock.EntryTypeOutput,
				RawFrames: [][]byte{tx.Serialize()},
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error when creating mock feed server: %s", err)
	}
	defer feedServer.Close()
	server, err := obelisk_mock.NewServer(nil)
	if err != nil {
		t.Fatalf("unexpected error when creating mock server: %s", err)
	}
	defer server.Close()
	client, err := obelisk.New()
	if err != nil {
		t.Fatalf("unexpected error when creating client object: %s", err)
	}
	settings := obelisk.Settings{
		Server:            server.Endpoint(),
		TransactionServer: feedServer.Endpoint(),
	}
	if err := client.Connect(settings); err != nil {
		t.Fatalf("unexpected error when connecting: %s", err)
	}
	defer client.Close()
	var transactions []*bitcoin.Transaction
	if err := client.SubscribeTransaction(
		func(tx *bitcoin.Transaction) {
			transactions = append(transactions, tx)
		},
	); err != nil {
		t.Fatalf("unexpected error when subscribing: %s", err)
	}
	client.Monitor(300 * time.Millisecond)
	if len(transactions) != 1 {
		t.Fatalf(
			"did not get expected transaction count: got %d",
			len(transactions),
		)
	}
	if transactions[0].Hash() != tx.Hash() {
		t.Fatalf(
			"did not get expected transaction hash: got %s",
			transactions[0].Hash(),
		)
	}
}

func TestFeedEndpointMissing(t *testing.T) {
	defer goleak.VerifyNone(t)
	client, err := obelisk.New()
	if err != nil {
		t.Fatalf("unexpected error when creating client object: %s", err)
	}
	// Feed subscriptions require a connected client
	err = client.SubscribeBlock(func(block *bitcoin.Block) {})
	if !errors.Is(err, obelisk.ErrNotConnected) {
		t.Fatalf("did not get expected error before connect: %v", err)
	}
	server, err := obelisk_mock.NewServer(nil)
	if err != nil {
		t.Fatalf("unexpected error when creating mock server: %s", err)
	}
	defer server.Close()
	if err := client.Connect(
		obelisk.Settings{Server: server.Endpoint()},
	); err != nil {
		t.Fatalf("unexpected error when connecting: %s", err)
	}
	defer client.Close()
	// No block server endpoint was configured
	err = client.SubscribeBlock(func(block *bitcoin.Block) {})
	if !errors.Is(err, obelisk.ErrNoEndpoint) {
		t.Fatalf("did not get expected error: %v", err)
	}
	err = client.SubscribeTransaction(func(tx *bitcoin.Transaction) {})
	if !errors.Is(err, obelisk.ErrNoEndpoint) {
		t.Fatalf("did not get expected error: %v", err)
	}
}
