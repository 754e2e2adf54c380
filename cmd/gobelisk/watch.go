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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	obelisk "github.com/blinklabs-io/gobelisk"
	"github.com/blinklabs-io/gobelisk/bitcoin"
)

type watchFlags struct {
	flagset *flag.FlagSet
	address string
	prefix  string
	blocks  bool
	txs     bool
	window  int
}

func newWatchFlags() *watchFlags {
	f := &watchFlags{
		flagset: flag.NewFlagSet("watch", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.address,
		"address",
		"",
		"payment address to watch for confirmations",
	)
	f.flagset.StringVar(
		&f.prefix,
		"prefix",
		"",
		"stealth bit prefix to watch, as a string of 0s and 1s",
	)
	f.flagset.BoolVar(
		&f.blocks,
		"blocks",
		false,
		"watch the block feed",
	)
	f.flagset.BoolVar(
		&f.txs,
		"txs",
		false,
		"watch the transaction feed",
	)
	f.flagset.IntVar(
		&f.window,
		"window",
		60,
		"monitoring window in seconds. address and prefix subscriptions are renewed each window",
	)
	return f
}

func runWatch(f *globalFlags) {
	watchFlags := newWatchFlags()
	err := watchFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if watchFlags.address == "" && watchFlags.prefix == "" &&
		!watchFlags.blocks && !watchFlags.txs {
		fmt.Printf("ERROR: you must specify something to watch\n")
		os.Exit(1)
	}
	var address bitcoin.PaymentAddress
	if watchFlags.address != "" {
		address, err = bitcoin.NewPaymentAddress(watchFlags.address)
		if err != nil {
			fmt.Printf("ERROR: invalid payment address: %s\n", err)
			os.Exit(1)
		}
	}
	var prefix bitcoin.Binary
	if watchFlags.prefix != "" {
		prefix, err = bitcoin.NewBinaryFromString(watchFlags.prefix)
		if err != nil {
			fmt.Printf("ERROR: invalid bit prefix: %s\n", err)
			os.Exit(1)
		}
	}

	client := createClient(f)

	if watchFlags.blocks {
		err = client.SubscribeBlock(
			func(block *bitcoin.Block) {
				fmt.Printf(
					"block: hash = %s, transactions = %d\n",
					block.Hash(),
					len(block.Transactions),
				)
			},
		)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
	}
	if watchFlags.txs {
		err = client.SubscribeTransaction(
			func(tx *bitcoin.Transaction) {
				fmt.Printf("transaction: hash = %s\n", tx.Hash())
			},
		)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
	}

	onUpdate := func(err error, sequence uint16, height uint64, txHash bitcoin.Hash) {
		if err != nil {
			// The subscription is renewed at the start of the next window
			if errors.Is(err, obelisk.ErrTimeout) {
				return
			}
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		// An empty hash is the subscription acknowledgement
		if txHash == (bitcoin.Hash{}) {
			return
		}
		fmt.Printf(
			"update: sequence = %d, height = %d, transaction = %s\n",
			sequence,
			height,
			txHash,
		)
	}
	// Wait services address and prefix subscriptions on the query channel;
	// Monitor services the feeds. With both kinds active the windows
	// alternate
	watchQuery := watchFlags.address != "" || watchFlags.prefix != ""
	watchFeeds := watchFlags.blocks || watchFlags.txs
	window := time.Duration(watchFlags.window) * time.Second
	for {
		if watchQuery {
			if watchFlags.address != "" {
				if err := client.SubscribeAddress(address, onUpdate); err != nil {
					fmt.Printf("ERROR: %s\n", err)
					os.Exit(1)
				}
			}
			if watchFlags.prefix != "" {
				if err := client.SubscribeStealth(prefix, onUpdate); err != nil {
					fmt.Printf("ERROR: %s\n", err)
					os.Exit(1)
				}
			}
			client.Wait(window)
		}
		if watchFeeds {
			client.Monitor(window)
		}
	}
}
