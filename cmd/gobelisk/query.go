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
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/blinklabs-io/gobelisk/bitcoin"
)

type queryFlags struct {
	flagset    *flag.FlagSet
	fromHeight uint
	pool       bool
}

func newQueryFlags() *queryFlags {
	f := &queryFlags{
		flagset: flag.NewFlagSet("query", flag.ExitOnError),
	}
	f.flagset.UintVar(
		&f.fromHeight,
		"from-height",
		0,
		"height to start history and stealth queries at",
	)
	f.flagset.BoolVar(
		&f.pool,
		"pool",
		false,
		"fetch transactions from the server's memory pool",
	)
	return f
}

func runQuery(f *globalFlags) {
	queryFlags := newQueryFlags()
	err := queryFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if len(queryFlags.flagset.Args()) < 1 {
		fmt.Printf("ERROR: you must specify a query\n")
		os.Exit(1)
	}

	client := createClient(f)

	switch queryFlags.flagset.Args()[0] {
	case "height":
		err = client.FetchLastHeight(
			func(err error, height uint64) {
				if err != nil {
					fmt.Printf("ERROR: failure fetching last height: %s\n", err)
					os.Exit(1)
				}
				fmt.Printf("height: %d\n", height)
			},
		)
	case "header":
		handler := func(err error, header *bitcoin.Header) {
			if err != nil {
				fmt.Printf("ERROR: failure fetching header: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf(
				"header: hash = %s, version = %d, previous = %s, merkle = %s, timestamp = %d, bits = %08x, nonce = %d\n",
				header.Hash(),
				header.Version,
				header.PrevBlock,
				header.MerkleRoot,
				header.Timestamp,
				header.Bits,
				header.Nonce,
			)
		}
		if hash, height, isHash := parseBlockId(queryFlags, 1); isHash {
			err = client.FetchBlockHeaderByHash(hash, handler)
		} else {
			err = client.FetchBlockHeaderByHeight(height, handler)
		}
	case "block":
		handler := func(err error, block *bitcoin.Block) {
			if err != nil {
				fmt.Printf("ERROR: failure fetching block: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf(
				"block: hash = %s, transactions = %d\n",
				block.Hash(),
				len(block.Transactions),
			)
			for _, tx := range block.Transactions {
				fmt.Printf("transaction: %s\n", tx.Hash())
			}
		}
		if hash, height, isHash := parseBlockId(queryFlags, 1); isHash {
			err = client.FetchBlockByHash(hash, handler)
		} else {
			err = client.FetchBlockByHeight(height, handler)
		}
	case "transaction":
		hash := parseHash(queryFlags, 1)
		handler := func(err error, tx *bitcoin.Transaction) {
			if err != nil {
				fmt.Printf("ERROR: failure fetching transaction: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf(
				"transaction: hash = %s, inputs = %d, outputs = %d, locktime = %d\n",
				tx.Hash(),
				len(tx.Inputs),
				len(tx.Outputs),
				tx.LockTime,
			)
		}
		if queryFlags.pool {
			err = client.FetchPoolTransaction(hash, handler)
		} else {
			err = client.FetchTransaction(hash, handler)
		}
	case "position":
		hash := parseHash(queryFlags, 1)
		err = client.FetchTransactionIndex(
			hash,
			func(err error, height uint64, index uint64) {
				if err != nil {
					fmt.Printf(
						"ERROR: failure fetching transaction position: %s\n",
						err,
					)
					os.Exit(1)
				}
				fmt.Printf("position: height = %d, index = %d\n", height, index)
			},
		)
	case "history":
		address := parseAddress(queryFlags, 1)
		err = client.FetchHistory(
			address,
			uint32(queryFlags.fromHeight),
			func(err error, history bitcoin.HistoryList) {
				if err != nil {
					fmt.Printf("ERROR: failure fetching history: %s\n", err)
					os.Exit(1)
				}
				for _, entry := range history {
					kind := "output"
					if entry.Kind == bitcoin.PointKindSpend {
						kind = "spend"
					}
					fmt.Printf(
						"%s: point = %s:%d, height = %d, value = %d\n",
						kind,
						entry.Point.Hash,
						entry.Point.Index,
						entry.Height,
						entry.Value,
					)
				}
				fmt.Printf("balance: %d\n", history.Balance())
			},
		)
	case "balance":
		address := parseAddress(queryFlags, 1)
		err = client.FetchHistory(
			address,
			0,
			func(err error, history bitcoin.HistoryList) {
				if err != nil {
					fmt.Printf("ERROR: failure fetching history: %s\n", err)
					os.Exit(1)
				}
				fmt.Printf("balance: %d\n", history.Balance())
			},
		)
	case "unspent":
		address := parseAddress(queryFlags, 1)
		if len(queryFlags.flagset.Args()) < 3 {
			fmt.Printf("ERROR: you must specify a target value\n")
			os.Exit(1)
		}
		target, perr := strconv.ParseUint(queryFlags.flagset.Args()[2], 10, 64)
		if perr != nil {
			fmt.Printf("ERROR: invalid target value: %s\n", perr)
			os.Exit(1)
		}
		err = client.FetchUnspentOutputs(
			address,
			target,
			bitcoin.SelectGreedy,
			func(err error, points bitcoin.PointsValue) {
				if err != nil {
					fmt.Printf(
						"ERROR: failure fetching unspent outputs: %s\n",
						err,
					)
					os.Exit(1)
				}
				if len(points.Points) == 0 {
					fmt.Printf("no unspent outputs cover the target value\n")
					os.Exit(1)
				}
				for _, point := range points.Points {
					fmt.Printf(
						"unspent: point = %s:%d, value = %d\n",
						point.Point.Hash,
						point.Point.Index,
						point.Value,
					)
				}
				fmt.Printf("total: %d\n", points.Value())
			},
		)
	case "stealth":
		if len(queryFlags.flagset.Args()) < 2 {
			fmt.Printf("ERROR: you must specify a bit prefix\n")
			os.Exit(1)
		}
		prefix, perr := bitcoin.NewBinaryFromString(
			queryFlags.flagset.Args()[1],
		)
		if perr != nil {
			fmt.Printf("ERROR: invalid bit prefix: %s\n", perr)
			os.Exit(1)
		}
		err = client.FetchStealth(
			prefix,
			uint32(queryFlags.fromHeight),
			func(err error, rows bitcoin.StealthList) {
				if err != nil {
					fmt.Printf("ERROR: failure fetching stealth rows: %s\n", err)
					os.Exit(1)
				}
				for _, row := range rows {
					fmt.Printf(
						"stealth: ephemeral = %s, address = %x, transaction = %s\n",
						row.EphemeralKeyHash,
						row.AddressHash,
						row.TransactionHash,
					)
				}
			},
		)
	default:
		fmt.Printf("ERROR: unknown query: %s\n", queryFlags.flagset.Args()[0])
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	client.Wait(time.Duration(f.timeout) * time.Second)
	client.Close()
}

// parseBlockId reads an argument that names a block either by height or by
// its 64-character display hash
func parseBlockId(
	queryFlags *queryFlags,
	arg int,
) (bitcoin.Hash, uint32, bool) {
	if len(queryFlags.flagset.Args()) <= arg {
		fmt.Printf("ERROR: you must specify a block height or hash\n")
		os.Exit(1)
	}
	value := queryFlags.flagset.Args()[arg]
	if len(value) == 64 {
		hash, err := bitcoin.NewHashFromString(value)
		if err != nil {
			fmt.Printf("ERROR: invalid block hash: %s\n", err)
			os.Exit(1)
		}
		return hash, 0, true
	}
	height, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		fmt.Printf("ERROR: invalid block height: %s\n", err)
		os.Exit(1)
	}
	return bitcoin.Hash{}, uint32(height), false
}

func parseHash(queryFlags *queryFlags, arg int) bitcoin.Hash {
	if len(queryFlags.flagset.Args()) <= arg {
		fmt.Printf("ERROR: you must specify a transaction hash\n")
		os.Exit(1)
	}
	hash, err := bitcoin.NewHashFromString(queryFlags.flagset.Args()[arg])
	if err != nil {
		fmt.Printf("ERROR: invalid transaction hash: %s\n", err)
		os.Exit(1)
	}
	return hash
}

func parseAddress(queryFlags *queryFlags, arg int) bitcoin.PaymentAddress {
	if len(queryFlags.flagset.Args()) <= arg {
		fmt.Printf("ERROR: you must specify a payment address\n")
		os.Exit(1)
	}
	address, err := bitcoin.NewPaymentAddress(queryFlags.flagset.Args()[arg])
	if err != nil {
		fmt.Printf("ERROR: invalid payment address: %s\n", err)
		os.Exit(1)
	}
	return address
}
