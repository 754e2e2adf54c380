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
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blinklabs-io/gobelisk/bitcoin"
)

type broadcastFlags struct {
	flagset  *flag.FlagSet
	validate bool
}

func newBroadcastFlags() *broadcastFlags {
	f := &broadcastFlags{
		flagset: flag.NewFlagSet("broadcast", flag.ExitOnError),
	}
	f.flagset.BoolVar(
		&f.validate,
		"validate",
		false,
		"validate the transaction against the server's memory pool without broadcasting it",
	)
	return f
}

func runBroadcast(f *globalFlags) {
	broadcastFlags := newBroadcastFlags()
	err := broadcastFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if len(broadcastFlags.flagset.Args()) < 1 {
		fmt.Printf("ERROR: you must specify a hex-encoded transaction\n")
		os.Exit(1)
	}
	txBytes, err := hex.DecodeString(broadcastFlags.flagset.Args()[0])
	if err != nil {
		fmt.Printf("ERROR: invalid transaction hex: %s\n", err)
		os.Exit(1)
	}
	tx, err := bitcoin.NewTransactionFromBytes(txBytes)
	if err != nil {
		fmt.Printf("ERROR: invalid transaction: %s\n", err)
		os.Exit(1)
	}

	client := createClient(f)

	handler := func(err error) {
		if err != nil {
			fmt.Printf("ERROR: server rejected transaction: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("accepted: %s\n", tx.Hash())
	}
	if broadcastFlags.validate {
		err = client.ValidateTransaction(tx, handler)
	} else {
		err = client.BroadcastTransaction(tx, handler)
	}
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	client.Wait(time.Duration(f.timeout) * time.Second)
	client.Close()
}
