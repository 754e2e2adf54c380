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

	obelisk "github.com/blinklabs-io/gobelisk"
	"github.com/blinklabs-io/gobelisk/transport"
)

type globalFlags struct {
	flagset    *flag.FlagSet
	configFile string
	server     string
	network    string
	serverKey  string
	clientKey  string
	socksProxy string
	retries    int
	timeout    int
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.configFile,
		"config",
		"",
		"path to a JSON settings file. flags override values from the file",
	)
	f.flagset.StringVar(
		&f.server,
		"server",
		"",
		"query server to connect to as host:port or a tcp:// URI. this overrides the -network option",
	)
	f.flagset.StringVar(
		&f.network,
		"network",
		"mainnet",
		"specifies network of the server to connect to",
	)
	f.flagset.StringVar(
		&f.serverKey,
		"server-key",
		"",
		"hex-encoded server public key. enables an encrypted session",
	)
	f.flagset.StringVar(
		&f.clientKey,
		"client-key",
		"",
		"hex-encoded client private key for authenticated sessions",
	)
	f.flagset.StringVar(
		&f.socksProxy,
		"socks-proxy",
		"",
		"SOCKS5 proxy to connect through in host:port format",
	)
	f.flagset.IntVar(
		&f.retries,
		"retries",
		0,
		"number of connection retries per channel",
	)
	f.flagset.IntVar(
		&f.timeout,
		"timeout",
		30,
		"request timeout in seconds",
	)
	return f
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}

	if len(f.flagset.Args()) > 0 {
		switch f.flagset.Arg(0) {
		case "query":
			runQuery(f)
		case "watch":
			runWatch(f)
		case "broadcast":
			runBroadcast(f)
		case "keygen":
			runKeygen(f)
		default:
			fmt.Printf("Unknown subcommand: %s\n", f.flagset.Arg(0))
			os.Exit(1)
		}
	} else {
		fmt.Printf("You must specify a subcommand (query, watch, broadcast, or keygen)\n")
		os.Exit(1)
	}
}

func buildSettings(f *globalFlags) obelisk.Settings {
	var settings obelisk.Settings
	if f.configFile != "" {
		var err error
		settings, err = obelisk.NewSettingsFromFile(f.configFile)
		if err != nil {
			fmt.Printf("Failed to load settings file: %s\n", err)
			os.Exit(1)
		}
	} else {
		network := obelisk.NetworkByName(f.network)
		if network == obelisk.NetworkInvalid {
			fmt.Printf("Invalid network specified: %s\n", f.network)
			os.Exit(1)
		}
		settings = network.Settings()
	}
	if f.server != "" {
		endpoint, err := transport.ParseEndpoint(f.server)
		if err != nil {
			fmt.Printf("Invalid server address: %s\n", err)
			os.Exit(1)
		}
		settings.Server = endpoint
	}
	if f.serverKey != "" {
		key, err := transport.ParseKey(f.serverKey)
		if err != nil {
			fmt.Printf("Invalid server key: %s\n", err)
			os.Exit(1)
		}
		settings.ServerPublicKey = key[:]
	}
	if f.clientKey != "" {
		key, err := transport.ParseKey(f.clientKey)
		if err != nil {
			fmt.Printf("Invalid client key: %s\n", err)
			os.Exit(1)
		}
		settings.ClientPrivateKey = key[:]
	}
	if f.socksProxy != "" {
		settings.SocksProxy = f.socksProxy
	}
	if f.retries > 0 {
		settings.Retries = uint32(f.retries)
	}
	return settings
}

func createClient(f *globalFlags) *obelisk.Client {
	errorChan := make(chan error)
	go func() {
		for err := range errorChan {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
	}()
	client, err := obelisk.New(
		obelisk.WithErrorChan(errorChan),
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if err := client.Connect(buildSettings(f)); err != nil {
		fmt.Printf("Connection failed: %s\n", err)
		os.Exit(1)
	}
	return client
}
