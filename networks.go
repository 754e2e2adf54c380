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
	"github.com/blinklabs-io/gobelisk/bitcoin"
	"github.com/blinklabs-io/gobelisk/transport"
)

// Network definitions
var (
	NetworkMainnet = Network{
		Name:              "mainnet",
		AddressVersion:    bitcoin.AddressVersionMainnet,
		Server:            transport.Endpoint{Host: "mainnet.libbitcoin.net", Port: 9091},
		BlockServer:       transport.Endpoint{Host: "mainnet.libbitcoin.net", Port: 9093},
		TransactionServer: transport.Endpoint{Host: "mainnet.libbitcoin.net", Port: 9094},
	}
	NetworkTestnet = Network{
		Name:              "testnet",
		AddressVersion:    bitcoin.AddressVersionTestnet,
		Server:            transport.Endpoint{Host: "testnet.libbitcoin.net", Port: 19091},
		BlockServer:       transport.Endpoint{Host: "testnet.libbitcoin.net", Port: 19093},
		TransactionServer: transport.Endpoint{Host: "testnet.libbitcoin.net", Port: 19094},
	}

	NetworkInvalid = Network{
		Name: "invalid",
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkTestnet,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a public server deployment
type Network struct {
	Name              string
	AddressVersion    byte // version byte for pay-to-key-hash addresses
	Server            transport.Endpoint
	BlockServer       transport.Endpoint
	TransactionServer transport.Endpoint
}

func (n Network) String() string {
	return n.Name
}

// Settings returns connection settings primed with the network's endpoints
func (n Network) Settings() Settings {
	return Settings{
		Server:            n.Server,
		BlockServer:       n.BlockServer,
		TransactionServer: n.TransactionServer,
	}
}
