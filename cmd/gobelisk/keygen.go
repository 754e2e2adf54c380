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
	"fmt"
	"os"

	"github.com/blinklabs-io/gobelisk/transport"
)

// runKeygen generates a keypair for encrypted sessions. The private key
// stays with the client; the public key is handed to the server operator
// for authenticated setups
func runKeygen(f *globalFlags) {
	publicKey, privateKey, err := transport.GenerateKeypair()
	if err != nil {
		fmt.Printf("ERROR: failure generating keypair: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("public-key: %s\n", hex.EncodeToString(publicKey[:]))
	fmt.Printf("private-key: %s\n", hex.EncodeToString(privateKey[:]))
}
