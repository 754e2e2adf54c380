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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blinklabs-io/gobelisk/transport"
)

// settingsFile mirrors the JSON layout of a settings file. Endpoints are
// "tcp://host:port" URIs, keys are hex encoded and the dial timeout uses
// the time.ParseDuration syntax
type settingsFile struct {
	Server            string `json:"server"`
	BlockServer       string `json:"blockServer"`
	TransactionServer string `json:"transactionServer"`
	SocksProxy        string `json:"socksProxy"`
	ServerPublicKey   string `json:"serverPublicKey"`
	ClientPrivateKey  string `json:"clientPrivateKey"`
	Retries           uint32 `json:"retries"`
	DialTimeout       string `json:"dialTimeout"`
}

// NewSettingsFromFile loads client settings from a JSON file
func NewSettingsFromFile(path string) (Settings, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return Settings{}, err
	}
	defer dataFile.Close()
	return NewSettingsFromReader(dataFile)
}

// NewSettingsFromReader loads client settings from JSON data
func NewSettingsFromReader(r io.Reader) (Settings, error) {
	f := &settingsFile{}
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, err
	}
	if err := json.Unmarshal(data, f); err != nil {
		return Settings{}, err
	}
	return f.settings()
}

func (f *settingsFile) settings() (Settings, error) {
	s := Settings{
		Retries:    f.Retries,
		SocksProxy: f.SocksProxy,
	}
	endpoints := []struct {
		name string
		uri  string
		dest *transport.Endpoint
	}{
		{"server", f.Server, &s.Server},
		{"blockServer", f.BlockServer, &s.BlockServer},
		{"transactionServer", f.TransactionServer, &s.TransactionServer},
	}
	for _, e := range endpoints {
		if e.uri == "" {
			continue
		}
		endpoint, err := transport.ParseEndpoint(e.uri)
		if err != nil {
			return s, fmt.Errorf("invalid %s: %w", e.name, err)
		}
		*e.dest = endpoint
	}
	if f.ServerPublicKey != "" {
		key, err := hex.DecodeString(f.ServerPublicKey)
		if err != nil {
			return s, fmt.Errorf("invalid serverPublicKey: %w", err)
		}
		s.ServerPublicKey = key
	}
	if f.ClientPrivateKey != "" {
		key, err := hex.DecodeString(f.ClientPrivateKey)
		if err != nil {
			return s, fmt.Errorf("invalid clientPrivateKey: %w", err)
		}
		s.ClientPrivateKey = key
	}
	if f.DialTimeout != "" {
		timeout, err := time.ParseDuration(f.DialTimeout)
		if err != nil {
			return s, fmt.Errorf("invalid dialTimeout: %w", err)
		}
		s.DialTimeout = timeout
	}
	return s, nil
}
