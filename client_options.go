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
	"log/slog"
	"time"
)

// ClientOptionFunc is a type that represents functions that modify the Client config
type ClientOptionFunc func(*Client)

// WithLogger specifies the logger to use. If none is provided, slog.Default()
// will be used
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithErrorChan specifies the error channel to use. If none is provided, one
// will be created
func WithErrorChan(errorChan chan error) ClientOptionFunc {
	return func(c *Client) {
		c.errorChan = errorChan
	}
}

// WithDialTimeout specifies the default timeout for dialing each channel.
// A non-zero Settings.DialTimeout takes precedence
func WithDialTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.dialTimeout = timeout
	}
}
