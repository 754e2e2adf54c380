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

package obelisk_mock

import (
	"time"
)

type EntryType int

const (
	EntryTypeNone   EntryType = 0
	EntryTypeInput  EntryType = 1
	EntryTypeOutput EntryType = 2
	EntryTypeClose  EntryType = 3
	EntryTypeDelay  EntryType = 4
)

type ConversationEntry struct {
	Type EntryType
	// Command is the command expected from the client for input entries, or
	// the command named in the reply for output entries
	Command string
	// Payload is the exact request payload expected by an input entry. A
	// nil Payload matches any request payload
	Payload []byte
	// Id is the request id named by an output entry. Zero means echo the id
	// of the most recent input
	Id uint32
	// Status and Body form an output entry's reply payload
	Status uint32
	Body   []byte
	// RawFrames overrides an output entry's framing entirely, for feed
	// announcements and deliberately malformed messages
	RawFrames [][]byte
	// Duration is how long a delay entry sleeps
	Duration time.Duration
}

// ConversationEntryClose is a pre-defined conversation entry that closes the connection
var ConversationEntryClose = ConversationEntry{
	Type: EntryTypeClose,
}
