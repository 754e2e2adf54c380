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

package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// FrameFlagMore chains a frame to the frame that follows it. A message
	// is the sequence of frames up to and including the first frame without
	// this flag
	FrameFlagMore = 0x01

	// MaxFrameBody bounds a single frame body. Serialized blocks are the
	// largest payloads carried on the wire, so this sits well above any
	// valid block size
	MaxFrameBody = 1 << 26

	// maxMessageFrames bounds the number of frames a peer can chain into a
	// single message. Well-formed messages never exceed three frames
	maxMessageFrames = 16
)

var (
	ErrFrameTooLarge   = errors.New("frame body exceeds maximum size")
	ErrTooManyFrames   = errors.New("message exceeds maximum frame count")
	ErrMessageTooShort = errors.New("message has too few frames")
)

// FrameHeader is the fixed preamble of every frame on the wire
type FrameHeader struct {
	Flags      uint8
	BodyLength uint32
}

// Frame is a single framed unit
type Frame struct {
	FrameHeader
	Body []byte
}

func newFrame(body []byte, more bool) *Frame {
	frame := &Frame{
		FrameHeader: FrameHeader{
			BodyLength: uint32(len(body)),
		},
		Body: body,
	}
	if more {
		frame.Flags |= FrameFlagMore
	}
	return frame
}

// More returns true when another frame of the same message follows this one
func (f *Frame) More() bool {
	return f.Flags&FrameFlagMore != 0
}

// writeMessage writes all parts of a message into a single buffer and hands
// it to the writer as one write, so concurrent senders cannot interleave
// frames from different messages
func writeMessage(w io.Writer, parts [][]byte) error {
	if len(parts) == 0 {
		parts = [][]byte{nil}
	}
	buf := &bytes.Buffer{}
	for i, part := range parts {
		if len(part) > MaxFrameBody {
			return ErrFrameTooLarge
		}
		frame := newFrame(part, i < len(parts)-1)
		if err := binary.Write(buf, binary.BigEndian, frame.FrameHeader); err != nil {
			return err
		}
		buf.Write(frame.Body)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	return nil
}

// readMessage reads frames until one without the more flag terminates the
// message and returns the frame bodies in order
func readMessage(r io.Reader) ([][]byte, error) {
	var parts [][]byte
	for {
		if len(parts) >= maxMessageFrames {
			return nil, ErrTooManyFrames
		}
		header := FrameHeader{}
		if err := binary.Read(r, binary.BigEndian, &header); err != nil {
			return nil, err
		}
		if header.BodyLength > MaxFrameBody {
			return nil, ErrFrameTooLarge
		}
		frame := &Frame{
			FrameHeader: header,
			Body:        make([]byte, header.BodyLength),
		}
		// We use ReadFull because it guarantees to read the expected number
		// of bytes or return an error
		if _, err := io.ReadFull(r, frame.Body); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("truncated frame body: %w", err)
		}
		parts = append(parts, frame.Body)
		if !frame.More() {
			return parts, nil
		}
	}
}
