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

package bitcoin

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrShortPayload  = errors.New("payload is truncated")
	ErrTrailingBytes = errors.New("payload has trailing bytes")
)

// Reader decodes the little-endian wire encoding used by bitcoin payloads.
// Decode errors are sticky: once a read fails, every later read returns a
// zero value and Err reports the first failure
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data)-r.off < n {
		r.fail(fmt.Errorf(
			"%w: need %d bytes at offset %d",
			ErrShortPayload,
			n,
			r.off,
		))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadVarInt reads a bitcoin variable-length integer
func (r *Reader) ReadVarInt() uint64 {
	switch discriminant := r.ReadUint8(); discriminant {
	case 0xfd:
		return uint64(r.ReadUint16())
	case 0xfe:
		return uint64(r.ReadUint32())
	case 0xff:
		return r.ReadUint64()
	default:
		return uint64(discriminant)
	}
}

// ReadVarBytes reads a varint length followed by that many bytes
func (r *Reader) ReadVarBytes() []byte {
	n := r.ReadVarInt()
	if n > uint64(r.Remaining()) {
		r.fail(fmt.Errorf(
			"%w: need %d bytes at offset %d",
			ErrShortPayload,
			n,
			r.off,
		))
		return nil
	}
	return r.ReadBytes(int(n))
}

// ReadBytes reads n bytes into a fresh slice so callers never alias the
// payload buffer
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) ReadHash() Hash {
	var h Hash
	b := r.take(HashSize)
	if b == nil {
		return h
	}
	copy(h[:], b)
	return h
}

func (r *Reader) ReadShortHash() ShortHash {
	var h ShortHash
	b := r.take(ShortHashSize)
	if b == nil {
		return h
	}
	copy(h[:], b)
	return h
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	if r.err != nil {
		return 0
	}
	return len(r.data) - r.off
}

// Err returns the first decode failure, if any
func (r *Reader) Err() error {
	return r.err
}

// Finish reports the first decode failure, or ErrTrailingBytes when the
// payload was not fully consumed
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.data) {
		return fmt.Errorf(
			"%w: %d bytes left at offset %d",
			ErrTrailingBytes,
			len(r.data)-r.off,
			r.off,
		)
	}
	return nil
}

// Writer builds little-endian wire payloads
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteVarInt writes a bitcoin variable-length integer
func (w *Writer) WriteVarInt(v uint64) {
	switch {
	case v < 0xfd:
		w.WriteUint8(uint8(v))
	case v <= 0xffff:
		w.WriteUint8(0xfd)
		w.WriteUint16(uint16(v))
	case v <= 0xffffffff:
		w.WriteUint8(0xfe)
		w.WriteUint32(uint32(v))
	default:
		w.WriteUint8(0xff)
		w.WriteUint64(v)
	}
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteVarBytes writes a varint length followed by the bytes themselves
func (w *Writer) WriteVarBytes(b []byte) {
	w.WriteVarInt(uint64(len(b)))
	w.WriteBytes(b)
}

func (w *Writer) WriteHash(h Hash) {
	w.buf = append(w.buf, h[:]...)
}

func (w *Writer) WriteShortHash(h ShortHash) {
	w.buf = append(w.buf, h[:]...)
}

// WriteBinary writes a bit prefix as its bit count followed by the packed
// prefix bytes
func (w *Writer) WriteBinary(b Binary) {
	w.WriteUint8(b.BitCount())
	w.WriteBytes(b.Bytes())
}

// Bytes returns the accumulated payload
func (w *Writer) Bytes() []byte {
	return w.buf
}
