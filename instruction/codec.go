// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package instruction

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Buffer appends little endian values. Variable length values carry a u32
// length prefix.
type Buffer struct {
	data []byte
}

func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, 0, size)}
}

func (b *Buffer) WriteUint8(v uint8) {
	b.data = append(b.data, v)
}

func (b *Buffer) WriteUint32(v uint32) {
	b.data = binary.LittleEndian.AppendUint32(b.data, v)
}

// WriteFixed appends data without a length prefix
func (b *Buffer) WriteFixed(data []byte) {
	b.data = append(b.data, data...)
}

// WriteString appends a length prefixed string. The caller must ensure
// s fits the prefix and is valid UTF-8.
func (b *Buffer) WriteString(s string) {
	b.WriteUint32(uint32(len(s)))
	b.data = append(b.data, s...)
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reader is the inverse of Buffer
type Reader struct {
	data   []byte
	offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) ReadUint8() (uint8, error) {
	if r.offset+1 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.offset+4 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

// ReadFixed copies the next len(dst) bytes into dst
func (r *Reader) ReadFixed(dst []byte) error {
	if r.offset+len(dst) > len(r.data) {
		return io.ErrUnexpectedEOF
	}
	copy(dst, r.data[r.offset:])
	r.offset += len(dst)
	return nil
}

func (r *Reader) ReadString() (string, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if uint64(r.offset)+uint64(length) > uint64(len(r.data)) {
		return "", io.ErrUnexpectedEOF
	}
	b := r.data[r.offset : r.offset+int(length)]
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	r.offset += int(length)
	return string(b), nil
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func validString(s string) bool {
	return uint64(len(s)) <= math.MaxUint32 && utf8.ValidString(s)
}
