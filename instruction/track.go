// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package instruction

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTrackData = errors.New("invalid track data")

	errInvalidUTF8 = errors.New("invalid utf-8")
)

// TrackData describes the attested content a signature covers.
type TrackData struct {
	// UserID identifies the content owner
	UserID string
	// TrackID identifies the content item
	TrackID string
	// Source identifies where the content came from
	Source string
}

// Bytes returns the message a signer signs over: each field as a u32
// little endian length followed by its UTF-8 bytes, in the order
// UserID, TrackID, Source.
func (t *TrackData) Bytes() ([]byte, error) {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"userID", t.UserID},
		{"trackID", t.TrackID},
		{"source", t.Source},
	} {
		if !validString(field.value) {
			return nil, fmt.Errorf("%w: %s is not encodable", ErrInvalidTrackData, field.name)
		}
	}

	buf := NewBuffer(12 + len(t.UserID) + len(t.TrackID) + len(t.Source))
	t.write(buf)
	return buf.Bytes(), nil
}

func (t *TrackData) write(buf *Buffer) {
	buf.WriteString(t.UserID)
	buf.WriteString(t.TrackID)
	buf.WriteString(t.Source)
}

func (t *TrackData) read(r *Reader) error {
	var err error
	if t.UserID, err = r.ReadString(); err != nil {
		return fmt.Errorf("userID: %w", err)
	}
	if t.TrackID, err = r.ReadString(); err != nil {
		return fmt.Errorf("trackID: %w", err)
	}
	if t.Source, err = r.ReadString(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	return nil
}

// ParseTrackData is the inverse of TrackData.Bytes
func ParseTrackData(b []byte) (*TrackData, error) {
	r := NewReader(b)
	t := &TrackData{}
	if err := t.read(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrackData, err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidTrackData, r.Remaining())
	}
	return t, nil
}
