// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package liveview

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header sizes and fixed bytes of a packet.
const (
	CommonHeaderSize  = 8
	PayloadHeaderSize = 128

	startByte   = 0xFF
	payloadJPEG = 0x01

	// MaxJPEGSize is the largest size the 3-byte length field can encode.
	MaxJPEGSize = 1<<24 - 1
)

var payloadStartCode = [4]byte{0x24, 0x35, 0x68, 0x79}

// Stream errors.
var (
	// ErrBadCommonHeader is returned when a packet does not start with the
	// start byte and JPEG payload type.
	ErrBadCommonHeader = errors.New("liveview: unexpected common header")

	// ErrBadPayloadHeader is returned when the payload header start code
	// does not match.
	ErrBadPayloadHeader = errors.New("liveview: unexpected payload header")

	// ErrFrameTooLarge is returned when a JPEG does not fit the size field.
	ErrFrameTooLarge = errors.New("liveview: frame too large")
)

// Frame is one decoded packet.
type Frame struct {
	Sequence  uint16
	Timestamp uint32
	JPEG      []byte
}

// Reader decodes liveview packets.
type Reader struct {
	r      io.Reader
	common [CommonHeaderSize]byte
	header [PayloadHeaderSize]byte
}

// NewReader returns a Reader decoding packets from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next reads one packet. It returns io.EOF at a clean packet boundary and
// io.ErrUnexpectedEOF when the stream ends inside a packet.
func (r *Reader) Next() (*Frame, error) {
	if _, err := io.ReadFull(r.r, r.common[:]); err != nil {
		return nil, err
	}
	if r.common[0] != startByte || r.common[1] != payloadJPEG {
		return nil, fmt.Errorf("%w: % x", ErrBadCommonHeader, r.common[:2])
	}

	if _, err := io.ReadFull(r.r, r.header[:]); err != nil {
		return nil, noEOF(err)
	}
	if [4]byte(r.header[:4]) != payloadStartCode {
		return nil, fmt.Errorf("%w: % x", ErrBadPayloadHeader, r.header[:4])
	}
	size := int(r.header[4])<<16 | int(r.header[5])<<8 | int(r.header[6])
	padding := int64(r.header[7])

	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, noEOF(err)
	}
	if padding > 0 {
		if _, err := io.CopyN(io.Discard, r.r, padding); err != nil {
			return nil, noEOF(err)
		}
	}

	return &Frame{
		Sequence:  binary.BigEndian.Uint16(r.common[2:4]),
		Timestamp: binary.BigEndian.Uint32(r.common[4:8]),
		JPEG:      data,
	}, nil
}

// noEOF converts io.EOF inside a packet to io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Writer encodes liveview packets.
type Writer struct {
	// Timestamp, if set, supplies the timestamp field of each packet.
	Timestamp func() uint32

	w      io.Writer
	seq    uint16
	padTo  int
	pad    []byte
	header [CommonHeaderSize + PayloadHeaderSize]byte
}

// NewWriter returns a Writer encoding packets to w. JPEG data is padded to a
// multiple of four bytes, as cameras do.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, padTo: 4, pad: make([]byte, 4)}
}

// WriteFrame writes one packet carrying data. The sequence number
// increments per packet and wraps at 65535.
func (w *Writer) WriteFrame(data []byte) error {
	if len(data) > MaxJPEGSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	padding := (w.padTo - len(data)%w.padTo) % w.padTo

	h := w.header[:]
	clear(h)
	h[0] = startByte
	h[1] = payloadJPEG
	binary.BigEndian.PutUint16(h[2:4], w.seq)
	if w.Timestamp != nil {
		binary.BigEndian.PutUint32(h[4:8], w.Timestamp())
	}
	p := h[CommonHeaderSize:]
	copy(p[:4], payloadStartCode[:])
	p[4] = byte(len(data) >> 16)
	p[5] = byte(len(data) >> 8)
	p[6] = byte(len(data))
	p[7] = byte(padding)

	if _, err := w.w.Write(h); err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	if padding > 0 {
		if _, err := w.w.Write(w.pad[:padding]); err != nil {
			return err
		}
	}
	w.seq++
	return nil
}
