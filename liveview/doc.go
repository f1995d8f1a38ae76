// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package liveview reads and writes the camera liveview stream.
//
// A liveview stream is an endless HTTP response body made of packets. Each
// packet carries one JPEG image:
//
//	common header   8 bytes    0xFF, payload type 0x01, sequence (uint16 BE), timestamp (uint32 BE)
//	payload header  128 bytes  start code 0x24 0x35 0x68 0x79, JPEG size (uint24 BE), padding size (uint8), reserved
//	JPEG data       size bytes
//	padding         padding bytes, discarded
//
// Reader decodes packets from any io.Reader, Writer encodes them, and Client
// opens a stream over HTTP and delivers each JPEG to a callback until the
// stream ends or Close is called.
package liveview
