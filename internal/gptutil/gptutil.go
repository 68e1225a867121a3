// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gptutil implements helper functions for GPT tables.
package gptutil

import (
	"bytes"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

// DiskSizer is an interface for block devices that can provide their sector size and total size.
type DiskSizer interface {
	GetSectorSize() uint
	GetSize() uint64
}

// LastLBA returns the last logical block address of the device.
func LastLBA(r DiskSizer) (uint64, bool) {
	sectorSize := uint64(r.GetSectorSize())
	size := r.GetSize()

	if sectorSize == 0 || sectorSize > size {
		return 0, false
	}

	return size/sectorSize - 1, true
}

// GUIDToUUID converts a mixed-endian GPT GUID to a UUID.
func GUIDToUUID(g [16]byte) uuid.UUID {
	return uuid.UUID{
		g[3], g[2], g[1], g[0],
		g[5], g[4],
		g[7], g[6],
		g[8], g[9], g[10], g[11], g[12], g[13], g[14], g[15],
	}
}

// UUIDToGUID converts a UUID to the GPT on-disk form.
func UUIDToGUID(u uuid.UUID) [16]byte {
	// the byte swap is its own inverse
	return GUIDToUUID(u)
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeName decodes a NUL-padded UTF-16LE partition name.
func DecodeName(b []byte) (string, error) {
	name, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	return string(name), nil
}

// EncodeName encodes a partition name into the 72-byte on-disk field.
func EncodeName(name string) ([72]byte, error) {
	var out [72]byte

	b, err := utf16le.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return out, err
	}

	copy(out[:], b)

	return out, nil
}
