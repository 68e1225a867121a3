// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gptstructs provides encoded definitions for GPT on-disk structures.
package gptstructs

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/siderolabs/go-blkid/internal/ioutil"
)

// Structure sizes.
const (
	HeaderSize = 92
	EntrySize  = 128
)

// NumEntries is the maximum number of entries accepted in the GPT.
const NumEntries = 128

// HeaderSignature is the signature of the GPT header.
const HeaderSignature = 0x5452415020494645 // "EFI PART"

// Header is the GPT header, little-endian on disk.
type Header struct {
	Signature                uint64
	Revision                 uint32
	HeaderSize               uint32
	HeaderCRC32              uint32
	Reserved                 uint32
	MyLBA                    uint64
	AlternateLBA             uint64
	FirstUsableLBA           uint64
	LastUsableLBA            uint64
	DiskGUID                 [16]byte
	PartitionEntriesLBA      uint64
	NumPartitionEntries      uint32
	SizeofPartitionEntry     uint32
	PartitionEntryArrayCRC32 uint32
}

// Entry is a GPT partition entry.
type Entry struct {
	PartitionTypeGUID   [16]byte
	UniquePartitionGUID [16]byte
	StartingLBA         uint64
	EndingLBA           uint64
	Attributes          uint64
	PartitionName       [72]byte
}

// IsEmpty returns true for unused entries.
func (e *Entry) IsEmpty() bool {
	return e.PartitionTypeGUID == [16]byte{}
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// CalculateChecksum calculates the checksum of the header, with the checksum field zeroed.
func (h *Header) CalculateChecksum() uint32 {
	hdr := *h
	hdr.HeaderCRC32 = 0

	b, err := hdr.MarshalBinary()
	if err != nil {
		return 0
	}

	return crc32.ChecksumIEEE(b)
}

// HeaderReader is an interface for reading GPT headers.
type HeaderReader interface {
	io.ReaderAt
	GetSectorSize() uint
}

// ReadHeader reads the GPT header at lba and its partition entries.
//
// It does sanity checks on the header and partition entries, a nil header means
// there is no valid GPT header at the location.
//
//nolint:gocyclo,cyclop
func ReadHeader(r HeaderReader, lba, lastLBA uint64) (*Header, []Entry, error) {
	sectorSize := r.GetSectorSize()

	buf, err := ioutil.ReadBlock(r, int64(lba)*int64(sectorSize), int(sectorSize))
	if err != nil {
		return nil, nil, err
	}

	var hdr Header

	if err = binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return nil, nil, err
	}

	switch {
	case hdr.Signature != HeaderSignature:
		return nil, nil, nil
	case hdr.HeaderSize < HeaderSize || uint(hdr.HeaderSize) > sectorSize:
		return nil, nil, nil
	case hdr.HeaderCRC32 != crc32.ChecksumIEEE(zeroChecksum(buf[:hdr.HeaderSize])):
		return nil, nil, nil
	case hdr.MyLBA != lba:
		return nil, nil, nil
	}

	// the usable range must be sane and must not cover the header
	if hdr.LastUsableLBA < hdr.FirstUsableLBA || hdr.FirstUsableLBA > lastLBA || hdr.LastUsableLBA > lastLBA {
		return nil, nil, nil
	}

	if hdr.FirstUsableLBA < lba && lba < hdr.LastUsableLBA {
		return nil, nil, nil
	}

	if hdr.SizeofPartitionEntry != EntrySize || hdr.NumPartitionEntries == 0 || hdr.NumPartitionEntries > NumEntries {
		return nil, nil, nil
	}

	entriesBuffer, err := ioutil.ReadBlock(r, int64(hdr.PartitionEntriesLBA)*int64(sectorSize), int(hdr.NumPartitionEntries)*EntrySize)
	if err != nil {
		return nil, nil, err
	}

	if crc32.ChecksumIEEE(entriesBuffer) != hdr.PartitionEntryArrayCRC32 {
		return nil, nil, nil
	}

	entries := make([]Entry, hdr.NumPartitionEntries)

	if err = binary.Read(bytes.NewReader(entriesBuffer), binary.LittleEndian, entries); err != nil {
		return nil, nil, err
	}

	return &hdr, entries, nil
}

func zeroChecksum(b []byte) []byte {
	out := bytes.Clone(b)

	copy(out[16:20], []byte{0, 0, 0, 0})

	return out
}
