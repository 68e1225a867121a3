// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package dos probes MBR (DOS) partition tables.
package dos

import (
	"encoding/binary"
	"fmt"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

// MBR layout.
const (
	SectorSize = 512

	signatureOffset = 0x1b8
	entriesOffset   = 0x1be
	entrySize       = 16
	primaryEntries  = 4

	// maxLogical bounds the EBR chain walk.
	maxLogical = 100

	typeProtective = 0xee
)

// BootSignature is the 0x55AA signature at the end of the MBR.
var BootSignature = detector.Magic{
	Offset: 510,
	Value:  []byte{0x55, 0xaa},
}

// Entry is an MBR partition entry.
type Entry []byte

// Boot returns the boot indicator.
func (e Entry) Boot() byte { return e[0] }

// Type returns the partition type code.
func (e Entry) Type() byte { return e[4] }

// StartLBA returns the first sector, relative to the table.
func (e Entry) StartLBA() uint32 { return binary.LittleEndian.Uint32(e[8:]) }

// Sectors returns the number of sectors.
func (e Entry) Sectors() uint32 { return binary.LittleEndian.Uint32(e[12:]) }

// IsExtended returns true for extended partition containers.
func (e Entry) IsExtended() bool {
	switch e.Type() {
	case 0x05, 0x0f, 0x85:
		return true
	}

	return false
}

func entries(mbr []byte, n int) []Entry {
	out := make([]Entry, n)

	for i := range out {
		out[i] = Entry(mbr[entriesOffset+entrySize*i : entriesOffset+entrySize*(i+1)])
	}

	return out
}

// IsProtective returns true if the sector is an MBR with a GPT protective entry.
func IsProtective(mbr []byte) bool {
	if !BootSignature.Matches(mbr[BootSignature.Offset:]) {
		return false
	}

	for _, e := range entries(mbr, primaryEntries) {
		if e.Type() == typeProtective {
			return true
		}
	}

	return false
}

// Probe for the partition table.
type Probe struct{}

// Magic returns the magic value for the partition table.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&BootSignature}
}

// Name returns the name of the partition table.
func (p *Probe) Name() string {
	return blkid.PartitionTableDOS.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageUnknown
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	mbr, err := ioutil.ReadBlock(r, 0, SectorSize)
	if err != nil {
		return nil, err
	}

	primary := entries(mbr, primaryEntries)

	for _, e := range primary {
		// GPT is reported by its own detector
		if e.Type() == typeProtective {
			return nil, nil //nolint:nilnil
		}

		if e.Boot() != 0 && e.Boot() != 0x80 {
			return nil, nil //nolint:nilnil
		}
	}

	sectorSize := uint64(r.GetSectorSize())
	id := fmt.Sprintf("%08x", binary.LittleEndian.Uint32(mbr[signatureOffset:]))

	table := &detector.PartitionTable{
		Type: blkid.PartitionTableDOS,
		ID:   id,
	}

	add := func(e Entry, number uint, base uint64) {
		table.Partitions = append(table.Partitions, detector.Partition{
			Type:   blkid.PartitionTypeFromOSType(blkid.OSType(e.Type())),
			UUID:   fmt.Sprintf("%s-%02x", id, number),
			Number: number,
			Offset: (base + uint64(e.StartLBA())) * sectorSize,
			Size:   uint64(e.Sectors()) * sectorSize,
			Flags:  uint64(e.Boot()),
		})
	}

	var extended Entry

	for i, e := range primary {
		if e.Type() == 0 || e.Sectors() == 0 {
			continue
		}

		add(e, uint(i+1), 0)

		if e.IsExtended() && extended == nil {
			extended = e
		}
	}

	if extended != nil {
		if err := p.logical(r, extended, add); err != nil {
			return nil, err
		}
	}

	return &detector.Result{Table: table}, nil
}

// logical walks the EBR chain, logical partitions are numbered from 5.
func (p *Probe) logical(r detector.Reader, extended Entry, add func(Entry, uint, uint64)) error {
	sectorSize := int64(r.GetSectorSize())
	extStart := uint64(extended.StartLBA())
	extEnd := extStart + uint64(extended.Sectors())

	number := uint(primaryEntries + 1)
	current := extStart

	for range maxLogical {
		ebr, err := ioutil.ReadBlock(r, int64(current)*sectorSize, SectorSize)
		if err != nil {
			return err
		}

		if !BootSignature.Matches(ebr[BootSignature.Offset:]) {
			return nil
		}

		var next uint64

		for _, e := range entries(ebr, 2) {
			switch {
			case e.Type() == 0 || e.Sectors() == 0:
			case e.IsExtended():
				if next == 0 {
					next = extStart + uint64(e.StartLBA())
				}
			default:
				if current+uint64(e.StartLBA()) >= extEnd {
					continue
				}

				add(e, number, current)
				number++
			}
		}

		if next == 0 || next <= current || next >= extEnd {
			return nil
		}

		current = next
	}

	return nil
}
