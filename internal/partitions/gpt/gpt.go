// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gpt probes GPT partition tables.
package gpt

import (
	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/gptstructs"
	"github.com/siderolabs/go-blkid/internal/gptutil"
	"github.com/siderolabs/go-blkid/internal/ioutil"
	"github.com/siderolabs/go-blkid/internal/partitions/dos"
)

const primaryLBA = 1

var signature = []byte("EFI PART")

// Probe for the partition table.
type Probe struct{}

// Magic returns the magic value for the partition table.
//
// The GPT header location depends on the sector size, so the header is located by Probe.
func (p *Probe) Magic() []*detector.Magic {
	return nil
}

// Name returns the name of the partition table.
func (p *Probe) Name() string {
	return blkid.PartitionTableGPT.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageUnknown
}

// Probe runs the further inspection and returns the result if successful.
//
//nolint:gocyclo,cyclop
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	lastLBA, ok := gptutil.LastLBA(r)
	if !ok || lastLBA < primaryLBA {
		return nil, nil //nolint:nilnil
	}

	force := false
	if o, ok := r.(detector.Options); ok {
		force = o.ForceGPT()
	}

	if !force {
		mbr, err := ioutil.ReadBlock(r, 0, dos.SectorSize)
		if err != nil {
			return nil, err
		}

		if !dos.IsProtective(mbr) {
			return nil, nil //nolint:nilnil
		}
	}

	// try reading primary header
	lba := uint64(primaryLBA)

	hdr, entries, err := gptstructs.ReadHeader(r, lba, lastLBA)
	if err != nil {
		return nil, err
	}

	if hdr == nil {
		// try reading backup header
		lba = lastLBA

		hdr, entries, err = gptstructs.ReadHeader(r, lba, lastLBA)
		if err != nil {
			return nil, err
		}
	}

	sectorSize := uint64(r.GetSectorSize())

	if hdr == nil {
		if force {
			return nil, nil //nolint:nilnil
		}

		// protective MBR without a valid GPT
		return &detector.Result{
			Table: &detector.PartitionTable{
				Type: blkid.PartitionTableProtectiveMBR,
			},
			Magic: &dos.BootSignature,
		}, nil
	}

	table := &detector.PartitionTable{
		Type:   blkid.PartitionTableGPT,
		ID:     gptutil.GUIDToUUID(hdr.DiskGUID).String(),
		Offset: lba * sectorSize,
	}

	for i, entry := range entries {
		if entry.IsEmpty() {
			continue
		}

		if entry.StartingLBA < hdr.FirstUsableLBA || entry.EndingLBA > hdr.LastUsableLBA || entry.EndingLBA < entry.StartingLBA {
			continue
		}

		name, err := gptutil.DecodeName(entry.PartitionName[:])
		if err != nil {
			return nil, err
		}

		table.Partitions = append(table.Partitions, detector.Partition{
			Type:   blkid.PartitionTypeFromGUID(gptutil.GUIDToUUID(entry.PartitionTypeGUID)),
			UUID:   gptutil.GUIDToUUID(entry.UniquePartitionGUID).String(),
			Name:   name,
			Number: uint(i + 1),
			Offset: entry.StartingLBA * sectorSize,
			Size:   (entry.EndingLBA - entry.StartingLBA + 1) * sectorSize,
			Flags:  entry.Attributes,
		})
	}

	return &detector.Result{
		Table: table,
		Magic: &detector.Magic{
			Offset: int64(lba * sectorSize),
			Value:  signature,
		},
	}, nil
}
