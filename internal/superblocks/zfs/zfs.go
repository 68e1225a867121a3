// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package zfs probes ZFS pool members.
package zfs

import (
	"encoding/binary"
	"strconv"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

// Label layout.
const (
	UberblockCount  = 128
	UberblockSize   = 1024
	VdevLabelSize   = 1024 * 256
	NVListOffset    = 1024 * 16
	NVListSize      = 1024 * 112
	UberblockOffset = 1024 * 128

	minUberblocks = 4 // Number of uberblocks to be found

	UberblockMagic = uint64(0x00bab10c)
)

// Probe for the filesystem.
//
// ZFS has no fixed magic, the labels are always inspected.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return nil
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemZFS.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageFileSystem
}

func labelOffsets(size uint64) []uint64 {
	aligned := size - size%VdevLabelSize

	offsets := []uint64{0, VdevLabelSize}

	if aligned >= 4*VdevLabelSize {
		offsets = append(offsets, aligned-2*VdevLabelSize, aligned-VdevLabelSize)
	}

	return offsets
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	size := r.GetSize()
	if size < 2*VdevLabelSize {
		return nil, nil //nolint:nilnil
	}

	for _, labelOffset := range labelOffsets(size) {
		ubArray, err := ioutil.ReadBlock(r, int64(labelOffset+UberblockOffset), UberblockCount*UberblockSize)
		if err != nil {
			return nil, err
		}

		var (
			found   int
			first   = -1
			order   binary.ByteOrder
			version uint64
		)

		for i := range UberblockCount {
			ub := ubArray[i*UberblockSize:]

			switch {
			case binary.LittleEndian.Uint64(ub) == UberblockMagic:
				order = binary.LittleEndian
			case binary.BigEndian.Uint64(ub) == UberblockMagic:
				order = binary.BigEndian
			default:
				continue
			}

			if first == -1 {
				first = i
				version = order.Uint64(ub[8:])
			}

			found++
		}

		if found < minUberblocks {
			continue
		}

		res := &detector.Result{}

		nvlist, err := ioutil.ReadBlock(r, int64(labelOffset+NVListOffset), NVListSize)
		if err != nil {
			return nil, err
		}

		pairs := ParseNVList(nvlist)

		if name, ok := pairs["name"].(string); ok {
			res.SetLabelString(name)
		}

		if guid, ok := pairs["pool_guid"].(uint64); ok {
			res.SetString(blkid.TagUUID, strconv.FormatUint(guid, 10))
		}

		if guid, ok := pairs["guid"].(uint64); ok {
			res.SetString(blkid.TagUUIDSub, strconv.FormatUint(guid, 10))
		}

		res.SetUint(blkid.TagVersion, version)

		magicOffset := int64(labelOffset+UberblockOffset) + int64(first*UberblockSize)
		magicValue := make([]byte, 8)
		order.PutUint64(magicValue, UberblockMagic)

		res.Magic = &detector.Magic{
			Offset: magicOffset,
			Value:  magicValue,
		}

		return res, nil
	}

	return nil, nil //nolint:nilnil
}
