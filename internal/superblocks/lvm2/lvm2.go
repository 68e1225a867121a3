// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package lvm2 probes LVM2 PVs.
package lvm2

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

// Label header layout.
const (
	LabelSize = 512

	labelID   = "LABELONE"
	labelType = "LVM2 001"

	crcOffset     = 16
	offsetOffset  = 20
	typeOffset    = 24
	pvUUIDSize    = 32
	crcInitial    = 0xf597a6cf
	labelSearched = 2
)

var (
	lvmMagic1 = detector.Magic{
		Offset: 0x018,
		Value:  []byte(labelType),
	}

	lvmMagic2 = detector.Magic{
		Offset: 0x218,
		Value:  []byte(labelType),
	}
)

// Probe for the LVM2 physical volume.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{
		&lvmMagic1,
		&lvmMagic2,
	}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemLVM2.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageRaid
}

// Checksum computes the LVM label checksum of the label sector.
func Checksum(label []byte) uint32 {
	return ^crc32.Update(^uint32(crcInitial), crc32.IEEETable, label[offsetOffset:LabelSize])
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	buf, err := ioutil.ReadBlock(r, 0, LabelSize*labelSearched)
	if err != nil {
		return nil, err
	}

	var label []byte

	for i := range labelSearched {
		sector := buf[i*LabelSize : (i+1)*LabelSize]

		if string(sector[:len(labelID)]) == labelID && string(sector[typeOffset:typeOffset+len(labelType)]) == labelType {
			label = sector

			break
		}
	}

	if label == nil {
		return nil, nil //nolint:nilnil
	}

	uuidOffset := binary.LittleEndian.Uint32(label[offsetOffset:])
	if uuidOffset < typeOffset+uint32(len(labelType)) || uuidOffset+pvUUIDSize > LabelSize {
		return nil, nil //nolint:nilnil
	}

	res := &detector.Result{}

	if Checksum(label) != binary.LittleEndian.Uint32(label[crcOffset:]) {
		res.SetString(blkid.TagSBBadChecksum, "1")
	}

	// LVM2 UUIDs aren't 16 bytes, so there is no UUID_RAW.
	id := string(label[uuidOffset : uuidOffset+pvUUIDSize])
	res.SetString(blkid.TagUUID, id[:6]+"-"+id[6:10]+"-"+id[10:14]+"-"+id[14:18]+"-"+id[18:22]+"-"+id[22:26]+"-"+id[26:])
	res.SetString(blkid.TagVersion, labelType)

	return res, nil
}
