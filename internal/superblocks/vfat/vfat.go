// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package vfat probes FAT12/FAT16/FAT32 filesystems.
package vfat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
	"github.com/siderolabs/go-blkid/internal/utils"
)

var (
	fatMagic1 = detector.Magic{
		Offset: 0x52,
		Value:  []byte("MSWIN"),
	}

	fatMagic2 = detector.Magic{
		Offset: 0x52,
		Value:  []byte("FAT32   "),
	}

	fatMagic3 = detector.Magic{
		Offset: 0x36,
		Value:  []byte("MSDOS"),
	}

	fatMagic4 = detector.Magic{
		Offset: 0x36,
		Value:  []byte("FAT16   "),
	}

	fatMagic5 = detector.Magic{
		Offset: 0x36,
		Value:  []byte("FAT12   "),
	}

	fatMagic6 = detector.Magic{
		Offset: 0x36,
		Value:  []byte("FAT     "),
	}
)

const bootSectorSize = 512

var noName = []byte("NO NAME    ")

// Probe for the filesystem.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{
		&fatMagic1,
		&fatMagic2,
		&fatMagic3,
		&fatMagic4,
		&fatMagic5,
		&fatMagic6,
	}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemVFAT.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageFileSystem
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	buf, err := ioutil.ReadBlock(r, 0, bootSectorSize)
	if err != nil {
		return nil, err
	}

	bs := BootSector(buf)

	if !bs.Valid() {
		return nil, nil //nolint:nilnil
	}

	res := &detector.Result{}

	var (
		serial, label []byte
		version       string
	)

	if bs.FATLength() == 0 {
		version = "FAT32"
		serial = buf[0x43:0x47]
		label = buf[0x47:0x52]
	} else {
		version = "FAT16"
		if bs.Clusters() < 4085 {
			version = "FAT12"
		}

		serial = buf[0x27:0x2b]
		label = buf[0x2b:0x36]

		res.SetString(blkid.TagSecType, blkid.FileSystemMSDOS.String())
	}

	if !bytes.Equal(label, noName) {
		res.SetLabel(label)
	}

	res.SetUUID(fmt.Sprintf("%02X%02X-%02X%02X", serial[3], serial[2], serial[1], serial[0]), serial)
	res.SetString(blkid.TagVersion, version)

	sectorSize := uint64(bs.SectorSize())
	clusterSize := uint64(bs.ClusterSize()) * sectorSize

	res.SetUint(blkid.TagFSBlockSize, clusterSize)
	res.SetUint(blkid.TagBlockSize, sectorSize)
	res.SetUint(blkid.TagFSSize, uint64(bs.Sectors())*sectorSize)

	return res, nil
}

// BootSector is the FAT boot sector, little-endian.
type BootSector []byte

// SectorSize returns ms_sector_size.
func (b BootSector) SectorSize() uint16 { return binary.LittleEndian.Uint16(b[0x0b:]) }

// ClusterSize returns ms_cluster_size in sectors.
func (b BootSector) ClusterSize() uint8 { return b[0x0d] }

// Reserved returns ms_reserved.
func (b BootSector) Reserved() uint16 { return binary.LittleEndian.Uint16(b[0x0e:]) }

// FATs returns ms_fats.
func (b BootSector) FATs() uint8 { return b[0x10] }

// DirEntries returns ms_dir_entries.
func (b BootSector) DirEntries() uint16 { return binary.LittleEndian.Uint16(b[0x11:]) }

// Media returns ms_media.
func (b BootSector) Media() uint8 { return b[0x15] }

// FATLength returns ms_fat_length, zero on FAT32.
func (b BootSector) FATLength() uint16 { return binary.LittleEndian.Uint16(b[0x16:]) }

// Sectors returns the total number of sectors.
func (b BootSector) Sectors() uint32 {
	if sectors := binary.LittleEndian.Uint16(b[0x13:]); sectors != 0 {
		return uint32(sectors)
	}

	return binary.LittleEndian.Uint32(b[0x20:])
}

// Clusters returns the number of data clusters of a FAT12/FAT16 file system.
func (b BootSector) Clusters() uint32 {
	sectorSize := uint32(b.SectorSize())
	rootDirSectors := (uint32(b.DirEntries())*32 + sectorSize - 1) / sectorSize
	metadata := uint32(b.Reserved()) + uint32(b.FATs())*uint32(b.FATLength()) + rootDirSectors

	if b.Sectors() <= metadata {
		return 0
	}

	return (b.Sectors() - metadata) / uint32(b.ClusterSize())
}

// Valid runs the sanity checks on the boot sector.
func (b BootSector) Valid() bool {
	switch {
	case b.FATs() == 0,
		b.Reserved() == 0,
		b.Media() < 0xf8 && b.Media() != 0xf0,
		!utils.IsPowerOf2(b.ClusterSize()),
		!utils.IsPowerOf2(b.SectorSize()),
		b.SectorSize() < 512 || b.SectorSize() > 4096:
		return false
	}

	return true
}
