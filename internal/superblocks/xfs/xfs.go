// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package xfs probes XFS filesystems.
package xfs

import (
	"github.com/google/uuid"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
	"github.com/siderolabs/go-blkid/internal/utils"
)

var xfsMagic = detector.Magic{
	Offset: 0,
	Value:  []byte("XFSB"),
}

// Probe for the filesystem.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&xfsMagic}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemXFS.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageFileSystem
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	buf, err := ioutil.ReadBlock(r, 0, SuperBlockSize)
	if err != nil {
		return nil, err
	}

	sb := SuperBlock(buf)
	if !sb.Valid() {
		return nil, nil //nolint:nilnil
	}

	res := &detector.Result{}

	if sb.Version() == 5 {
		sector, err := ioutil.ReadBlock(r, 0, int(sb.SectSize()))
		if err != nil {
			return nil, err
		}

		if sb.CRC() != ChecksumSector(sector) {
			res.SetString(blkid.TagSBBadChecksum, "1")
		}
	}

	res.SetLabel(sb.FName())
	fsUUID := sb.UUID()
	res.SetUUID(uuid.UUID(fsUUID).String(), fsUUID[:])

	res.SetUint(blkid.TagFSBlockSize, uint64(sb.BlockSize()))
	res.SetUint(blkid.TagBlockSize, uint64(sb.SectSize()))
	res.SetUint(blkid.TagFSLastBlock, sb.DBlocks())
	res.SetUint(blkid.TagFSSize, sb.FilesystemSize())

	return res, nil
}

// ChecksumSector computes the v5 superblock checksum over the first sector,
// with the checksum field itself excluded.
func ChecksumSector(sector []byte) uint32 {
	b := make([]byte, len(sector))
	copy(b, sector)
	copy(b[crcOffset:crcOffset+4], []byte{0, 0, 0, 0})

	return ^utils.CRC32c(b)
}
