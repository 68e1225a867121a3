// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ext probes extfs filesystems and external ext3/ext4 journals.
package ext

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
	"github.com/siderolabs/go-blkid/internal/utils"
)

const (
	sbOffset = 0x400
	sbSize   = 0x400
)

var extfsMagic = detector.Magic{
	Offset: sbOffset + 0x38,
	Value:  []byte("\123\357"),
}

// Variant of the extfs family.
type Variant int

// Variants, probed in this order.
const (
	Ext4 Variant = iota
	JBD
	Ext3
	Ext2
)

// Probe for one variant of the filesystem.
type Probe struct {
	Variant Variant
}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&extfsMagic}
}

// Name returns the name of the variant.
func (p *Probe) Name() string {
	switch p.Variant {
	case Ext4:
		return blkid.FileSystemExt4.String()
	case JBD:
		return blkid.FileSystemJBD.String()
	case Ext3:
		return blkid.FileSystemExt3.String()
	default:
		return blkid.FileSystemExt2.String()
	}
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	if p.Variant == JBD {
		return blkid.UsageOther
	}

	return blkid.UsageFileSystem
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	buf, err := ioutil.ReadBlock(r, sbOffset, sbSize)
	if err != nil {
		return nil, err
	}

	sb := SuperBlock(buf)

	if !p.matches(sb) {
		return nil, nil //nolint:nilnil
	}

	res := &detector.Result{}

	if sb.ROCompat()&roCompatMetadataCsum != 0 && utils.CRC32c(buf[:sbSize-4]) != sb.Checksum() {
		res.SetString(blkid.TagSBBadChecksum, "1")
	}

	res.SetLabel(sb.VolumeName())
	fsUUID := sb.UUID()
	res.SetUUID(uuid.UUID(fsUUID).String(), fsUUID[:])

	if sb.Compat()&compatHasJournal != 0 {
		if journal := sb.JournalUUID(); journal != [16]byte{} {
			res.SetString(blkid.TagExtJournal, uuid.UUID(journal).String())
		}
	}

	if p.Variant == Ext3 {
		// ext3 without a journal replay pending is mountable as ext2
		res.SetString(blkid.TagSecType, blkid.FileSystemExt2.String())
	}

	res.SetString(blkid.TagVersion, fmt.Sprintf("%d.%d", sb.RevLevel(), sb.MinorRevLevel()))

	if blockSize := sb.BlockSize(); blockSize > 0 {
		res.SetUint(blkid.TagFSBlockSize, uint64(blockSize))
		res.SetUint(blkid.TagBlockSize, uint64(blockSize))
		res.SetUint(blkid.TagFSLastBlock, sb.BlocksCount())
		res.SetUint(blkid.TagFSSize, sb.FilesystemSize())
	}

	return res, nil
}

func (p *Probe) matches(sb SuperBlock) bool {
	compat, incompat, roCompat := sb.Compat(), sb.Incompat(), sb.ROCompat()

	if p.Variant == JBD {
		return incompat&incompatJournalDev != 0
	}

	if incompat&incompatJournalDev != 0 {
		return false
	}

	ext3Compatible := roCompat&^ext3ROCompatSupported == 0 && incompat&^ext3IncompatSupported == 0

	switch p.Variant {
	case Ext4:
		// test file systems belong to ext4dev
		return !ext3Compatible && sb.Flags()&flagsTestFilesys == 0
	case Ext3:
		return compat&compatHasJournal != 0 && ext3Compatible
	default:
		return compat&compatHasJournal == 0 &&
			roCompat&^ext2ROCompatSupported == 0 &&
			incompat&^ext2IncompatSupported == 0
	}
}
