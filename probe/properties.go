// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/block"
	"github.com/siderolabs/go-blkid/detector"
)

// fsPropertyOf maps superblock properties to the flag which enables them.
//
// Properties not listed are always reported.
var fsPropertyOf = map[blkid.TagName]FsProperty{
	blkid.TagLabel:         FsLabel,
	blkid.TagLabelRaw:      FsLabelRaw,
	blkid.TagUUID:          FsUUID,
	blkid.TagUUIDSub:       FsUUID,
	blkid.TagLogUUID:       FsUUID,
	blkid.TagExtJournal:    FsUUID,
	blkid.TagUUIDRaw:       FsUUIDRaw,
	blkid.TagSecType:       FsSecondType,
	blkid.TagVersion:       FsVersion,
	blkid.TagFSSize:        FsInfo,
	blkid.TagFSLastBlock:   FsInfo,
	blkid.TagFSBlockSize:   FsInfo,
	blkid.TagBlockSize:     FsInfo,
	blkid.TagSBBadChecksum: FsBadChecksum,
}

// collect converts the detector result into the properties of the match.
//
// It returns false if the result should not count as a match.
func (p *Probe) collect(m *match) bool {
	switch m.category {
	case detector.CategorySuperblocks:
		return p.collectSuperblock(m)
	case detector.CategoryPartitions:
		return p.collectPartitionTable(m)
	case detector.CategoryTopology:
		return p.collectTopology(m)
	default:
		return false
	}
}

func (p *Probe) collectSuperblock(m *match) bool {
	if _, bad := m.result.Lookup(blkid.TagSBBadChecksum); bad && p.fsProps&FsBadChecksum == 0 {
		p.logger.Debug("ignoring superblock with bad checksum", zap.String("detector", m.detector.Name()))

		return false
	}

	for _, tag := range m.result.Properties {
		if flag, ok := fsPropertyOf[tag.Name()]; ok && p.fsProps&flag == 0 {
			continue
		}

		m.values = append(m.values, tag)
	}

	if p.fsProps&FsType != 0 {
		m.values = append(m.values, blkid.NewTagString(blkid.TagType, m.detector.Name()))
	}

	if p.fsProps&FsUsage != 0 {
		m.values = append(m.values, blkid.NewTagString(blkid.TagUsage, m.detector.Usage().String()))
	}

	if p.fsProps&FsMagic != 0 && m.magic != nil {
		m.values = append(m.values,
			blkid.NewTag(blkid.TagSBMagic, m.magic.Value),
			blkid.NewTagString(blkid.TagSBMagicOffset, strconv.FormatInt(m.magic.Offset, 10)),
		)
	}

	return true
}

func (p *Probe) collectPartitionTable(m *match) bool {
	table := m.result.Table
	if table == nil {
		return false
	}

	m.values = append(m.values, blkid.NewTagString(blkid.TagPTType, table.Type.String()))

	if table.ID != "" {
		m.values = append(m.values, blkid.NewTagString(blkid.TagPTUUID, table.ID))
	}

	if p.partOpts&PartitionsMagic != 0 && m.magic != nil {
		m.values = append(m.values,
			blkid.NewTag(blkid.TagPTMagic, m.magic.Value),
			blkid.NewTagString(blkid.TagPTMagicOffset, strconv.FormatInt(m.magic.Offset, 10)),
		)
	}

	m.values = append(m.values, m.result.Properties...)

	return true
}

func (p *Probe) collectTopology(m *match) bool {
	top := m.result.Topology
	if top == nil {
		return false
	}

	for _, v := range []struct {
		name  blkid.TagName
		value uint64
	}{
		{blkid.TagLogicalSectorSize, top.LogicalSectorSize},
		{blkid.TagPhysicalSectorSize, top.PhysicalSectorSize},
		{blkid.TagMinimumIOSize, top.MinimumIOSize},
		{blkid.TagOptimalIOSize, top.OptimalIOSize},
		{blkid.TagAlignmentOffset, top.AlignmentOffset},
	} {
		if v.value != 0 {
			m.values = append(m.values, blkid.NewTagString(v.name, strconv.FormatUint(v.value, 10)))
		}
	}

	return true
}

// entryDetails adds the PART_ENTRY_* properties of a partition device to the partitions chain.
//
// The entry is looked up in the partition table of the whole disk.
func (p *Probe) entryDetails(c *chain, res ScanResult) (ScanResult, error) {
	if c.category != detector.CategoryPartitions || p.partOpts&PartitionsEntryDetails == 0 {
		return res, nil
	}

	if res != FoundProperties && res != NoProperties {
		return res, nil
	}

	if p.dev == nil || p.wholeDisk {
		return res, nil
	}

	tags, err := p.entryLookup(c)
	if err != nil {
		return ScanError, err
	}

	if len(tags) == 0 {
		return res, nil
	}

	c.values = append(c.values, tags...)

	return FoundProperties, nil
}

func (p *Probe) partitionEntry(c *chain) ([]blkid.Tag, error) {
	disk, err := block.WholeDiskFromNumber(p.devNo)
	if err != nil {
		p.logger.Debug("failed to find whole disk", zap.Error(err))

		return nil, nil
	}

	number, err := block.PartitionNumberFromNumber(p.devNo)
	if err != nil {
		p.logger.Debug("failed to find partition number", zap.Error(err))

		return nil, nil
	}

	diskPath, err := block.DevicePathFromNumber(disk.DeviceNumber)
	if err != nil {
		diskPath = filepath.Join("/dev", disk.Name)
	}

	parent, err := New(Config{
		Path:             diskPath,
		ScanSuperblocks:  new(bool),
		ScanPartitions:   true,
		PartitionOptions: p.partOpts &^ PartitionsEntryDetails,
		Detectors:        map[detector.Category][]detector.Detector{detector.CategoryPartitions: c.detectors},
		SkipLocking:      true,
		Logger:           p.cfgLogger,
	})
	if err != nil {
		p.logger.Debug("failed to open whole disk", zap.Error(err))

		return nil, nil
	}

	defer parent.Close() //nolint:errcheck

	if res, err := parent.FindDeviceProperties(); res != FoundProperties {
		return nil, err
	}

	part, ok := parent.PartitionByNumber(number)
	if !ok {
		return nil, nil
	}

	return partitionEntryTags(parent.table.Type, part, disk.DeviceNumber), nil
}

func partitionEntryTags(scheme blkid.PartitionTableType, part detector.Partition, diskDevNo uint64) []blkid.Tag {
	tags := []blkid.Tag{blkid.NewTagString(blkid.TagPartEntryScheme, scheme.String())}

	if part.Name != "" {
		tags = append(tags, blkid.NewTagString(blkid.TagPartEntryName, part.Name))
	}

	if part.UUID != "" {
		tags = append(tags, blkid.NewTagString(blkid.TagPartEntryUUID, part.UUID))
	}

	tags = append(tags, blkid.NewTagString(blkid.TagPartEntryType, part.Type.String()))

	if part.Flags != 0 {
		tags = append(tags, blkid.NewTagString(blkid.TagPartEntryFlags, "0x"+strconv.FormatUint(part.Flags, 16)))
	}

	return append(tags,
		blkid.NewTagString(blkid.TagPartEntryNumber, strconv.FormatUint(uint64(part.Number), 10)),
		blkid.NewTagString(blkid.TagPartEntryOffset, strconv.FormatUint(part.Offset/block.DefaultBlockSize, 10)),
		blkid.NewTagString(blkid.TagPartEntrySize, strconv.FormatUint(part.Size/block.DefaultBlockSize, 10)),
		blkid.NewTagString(blkid.TagPartEntryDisk, formatDevNo(diskDevNo)),
	)
}
