// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import "sync"

// TagName is the name of a device property.
type TagName int

// Superblock properties.
const (
	TagType TagName = iota
	TagSecType
	TagLabel
	TagLabelRaw
	TagUUID
	TagUUIDRaw
	TagUUIDSub
	TagLogUUID
	TagExtJournal
	TagUsage
	TagVersion
	TagSBMagic
	TagSBMagicOffset
	TagSBBadChecksum
	TagFSSize
	TagFSLastBlock
	TagFSBlockSize
	TagBlockSize
	TagEndianness
	TagSystemID
	TagPublisherID
	TagApplicationID
	TagBootSystemID
)

// Partition table and partition entry properties.
const (
	TagPTType TagName = iota + TagBootSystemID + 1
	TagPTUUID
	TagPTMagic
	TagPTMagicOffset
	TagPartEntryScheme
	TagPartEntryName
	TagPartEntryUUID
	TagPartEntryType
	TagPartEntryFlags
	TagPartEntryNumber
	TagPartEntryOffset
	TagPartEntrySize
	TagPartEntryDisk
)

// Properties kept in the device cache.
const (
	TagPartUUID TagName = iota + TagPartEntryDisk + 1
	TagPartLabel
)

// Topology properties.
const (
	TagLogicalSectorSize TagName = iota + TagPartLabel + 1
	TagPhysicalSectorSize
	TagMinimumIOSize
	TagOptimalIOSize
	TagAlignmentOffset

	tagNameCount
)

var tagNames = [tagNameCount]string{
	TagType:          "TYPE",
	TagSecType:       "SEC_TYPE",
	TagLabel:         "LABEL",
	TagLabelRaw:      "LABEL_RAW",
	TagUUID:          "UUID",
	TagUUIDRaw:       "UUID_RAW",
	TagUUIDSub:       "UUID_SUB",
	TagLogUUID:       "LOGUUID",
	TagExtJournal:    "EXT_JOURNAL",
	TagUsage:         "USAGE",
	TagVersion:       "VERSION",
	TagSBMagic:       "SBMAGIC",
	TagSBMagicOffset: "SBMAGIC_OFFSET",
	TagSBBadChecksum: "SBBADCSUM",
	TagFSSize:        "FSSIZE",
	TagFSLastBlock:   "FSLASTBLOCK",
	TagFSBlockSize:   "FSBLOCKSIZE",
	TagBlockSize:     "BLOCK_SIZE",
	TagEndianness:    "ENDIANNESS",
	TagSystemID:      "SYSTEM_ID",
	TagPublisherID:   "PUBLISHER_ID",
	TagApplicationID: "APPLICATION_ID",
	TagBootSystemID:  "BOOT_SYSTEM_ID",

	TagPTType:          "PTTYPE",
	TagPTUUID:          "PTUUID",
	TagPTMagic:         "PTMAGIC",
	TagPTMagicOffset:   "PTMAGIC_OFFSET",
	TagPartEntryScheme: "PART_ENTRY_SCHEME",
	TagPartEntryName:   "PART_ENTRY_NAME",
	TagPartEntryUUID:   "PART_ENTRY_UUID",
	TagPartEntryType:   "PART_ENTRY_TYPE",
	TagPartEntryFlags:  "PART_ENTRY_FLAGS",
	TagPartEntryNumber: "PART_ENTRY_NUMBER",
	TagPartEntryOffset: "PART_ENTRY_OFFSET",
	TagPartEntrySize:   "PART_ENTRY_SIZE",
	TagPartEntryDisk:   "PART_ENTRY_DISK",

	TagPartUUID:  "PARTUUID",
	TagPartLabel: "PARTLABEL",

	TagLogicalSectorSize:  "LOGICAL_SECTOR_SIZE",
	TagPhysicalSectorSize: "PHYSICAL_SECTOR_SIZE",
	TagMinimumIOSize:      "MINIMUM_IO_SIZE",
	TagOptimalIOSize:      "OPTIMAL_IO_SIZE",
	TagAlignmentOffset:    "ALIGNMENT_OFFSET",
}

var tagNameLookup = sync.OnceValue(func() map[string]TagName {
	m := make(map[string]TagName, len(tagNames))

	for i, name := range tagNames {
		m[name] = TagName(i)
	}

	return m
})

// String implements fmt.Stringer.
func (n TagName) String() string {
	if n < 0 || n >= tagNameCount {
		return "UNKNOWN"
	}

	return tagNames[n]
}

// Valid returns true if n is a known tag name.
func (n TagName) Valid() bool {
	return n >= 0 && n < tagNameCount
}

// AllTagNames returns every known tag name in declaration order.
func AllTagNames() []TagName {
	names := make([]TagName, tagNameCount)

	for i := range names {
		names[i] = TagName(i)
	}

	return names
}

// ParseTagName parses the upper-case form of a tag name, e.g. "LABEL".
func ParseTagName(s string) (TagName, error) {
	stripped, err := unquote("TagName", s)
	if err != nil {
		return 0, err
	}

	if n, ok := tagNameLookup()[stripped]; ok {
		return n, nil
	}

	return 0, parserError("TagName", "unsupported tag name: %q", s)
}
