// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ext

import "encoding/binary"

// Feature flags.
const (
	compatHasJournal = 0x0004

	incompatFiletype    = 0x0002
	incompatRecover     = 0x0004
	incompatJournalDev  = 0x0008
	incompatMetaBG      = 0x0010
	roCompatSparseSuper = 0x0001
	roCompatLargeFile   = 0x0002
	roCompatBtreeDir    = 0x0004

	roCompatMetadataCsum = 0x0400

	ext2ROCompatSupported = roCompatSparseSuper | roCompatLargeFile | roCompatBtreeDir
	ext2IncompatSupported = incompatFiletype | incompatMetaBG
	ext3ROCompatSupported = ext2ROCompatSupported
	ext3IncompatSupported = incompatFiletype | incompatRecover | incompatMetaBG

	incompat64Bit = 0x0080

	flagsTestFilesys = 0x0004
)

// SuperBlock is the on-disk extfs superblock, little-endian.
type SuperBlock []byte

func (s SuperBlock) u16(off int) uint16 { return binary.LittleEndian.Uint16(s[off:]) }
func (s SuperBlock) u32(off int) uint32 { return binary.LittleEndian.Uint32(s[off:]) }

// Compat returns s_feature_compat.
func (s SuperBlock) Compat() uint32 { return s.u32(0x5c) }

// Incompat returns s_feature_incompat.
func (s SuperBlock) Incompat() uint32 { return s.u32(0x60) }

// ROCompat returns s_feature_ro_compat.
func (s SuperBlock) ROCompat() uint32 { return s.u32(0x64) }

// RevLevel returns s_rev_level.
func (s SuperBlock) RevLevel() uint32 { return s.u32(0x4c) }

// MinorRevLevel returns s_minor_rev_level.
func (s SuperBlock) MinorRevLevel() uint16 { return s.u16(0x3e) }

// Flags returns s_flags.
func (s SuperBlock) Flags() uint32 { return s.u32(0x160) }

// Checksum returns s_checksum.
func (s SuperBlock) Checksum() uint32 { return s.u32(0x3fc) }

// UUID returns s_uuid.
func (s SuperBlock) UUID() [16]byte { return [16]byte(s[0x68:0x78]) }

// VolumeName returns s_volume_name.
func (s SuperBlock) VolumeName() []byte { return s[0x78:0x88] }

// JournalUUID returns s_journal_uuid.
func (s SuperBlock) JournalUUID() [16]byte { return [16]byte(s[0xd0:0xe0]) }

// BlockSize returns the block size of the filesystem.
func (s SuperBlock) BlockSize() uint32 {
	logBlockSize := s.u32(0x18)
	if logBlockSize >= 22 {
		return 0
	}

	return 1024 << logBlockSize
}

// BlocksCount returns the number of blocks, including the high half on 64-bit file systems.
func (s SuperBlock) BlocksCount() uint64 {
	count := uint64(s.u32(0x04))

	if s.Incompat()&incompat64Bit != 0 {
		count |= uint64(s.u32(0x150)) << 32
	}

	return count
}

// FilesystemSize returns the size of the filesystem.
func (s SuperBlock) FilesystemSize() uint64 {
	return s.BlocksCount() * uint64(s.BlockSize())
}
