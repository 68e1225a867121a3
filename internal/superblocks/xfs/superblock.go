// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package xfs

import "encoding/binary"

// SuperBlockSize is the number of bytes of the superblock the detector looks at.
const SuperBlockSize = 232

const crcOffset = 224

// XFS superblock structure constants.
//
//nolint:revive,stylecheck
const (
	XFS_MIN_BLOCKSIZE_LOG  = 9  /* i.e. 512 bytes */
	XFS_MAX_BLOCKSIZE_LOG  = 16 /* i.e. 65536 bytes */
	XFS_MIN_SECTORSIZE_LOG = 9  /* i.e. 512 bytes */
	XFS_MAX_SECTORSIZE_LOG = 15 /* i.e. 32768 bytes */

	XFS_DINODE_MIN_LOG = 8
	XFS_DINODE_MAX_LOG = 11

	XFS_MAX_RTEXTSIZE = 1024 * 1024 * 1024 /* 1GB */
	XFS_MIN_RTEXTSIZE = 4 * 1024           /* 4kB */
)

// SuperBlock is the on-disk XFS superblock, big-endian.
type SuperBlock []byte

func (s SuperBlock) u16(off int) uint16 { return binary.BigEndian.Uint16(s[off:]) }
func (s SuperBlock) u32(off int) uint32 { return binary.BigEndian.Uint32(s[off:]) }
func (s SuperBlock) u64(off int) uint64 { return binary.BigEndian.Uint64(s[off:]) }

// BlockSize returns sb_blocksize.
func (s SuperBlock) BlockSize() uint32 { return s.u32(4) }

// DBlocks returns sb_dblocks.
func (s SuperBlock) DBlocks() uint64 { return s.u64(8) }

// UUID returns sb_uuid.
func (s SuperBlock) UUID() [16]byte { return [16]byte(s[32:48]) }

// LogStart returns sb_logstart.
func (s SuperBlock) LogStart() uint64 { return s.u64(48) }

// RExtSize returns sb_rextsize.
func (s SuperBlock) RExtSize() uint32 { return s.u32(80) }

// AGCount returns sb_agcount.
func (s SuperBlock) AGCount() uint32 { return s.u32(88) }

// LogBlocks returns sb_logblocks.
func (s SuperBlock) LogBlocks() uint32 { return s.u32(96) }

// Version returns the version number from sb_versionnum.
func (s SuperBlock) Version() uint16 { return s.u16(100) & 0xf }

// SectSize returns sb_sectsize.
func (s SuperBlock) SectSize() uint16 { return s.u16(102) }

// InodeSize returns sb_inodesize.
func (s SuperBlock) InodeSize() uint16 { return s.u16(104) }

// FName returns sb_fname.
func (s SuperBlock) FName() []byte { return s[108:120] }

// CRC returns sb_crc, stored little-endian.
func (s SuperBlock) CRC() uint32 { return binary.LittleEndian.Uint32(s[crcOffset:]) }

func (s SuperBlock) blockLog() uint8 { return s[120] }
func (s SuperBlock) sectLog() uint8 { return s[121] }
func (s SuperBlock) inodeLog() uint8 { return s[122] }
func (s SuperBlock) inopbLog() uint8 { return s[123] }
func (s SuperBlock) imaxPct() uint8 { return s[127] }

// Valid returns true if the superblock is valid.
//
//nolint:gocyclo,cyclop
func (s SuperBlock) Valid() bool {
	rtExtBytes := uint64(s.RExtSize()) * uint64(s.BlockSize())

	switch {
	case s.AGCount() == 0,
		s.sectLog() < XFS_MIN_SECTORSIZE_LOG || s.sectLog() > XFS_MAX_SECTORSIZE_LOG,
		uint32(s.SectSize()) != 1<<s.sectLog(),
		s.blockLog() < XFS_MIN_BLOCKSIZE_LOG || s.blockLog() > XFS_MAX_BLOCKSIZE_LOG,
		s.BlockSize() != 1<<s.blockLog(),
		s.inodeLog() < XFS_DINODE_MIN_LOG || s.inodeLog() > XFS_DINODE_MAX_LOG,
		uint32(s.InodeSize()) != 1<<s.inodeLog(),
		s.blockLog()-s.inodeLog() != s.inopbLog(),
		rtExtBytes > XFS_MAX_RTEXTSIZE || rtExtBytes < XFS_MIN_RTEXTSIZE,
		s.imaxPct() > 100, // zero sb_imax_pct is valid
		s.DBlocks() == 0:
		return false
	}

	return true
}

// FilesystemSize returns the size of the filesystem in bytes, internal log excluded.
func (s SuperBlock) FilesystemSize() uint64 {
	var logBlocks uint64

	if s.LogStart() != 0 {
		logBlocks = uint64(s.LogBlocks())
	}

	return (s.DBlocks() - logBlocks) * uint64(s.BlockSize())
}
