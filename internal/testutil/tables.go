// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/google/uuid"

	"github.com/siderolabs/go-blkid/internal/gptstructs"
	"github.com/siderolabs/go-blkid/internal/gptutil"
)

// GPTPartition describes a partition written by WriteGPT.
type GPTPartition struct {
	Type     uuid.UUID
	UUID     uuid.UUID
	Name     string
	FirstLBA uint64
	LastLBA  uint64
	Flags    uint64
}

// MBREntry describes a primary partition written by WriteMBR.
type MBREntry struct {
	Boot     byte
	Type     byte
	StartLBA uint32
	Sectors  uint32
}

// WriteMBR writes the MBR with the disk signature and the primary entries.
func WriteMBR(buf []byte, signature uint32, entries ...MBREntry) {
	binary.LittleEndian.PutUint32(buf[0x1b8:], signature)

	for i, e := range entries {
		entry := buf[0x1be+16*i:]

		entry[0] = e.Boot
		entry[4] = e.Type
		binary.LittleEndian.PutUint32(entry[8:], e.StartLBA)
		binary.LittleEndian.PutUint32(entry[12:], e.Sectors)
	}

	buf[510], buf[511] = 0x55, 0xaa
}

// WriteGPT writes a protective MBR and the primary and backup GPT for 512-byte sectors.
func WriteGPT(buf []byte, disk uuid.UUID, partitions ...GPTPartition) {
	const sectorSize = 512

	lastLBA := uint64(len(buf))/sectorSize - 1
	entriesSectors := uint64(gptstructs.NumEntries * gptstructs.EntrySize / sectorSize)

	WriteMBR(buf, 0, MBREntry{Type: 0xee, StartLBA: 1, Sectors: uint32(lastLBA)})

	entries := make([]gptstructs.Entry, gptstructs.NumEntries)

	for i, p := range partitions {
		name, err := gptutil.EncodeName(p.Name)
		if err != nil {
			panic(err)
		}

		entries[i] = gptstructs.Entry{
			PartitionTypeGUID:   gptutil.UUIDToGUID(p.Type),
			UniquePartitionGUID: gptutil.UUIDToGUID(p.UUID),
			StartingLBA:         p.FirstLBA,
			EndingLBA:           p.LastLBA,
			Attributes:          p.Flags,
			PartitionName:       name,
		}
	}

	var entriesBuf bytes.Buffer

	if err := binary.Write(&entriesBuf, binary.LittleEndian, entries); err != nil {
		panic(err)
	}

	for _, location := range []struct{ my, alternate, entries uint64 }{
		{my: 1, alternate: lastLBA, entries: 2},
		{my: lastLBA, alternate: 1, entries: lastLBA - entriesSectors},
	} {
		hdr := gptstructs.Header{
			Signature:                gptstructs.HeaderSignature,
			Revision:                 0x00010000,
			HeaderSize:               gptstructs.HeaderSize,
			MyLBA:                    location.my,
			AlternateLBA:             location.alternate,
			FirstUsableLBA:           2 + entriesSectors,
			LastUsableLBA:            lastLBA - entriesSectors - 1,
			DiskGUID:                 gptutil.UUIDToGUID(disk),
			PartitionEntriesLBA:      location.entries,
			NumPartitionEntries:      gptstructs.NumEntries,
			SizeofPartitionEntry:     gptstructs.EntrySize,
			PartitionEntryArrayCRC32: crc32.ChecksumIEEE(entriesBuf.Bytes()),
		}

		hdr.HeaderCRC32 = hdr.CalculateChecksum()

		b, err := hdr.MarshalBinary()
		if err != nil {
			panic(err)
		}

		copy(buf[location.my*sectorSize:], b)
		copy(buf[location.entries*sectorSize:], entriesBuf.Bytes())
	}
}
