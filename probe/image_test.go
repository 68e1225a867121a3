// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe_test

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/testutil"
	"github.com/siderolabs/go-blkid/probe"
)

var (
	diskGUID = uuid.MustParse("b6d6c7b1-4dc3-4e5d-9d0b-5b8c1f5f4a10")
	partGUID = uuid.MustParse("7f1b2a3c-5d4e-4f60-8a9b-0c1d2e3f4a5b")
)

func gptImage() []byte {
	buf := make([]byte, 4*MiB)

	testutil.WriteGPT(buf, diskGUID, testutil.GPTPartition{
		Type:     blkid.GPTTypeEFISystem,
		UUID:     partGUID,
		Name:     "EFI",
		FirstLBA: 2048,
		LastLBA:  4095,
	})

	return buf
}

func TestGPTImage(t *testing.T) {
	t.Parallel()

	p := newProbe(t, gptImage(), probe.Config{
		ScanPartitions:   true,
		ScanTopology:     true,
		PartitionOptions: probe.PartitionsMagic,
	})

	_, err := p.PartitionTable()
	require.ErrorIs(t, err, probe.ErrNoPartitionTable)

	_, err = p.Topology()
	require.ErrorIs(t, err, probe.ErrNoTopology)

	res, err := p.FindDeviceProperties()
	require.NoError(t, err)
	assert.Equal(t, probe.FoundProperties, res)

	assert.Equal(t, map[string]string{
		"PTTYPE":               "gpt",
		"PTUUID":               diskGUID.String(),
		"PTMAGIC":              "EFI PART",
		"PTMAGIC_OFFSET":       "512",
		"LOGICAL_SECTOR_SIZE":  "512",
		"PHYSICAL_SECTOR_SIZE": "512",
		"MINIMUM_IO_SIZE":      "512",
	}, testutil.Tags(p.Properties()))

	table, err := p.PartitionTable()
	require.NoError(t, err)

	assert.Equal(t, blkid.PartitionTableGPT, table.Type)
	assert.Equal(t, diskGUID.String(), table.ID)

	assert.Equal(t, []detector.Partition{
		{
			Type:   blkid.PartitionTypeFromGUID(blkid.GPTTypeEFISystem),
			UUID:   partGUID.String(),
			Name:   "EFI",
			Number: 1,
			Offset: 2048 * 512,
			Size:   2048 * 512,
		},
	}, p.Partitions())

	part, ok := p.PartitionByNumber(1)
	require.True(t, ok)
	assert.Equal(t, "EFI", part.Name)

	_, ok = p.PartitionByNumber(2)
	assert.False(t, ok)

	top, err := p.Topology()
	require.NoError(t, err)
	assert.EqualValues(t, 512, top.LogicalSectorSize)
}

func TestPartitionsFilter(t *testing.T) {
	t.Parallel()

	p := newProbe(t, gptImage(), probe.Config{
		ScanSuperblocks: new(bool),
		ScanPartitions:  true,
		PartitionsFilter: &probe.PartitionTableFilter{
			Filter: probe.FilterOut,
			Types:  []blkid.PartitionTableType{blkid.PartitionTableGPT},
		},
	})

	// the protective MBR is not a DOS partition table
	scan(t, p, probe.NoProperties)

	p.InvertPartitionsFilter()
	assert.Equal(t, map[string]string{"PTTYPE": "gpt", "PTUUID": diskGUID.String()}, scan(t, p, probe.FoundProperties))

	p.ResetPartitionsFilter()
	p.EnablePartitions(false)
	scan(t, p, probe.NoProperties)
}

func TestWipeDOS(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4*MiB)

	testutil.WriteMBR(buf, 0xdeadbeef, testutil.MBREntry{Boot: 0x80, Type: 0x83, StartLBA: 2048, Sectors: 4096})

	path := testutil.WriteImage(t, buf)

	p, err := probe.New(probe.Config{
		Path:            path,
		AllowWrites:     true,
		ScanSuperblocks: new(bool),
		ScanPartitions:  true,
		Logger:          zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	t.Cleanup(func() { p.Close() }) //nolint:errcheck

	assert.Equal(t, map[string]string{
		"PTTYPE":         "dos",
		"PTUUID":         "deadbeef",
		"PTMAGIC":        "\x55\xaa",
		"PTMAGIC_OFFSET": "510",
	}, scan(t, p, probe.FoundProperties))

	parts := p.Partitions()
	require.Len(t, parts, 1)
	assert.Equal(t, "deadbeef-01", parts[0].UUID)
	assert.EqualValues(t, 0x80, parts[0].Flags)

	require.NoError(t, p.DeletePropertiesFromDevice())

	scan(t, p, probe.NoProperties)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 0}, contents[510:512])
	// the partition entries are left in place
	assert.Equal(t, byte(0x83), contents[0x1be+4])
}
