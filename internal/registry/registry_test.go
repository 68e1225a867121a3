// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/registry"
)

func TestMaxMagicSize(t *testing.T) {
	// the largest swap page size
	assert.EqualValues(t, 0x10000, registry.Default(detector.CategorySuperblocks).MaxMagicSize())
	assert.EqualValues(t, 512, registry.Default(detector.CategoryPartitions).MaxMagicSize())
	assert.EqualValues(t, 0, registry.Default(detector.CategoryTopology).MaxMagicSize())
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"LVM2_member",
		"crypto_LUKS",
		"ceph_bluestore",
		"vfat",
		"swap",
		"xfs",
		"ext4",
		"ext3",
		"ext2",
		"jbd",
		"iso9660",
		"squashfs",
		"squashfs3",
		"zfs_member",
	}, registry.Default(detector.CategorySuperblocks).Names())

	assert.Equal(t, []string{"dos", "gpt"}, registry.Default(detector.CategoryPartitions).Names())
}

func TestLookup(t *testing.T) {
	for _, test := range []struct {
		name     string
		expected registry.Entry
	}{
		{name: "ext4", expected: registry.Entry{Category: detector.CategorySuperblocks, Position: 6}},
		{name: "gpt", expected: registry.Entry{Category: detector.CategoryPartitions, Position: 1}},
		{name: "ioctl-geometry", expected: registry.Entry{Category: detector.CategoryTopology, Position: 0}},
	} {
		t.Run(test.name, func(t *testing.T) {
			e, ok := registry.Lookup(test.name)
			assert.True(t, ok)
			assert.Equal(t, test.expected, e)
		})
	}

	_, ok := registry.Lookup("ntfs")
	assert.False(t, ok)
}

func TestUniqueNames(t *testing.T) {
	seen := map[string]struct{}{}

	for _, category := range []detector.Category{detector.CategorySuperblocks, detector.CategoryPartitions, detector.CategoryTopology} {
		for _, name := range registry.Default(category).Names() {
			assert.NotContains(t, seen, name)

			seen[name] = struct{}{}
		}
	}
}
