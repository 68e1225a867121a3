// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package registry provides the default detector sets for each category.
package registry

import (
	"sync"

	"github.com/siderolabs/gen/xslices"

	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/partitions/dos"
	"github.com/siderolabs/go-blkid/internal/partitions/gpt"
	"github.com/siderolabs/go-blkid/internal/superblocks/bluestore"
	"github.com/siderolabs/go-blkid/internal/superblocks/ext"
	"github.com/siderolabs/go-blkid/internal/superblocks/iso9660"
	"github.com/siderolabs/go-blkid/internal/superblocks/luks"
	"github.com/siderolabs/go-blkid/internal/superblocks/lvm2"
	"github.com/siderolabs/go-blkid/internal/superblocks/squashfs"
	"github.com/siderolabs/go-blkid/internal/superblocks/swap"
	"github.com/siderolabs/go-blkid/internal/superblocks/vfat"
	"github.com/siderolabs/go-blkid/internal/superblocks/xfs"
	"github.com/siderolabs/go-blkid/internal/superblocks/zfs"
	"github.com/siderolabs/go-blkid/internal/topology"
)

// Chain is an ordered list of detectors.
type Chain []detector.Detector

// MaxMagicSize returns the end offset of the farthest magic value in the chain.
func (chain Chain) MaxMagicSize() int64 {
	var farthest int64

	for _, d := range chain {
		for _, m := range d.Magic() {
			if end := m.End(); end > farthest {
				farthest = end
			}
		}
	}

	return farthest
}

// Names returns the detector names in chain order.
func (chain Chain) Names() []string {
	return xslices.Map(chain, detector.Detector.Name)
}

// Index returns the position of the named detector, -1 if absent.
func (chain Chain) Index(name string) int {
	for i, d := range chain {
		if d.Name() == name {
			return i
		}
	}

	return -1
}

// Default returns the default detector set of the category.
//
// Order matters: the first match in a chain wins, RAID and crypto containers are probed before
// the file systems they may contain.
func Default(category detector.Category) Chain {
	switch category {
	case detector.CategorySuperblocks:
		return Chain{
			&lvm2.Probe{},
			&luks.Probe{},
			&bluestore.Probe{},
			&vfat.Probe{},
			&swap.Probe{},
			&xfs.Probe{},
			&ext.Probe{Variant: ext.Ext4},
			&ext.Probe{Variant: ext.Ext3},
			&ext.Probe{Variant: ext.Ext2},
			&ext.Probe{Variant: ext.JBD},
			&iso9660.Probe{},
			&squashfs.Probe{},
			&squashfs.Probe3{},
			&zfs.Probe{},
		}
	case detector.CategoryPartitions:
		return Chain{
			&dos.Probe{},
			&gpt.Probe{},
		}
	case detector.CategoryTopology:
		return Chain{
			&topology.IOCtl{},
			&topology.Default{},
		}
	default:
		return nil
	}
}

// Entry locates a detector in the default sets.
type Entry struct {
	Category detector.Category
	Position int
}

var table = sync.OnceValue(func() map[string]Entry {
	out := map[string]Entry{}

	for _, category := range []detector.Category{detector.CategorySuperblocks, detector.CategoryPartitions, detector.CategoryTopology} {
		for i, name := range Default(category).Names() {
			out[name] = Entry{Category: category, Position: i}
		}
	}

	return out
})

// Lookup returns the category and position of a default detector by its name.
func Lookup(name string) (Entry, bool) {
	e, ok := table()[name]

	return e, ok
}
