// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
)

// udev symlink directories under /dev/disk by tag.
var udevLinkDirs = map[blkid.TagName]string{
	blkid.TagLabel:     "by-label",
	blkid.TagUUID:      "by-uuid",
	blkid.TagPartUUID:  "by-partuuid",
	blkid.TagPartLabel: "by-partlabel",
}

// FindDeviceWithTag returns the device with the tag value, preferring device-mapper and md devices.
//
// Only LABEL and UUID are looked up, any other tag never matches.
// Matching devices are verified if stale, and all devices are probed once if none matched.
func (c *Cache) FindDeviceWithTag(name blkid.TagName, value string) (Device, bool) {
	if name != blkid.TagLabel && name != blkid.TagUUID {
		return Device{}, false
	}

	tag := blkid.NewTagString(name, value)

	for {
		if d, ok := c.findVerified(tag); ok {
			return d, true
		}

		if c.borrowed > 0 || c.probedAll {
			return Device{}, false
		}

		if err := c.ProbeAllDevices(); err != nil {
			c.evalLogger.Debug("failed to probe all devices", zap.Error(err))

			return Device{}, false
		}
	}
}

// FindDeviceNameFromTag returns the name of the device with the tag, see FindDeviceWithTag.
func (c *Cache) FindDeviceNameFromTag(tag blkid.Tag) (string, bool) {
	d, ok := c.FindDeviceWithTag(tag.Name(), tag.ValueString())
	if !ok {
		return "", false
	}

	return d.name, true
}

// FindCanonicalDeviceNameFromTag resolves a tag to a device path.
//
// udev links under /dev/disk are tried before the cache.
func (c *Cache) FindCanonicalDeviceNameFromTag(tag blkid.Tag) (string, bool) {
	if dir, ok := udevLinkDirs[tag.Name()]; ok {
		link := filepath.Join(c.devDir, "disk", dir, blkid.EncodeString(tag.Value()))

		if name, ok := c.FindCanonicalDeviceNameFromPath(link); ok {
			return name, true
		}
	}

	name, ok := c.FindDeviceNameFromTag(tag)
	if !ok {
		return "", false
	}

	return c.FindCanonicalDeviceNameFromPath(name)
}

// FindCanonicalDeviceNameFromPath resolves symlinks, device-mapper devices are returned as /dev/mapper/<name>.
func (c *Cache) FindCanonicalDeviceNameFromPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", false
	}

	if base := filepath.Base(resolved); strings.HasPrefix(base, "dm-") {
		if mapped := c.devicePath(base); strings.HasPrefix(mapped, filepath.Join(c.devDir, "mapper")+"/") {
			if _, err = os.Stat(mapped); err == nil {
				return mapped, true
			}
		}
	}

	return resolved, true
}

func (c *Cache) findVerified(tag blkid.Tag) (Device, bool) {
	var candidates []*Device

	c.devices.Ascend(func(item btree.Item) bool {
		if d := item.(*Device); d.HasTag(tag) { //nolint:forcetypeassert
			candidates = append(candidates, d)
		}

		return true
	})

	slices.SortStableFunc(candidates, func(a, b *Device) int {
		return cmp.Compare(b.priority, a.priority)
	})

	for _, d := range candidates {
		if c.borrowed > 0 {
			return d.clone(), true
		}

		refreshed, err := c.LookupDevice(d.name, OperationNormal)
		if err != nil {
			continue
		}

		if refreshed.HasTag(tag) {
			return refreshed, true
		}
	}

	return Device{}, false
}
