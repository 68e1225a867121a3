// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"github.com/google/btree"

	"github.com/siderolabs/go-blkid/blkid"
)

// DeviceIter iterates over cached devices in name order.
//
// While an iterator is open, operations which change the cache fail with ErrBorrowed.
type DeviceIter struct {
	cache   *Cache
	devices []Device
	pos     int
	closed  bool
}

// Devices returns an iterator over all cached devices.
func (c *Cache) Devices() *DeviceIter {
	return c.iterate(func(*Device) bool { return true })
}

// DevicesMatching returns an iterator over cached devices which have the tag.
func (c *Cache) DevicesMatching(tag blkid.Tag) *DeviceIter {
	return c.iterate(func(d *Device) bool { return d.HasTag(tag) })
}

func (c *Cache) iterate(match func(*Device) bool) *DeviceIter {
	it := &DeviceIter{cache: c}

	c.devices.Ascend(func(item btree.Item) bool {
		if d := item.(*Device); match(d) { //nolint:forcetypeassert
			it.devices = append(it.devices, d.clone())
		}

		return true
	})

	c.borrowed++

	return it
}

// Next returns the next device, false when there are no more.
func (it *DeviceIter) Next() (Device, bool) {
	if it.closed || it.pos >= len(it.devices) {
		return Device{}, false
	}

	it.pos++

	return it.devices[it.pos-1], true
}

// Close releases the cache, it is safe to call Close more than once.
func (it *DeviceIter) Close() {
	if it.closed {
		return
	}

	it.closed = true
	it.cache.borrowed--
}
