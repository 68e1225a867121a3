// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"slices"
	"time"

	"github.com/google/btree"

	"github.com/siderolabs/go-blkid/blkid"
)

// Operation selects how LookupDevice resolves a device.
type Operation int

// Operation values.
const (
	// OperationCreate returns the cached device, creating an empty entry if there is none.
	OperationCreate Operation = iota
	// OperationFind returns the cached device only, the device itself is never read.
	OperationFind
	// OperationNormal returns the cached device if it is fresh, probing the device otherwise.
	OperationNormal
	// OperationVerify always probes the device.
	OperationVerify
)

// String implements fmt.Stringer.
func (op Operation) String() string {
	switch op {
	case OperationCreate:
		return "Create"
	case OperationFind:
		return "Find"
	case OperationNormal:
		return "Normal"
	case OperationVerify:
		return "Verify"
	default:
		return "Operation(?)"
	}
}

// Device priorities, a tag lookup prefers the device with the higher one.
const (
	PriorityMD = 10
	PriorityDM = 40
)

// Device is a cache entry.
//
// Devices returned by the cache are copies, later changes to the cache don't affect them.
type Device struct {
	name     string
	devNo    uint64
	time     time.Time
	priority int
	tags     []blkid.Tag

	removable bool
	verified  bool
}

// Less implements btree.Item.
func (d *Device) Less(than btree.Item) bool {
	return d.name < than.(*Device).name //nolint:forcetypeassert
}

func (d *Device) clone() Device {
	out := *d
	out.tags = slices.Clone(d.tags)

	return out
}

// Name returns the path of the device.
func (d Device) Name() string { return d.name }

// DeviceNumber returns the device number recorded when the device was last probed.
func (d Device) DeviceNumber() uint64 { return d.devNo }

// Time returns when the device was last probed.
func (d Device) Time() time.Time { return d.time }

// Priority of the device in tag lookups.
func (d Device) Priority() int { return d.priority }

// Removable is true for devices found by ProbeAllRemovableDevices, these are not saved.
func (d Device) Removable() bool { return d.removable }

// Tags returns the properties of the device.
func (d Device) Tags() []blkid.Tag { return slices.Clone(d.tags) }

// HasTag returns true if the device has the tag with the same value.
func (d Device) HasTag(tag blkid.Tag) bool {
	return slices.ContainsFunc(d.tags, tag.Equal)
}

// HasTagNamed returns true if the device has a tag with the name.
func (d Device) HasTagNamed(name blkid.TagName) bool {
	_, ok := blkid.FindTag(d.tags, name)

	return ok
}

// TagValue returns the value of the named tag.
func (d Device) TagValue(name blkid.TagName) (string, bool) {
	tag, ok := blkid.FindTag(d.tags, name)
	if !ok {
		return "", false
	}

	return tag.ValueString(), true
}
