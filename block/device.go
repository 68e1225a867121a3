// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package block provides support for operations on blockdevices.
package block

import "os"

// DefaultBlockSize is the default block size in bytes.
const DefaultBlockSize = 512

// Device wraps blockdevice operations.
type Device struct {
	f *os.File

	ownedFile bool
	devNo     uint64
}

// NewFromFile returns a new Device from the specified file.
//
// The file stays owned by the caller, Close is a no-op.
func NewFromFile(f *os.File) *Device {
	return &Device{f: f}
}

// File returns the underlying file.
func (d *Device) File() *os.File {
	return d.f
}

// Close the device if it was opened by NewFromPath.
func (d *Device) Close() error {
	if !d.ownedFile {
		return nil
	}

	return d.f.Close()
}

// Option configures NewFromPath.
type Option func(*Options)

// Options for NewFromPath.
type Options struct {
	Flag int
}

// OpenForWrite opens the device read-write.
func OpenForWrite() Option {
	return func(o *Options) {
		o.Flag = os.O_RDWR
	}
}

// Disk identifies a whole disk by name and device number.
type Disk struct {
	Name         string
	DeviceNumber uint64
}

