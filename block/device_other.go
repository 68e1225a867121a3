// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !linux

package block

import (
	"errors"
	"os"
)

// SysFsRoot is the mount point of sysfs.
var SysFsRoot = "/sys"

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string, opts ...Option) (*Device, error) {
	options := Options{Flag: os.O_RDONLY}

	for _, opt := range opts {
		opt(&options)
	}

	f, err := os.OpenFile(path, options.Flag, 0)
	if err != nil {
		return nil, err
	}

	return &Device{f: f, ownedFile: true}, nil
}

// GetSize is not supported.
func (d *Device) GetSize() (uint64, error) { return 0, errors.ErrUnsupported }

// GetSectorSize returns the default block size.
func (d *Device) GetSectorSize() uint { return DefaultBlockSize }

// GetPhysicalSectorSize is not supported.
func (d *Device) GetPhysicalSectorSize() (uint, error) { return 0, errors.ErrUnsupported }

// GetMinimumIOSize is not supported.
func (d *Device) GetMinimumIOSize() (uint, error) { return 0, errors.ErrUnsupported }

// GetOptimalIOSize is not supported.
func (d *Device) GetOptimalIOSize() (uint, error) { return 0, errors.ErrUnsupported }

// GetAlignmentOffset is not supported.
func (d *Device) GetAlignmentOffset() (uint64, error) { return 0, errors.ErrUnsupported }

// IsDAX returns false.
func (d *Device) IsDAX() bool { return false }

// IsCD returns false.
func (d *Device) IsCD() bool { return false }

// IsCDNoMedia returns false.
func (d *Device) IsCDNoMedia() bool { return false }

// GetDevNo is not supported.
func (d *Device) GetDevNo() (uint64, error) { return 0, errors.ErrUnsupported }

// IsReadOnly is not supported.
func (d *Device) IsReadOnly() (bool, error) { return false, errors.ErrUnsupported }

// IsWholeDisk is not supported.
func (d *Device) IsWholeDisk() (bool, error) { return false, errors.ErrUnsupported }

// GetWholeDisk is not supported.
func (d *Device) GetWholeDisk() (*Device, error) { return nil, errors.ErrUnsupported }

// IsPrivateDeviceMapper returns false.
func (d *Device) IsPrivateDeviceMapper() (bool, error) { return false, nil }

// TryLock is not supported.
func (d *Device) TryLock(bool) error { return errors.ErrUnsupported }

// Lock is not supported.
func (d *Device) Lock(bool) error { return errors.ErrUnsupported }

// Unlock is not supported.
func (d *Device) Unlock() error { return errors.ErrUnsupported }

// ZeroRange overwrites the range with zeroes.
func (d *Device) ZeroRange(start, length uint64) (string, error) {
	if _, err := d.f.WriteAt(make([]byte, length), int64(start)); err != nil {
		return "", err
	}

	return "writezeroes", nil
}

// IsBlockDevice is not supported on this platform.
func IsBlockDevice(*os.File) bool { return false }

// PartitionNumberFromNumber is not supported on this platform.
func PartitionNumberFromNumber(uint64) (uint, error) { return 0, errors.ErrUnsupported }

// DeviceSize returns zero.
func DeviceSize(*os.File) uint64 { return 0 }

// DevicePathFromNumber is not supported.
func DevicePathFromNumber(uint64) (string, error) { return "", errors.ErrUnsupported }

// WholeDiskFromNumber is not supported.
func WholeDiskFromNumber(uint64) (Disk, error) { return Disk{}, errors.ErrUnsupported }

// DeviceNumberFromPath is not supported.
func DeviceNumberFromPath(string) (uint64, error) { return 0, errors.ErrUnsupported }

// SysFsDevicePath returns an empty path.
func SysFsDevicePath(uint64) string { return "" }
