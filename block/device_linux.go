// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string, opts ...Option) (*Device, error) {
	options := Options{Flag: os.O_RDONLY}

	for _, opt := range opts {
		opt(&options)
	}

	f, err := os.OpenFile(path, options.Flag|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}

	return &Device{
		f:         f,
		ownedFile: true,
	}, nil
}

func (d *Device) clone() *Device {
	return &Device{
		f:         d.f,
		ownedFile: false,
		devNo:     d.devNo,
	}
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(arg))

	runtime.KeepAlive(d)

	if errno != 0 {
		return errno
	}

	return nil
}

// GetSize returns blockdevice size in bytes.
func (d *Device) GetSize() (uint64, error) {
	var devsize uint64

	if err := d.ioctl(unix.BLKGETSIZE64, unsafe.Pointer(&devsize)); err != nil {
		return 0, err
	}

	return devsize, nil
}

// GetSectorSize returns blockdevice logical sector size in bytes.
func (d *Device) GetSectorSize() uint {
	var size int32

	if err := d.ioctl(unix.BLKSSZGET, unsafe.Pointer(&size)); err != nil || size <= 0 {
		return DefaultBlockSize
	}

	return uint(size)
}

// GetPhysicalSectorSize returns blockdevice physical sector size in bytes.
func (d *Device) GetPhysicalSectorSize() (uint, error) {
	var size uint32

	if err := d.ioctl(unix.BLKPBSZGET, unsafe.Pointer(&size)); err != nil {
		return 0, err
	}

	return uint(size), nil
}

// GetMinimumIOSize returns the minimum I/O size in bytes.
func (d *Device) GetMinimumIOSize() (uint, error) {
	var size uint32

	if err := d.ioctl(unix.BLKIOMIN, unsafe.Pointer(&size)); err != nil {
		return 0, err
	}

	return uint(size), nil
}

// GetOptimalIOSize returns the optimal I/O size in bytes, zero if not reported.
func (d *Device) GetOptimalIOSize() (uint, error) {
	var size uint32

	if err := d.ioctl(unix.BLKIOOPT, unsafe.Pointer(&size)); err != nil {
		return 0, err
	}

	return uint(size), nil
}

// GetAlignmentOffset returns the alignment offset in bytes.
func (d *Device) GetAlignmentOffset() (uint64, error) {
	var offset int32

	if err := d.ioctl(unix.BLKALIGNOFF, unsafe.Pointer(&offset)); err != nil {
		return 0, err
	}

	// negative values mean the device is misaligned
	if offset < 0 {
		return 0, nil
	}

	return uint64(offset), nil
}

// IsDAX returns true if the device supports direct access.
func (d *Device) IsDAX() bool {
	return d.sysFsFlag(filepath.Join("queue", "dax"))
}

func (d *Device) sysFsFlag(name string) bool {
	sysFsPath, err := d.sysFsPath()
	if err != nil {
		return false
	}

	return readSysFsFile(filepath.Join(sysFsPath, name)) == "1"
}

// IsCD returns true if the blockdevice is a CD-ROM device.
func (d *Device) IsCD() bool {
	const CDROM_GET_CAPABILITY = 0x5331 //nolint:revive,stylecheck

	return d.ioctl(CDROM_GET_CAPABILITY, nil) == nil
}

// IsCDNoMedia returns true if the blockdevice is a CD-ROM device without media.
func (d *Device) IsCDNoMedia() bool {
	const (
		CDROM_DRIVE_STATUS = 0x5326 //nolint:revive,stylecheck
		CDS_NO_DISC        = 1      //nolint:revive,stylecheck
		CDS_TRAY_OPEN      = 2      //nolint:revive,stylecheck
	)

	status, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), CDROM_DRIVE_STATUS, 0)

	return errno == 0 && (status == CDS_NO_DISC || status == CDS_TRAY_OPEN)
}

// GetDevNo returns the device number of the blockdevice.
func (d *Device) GetDevNo() (uint64, error) {
	if d.devNo != 0 {
		return d.devNo, nil
	}

	var st unix.Stat_t
	if err := unix.Fstat(int(d.f.Fd()), &st); err != nil {
		return 0, err
	}

	d.devNo = st.Rdev

	return d.devNo, nil
}

func (d *Device) sysFsPath() (string, error) {
	devNo, err := d.GetDevNo()
	if err != nil {
		return "", err
	}

	return SysFsDevicePath(devNo), nil
}

// IsReadOnly returns true if the blockdevice is read-only.
func (d *Device) IsReadOnly() (bool, error) {
	sysFsPath, err := d.sysFsPath()
	if err != nil {
		return false, err
	}

	if ro := readSysFsFile(filepath.Join(sysFsPath, "ro")); ro != "" {
		return ro == "1", nil
	}

	var flags int32
	if err = d.ioctl(unix.BLKROGET, unsafe.Pointer(&flags)); err != nil {
		return false, err
	}

	return flags != 0, nil
}

// IsWholeDisk returns true if the blockdevice is a whole disk.
func (d *Device) IsWholeDisk() (bool, error) {
	sysFsPath, err := d.sysFsPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(filepath.Join(sysFsPath, "partition")); err == nil {
		return false, nil
	}

	// device-mapper partitions carry a "part-" uuid prefix
	contents, err := os.ReadFile(filepath.Join(sysFsPath, "dm", "uuid"))
	if err != nil {
		return true, nil //nolint:nilerr
	}

	return !bytes.HasPrefix(contents, []byte("part-")), nil
}

// GetWholeDisk returns the whole disk for the blockdevice.
//
// If the blockdevice is a whole disk, it returns itself.
// The returned block device should be closed.
func (d *Device) GetWholeDisk() (*Device, error) {
	devNo, err := d.GetDevNo()
	if err != nil {
		return nil, err
	}

	disk, err := WholeDiskFromNumber(devNo)
	if err != nil {
		return nil, err
	}

	if disk.DeviceNumber == devNo {
		return d.clone(), nil
	}

	return NewFromPath(filepath.Join("/dev", disk.Name))
}

// IsPrivateDeviceMapper returns true if this is a private device-mapper device.
func (d *Device) IsPrivateDeviceMapper() (bool, error) {
	sysFsPath, err := d.sysFsPath()
	if err != nil {
		return false, err
	}

	contents, err := os.ReadFile(filepath.Join(sysFsPath, "dm", "uuid"))
	if err != nil {
		return false, nil //nolint:nilerr
	}

	// private LVM volumes look like "LVM-<uuid>-<suffix>"
	prefix, rest, ok := bytes.Cut(contents, []byte("-"))
	if !ok || !bytes.Equal(prefix, []byte("LVM")) {
		return false, nil
	}

	_, _, ok = bytes.Cut(rest, []byte("-"))

	return ok, nil
}

// Lock (and block until the lock is acquired) for the block device.
func (d *Device) Lock(exclusive bool) error {
	return d.lock(exclusive, 0)
}

// TryLock (and return an error if failed).
func (d *Device) TryLock(exclusive bool) error {
	return d.lock(exclusive, unix.LOCK_NB)
}

// Unlock releases any lock.
func (d *Device) Unlock() error {
	for {
		if err := unix.Flock(int(d.f.Fd()), unix.LOCK_UN); !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func (d *Device) lock(exclusive bool, flag int) error {
	if exclusive {
		flag |= unix.LOCK_EX
	} else {
		flag |= unix.LOCK_SH
	}

	for {
		if err := unix.Flock(int(d.f.Fd()), flag); !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func readSysFsFile(path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(contents))
}

func parseDevNo(s string) (uint64, bool) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}

	maj, err := strconv.ParseUint(major, 10, 32)
	if err != nil {
		return 0, false
	}

	mnr, err := strconv.ParseUint(minor, 10, 32)
	if err != nil {
		return 0, false
	}

	return unix.Mkdev(uint32(maj), uint32(mnr)), true
}
