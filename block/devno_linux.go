// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SysFsRoot is the mount point of sysfs.
var SysFsRoot = "/sys"

// SysFsDevicePath returns the sysfs directory of the block device with the given number.
func SysFsDevicePath(devNo uint64) string {
	return filepath.Join(SysFsRoot, "dev", "block", fmt.Sprintf("%d:%d", unix.Major(devNo), unix.Minor(devNo)))
}

// IsBlockDevice returns true if f is a block device.
func IsBlockDevice(f *os.File) bool {
	var st unix.Stat_t

	return unix.Fstat(int(f.Fd()), &st) == nil && st.Mode&unix.S_IFMT == unix.S_IFBLK
}

// DeviceNumberFromPath returns the device number of the block device node at path.
func DeviceNumberFromPath(path string) (uint64, error) {
	var st unix.Stat_t

	if err := unix.Stat(path, &st); err != nil {
		return 0, &os.PathError{Op: "stat", Path: path, Err: err}
	}

	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0, fmt.Errorf("%s: not a block device", path)
	}

	return uint64(st.Rdev), nil //nolint:unconvert
}

// DeviceSize returns the size of the block device behind f, zero for other kinds of files.
func DeviceSize(f *os.File) uint64 {
	var st unix.Stat_t

	if err := unix.Fstat(int(f.Fd()), &st); err != nil || st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0
	}

	var size uint64

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size))); errno != 0 {
		return 0
	}

	return size
}

// DevicePathFromNumber returns the /dev path of the block device with the given number.
func DevicePathFromNumber(devNo uint64) (string, error) {
	uevent, err := os.ReadFile(filepath.Join(SysFsDevicePath(devNo), "uevent"))
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(uevent), "\n") {
		if name, ok := strings.CutPrefix(line, "DEVNAME="); ok {
			return filepath.Join("/dev", name), nil
		}
	}

	return "", fmt.Errorf("no device name for %d:%d", unix.Major(devNo), unix.Minor(devNo))
}

// WholeDiskFromNumber returns the whole disk the device with the given number belongs to.
//
// Partitions (including device-mapper partitions) resolve to their parent, whole disks
// resolve to themselves.
func WholeDiskFromNumber(devNo uint64) (Disk, error) {
	sysFsPath := SysFsDevicePath(devNo)

	link, err := filepath.EvalSymlinks(sysFsPath)
	if err != nil {
		return Disk{}, err
	}

	if _, err = os.Stat(filepath.Join(link, "partition")); err == nil {
		parent := filepath.Dir(link)

		return diskFromSysFs(parent)
	}

	contents, err := os.ReadFile(filepath.Join(link, "dm", "uuid"))
	if err == nil && bytes.HasPrefix(contents, []byte("part-")) {
		slaves, err := os.ReadDir(filepath.Join(link, "slaves"))
		if err != nil {
			return Disk{}, err
		}

		if len(slaves) == 0 {
			return Disk{}, errors.New("no slaves found")
		}

		return diskFromSysFs(filepath.Join(link, "slaves", slaves[0].Name()))
	}

	return Disk{Name: filepath.Base(link), DeviceNumber: devNo}, nil
}

// PartitionNumberFromNumber returns the partition number of the partition with the given device number.
func PartitionNumberFromNumber(devNo uint64) (uint, error) {
	contents := readSysFsFile(filepath.Join(SysFsDevicePath(devNo), "partition"))
	if contents == "" {
		return 0, fmt.Errorf("%d:%d is not a partition", unix.Major(devNo), unix.Minor(devNo))
	}

	n, err := strconv.ParseUint(contents, 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(n), nil
}

func diskFromSysFs(path string) (Disk, error) {
	devNo, ok := parseDevNo(readSysFsFile(filepath.Join(path, "dev")))
	if !ok {
		return Disk{}, fmt.Errorf("failed to read device number from %q", path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return Disk{}, err
	}

	return Disk{Name: filepath.Base(resolved), DeviceNumber: devNo}, nil
}
