// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const zeroChunk = 64 * 1024

// ZeroRange zeroes out the device range [start, start+length).
//
// BLKZEROOUT is tried first, the range is overwritten from userland otherwise.
// The method which succeeded is returned.
func (d *Device) ZeroRange(start, length uint64) (string, error) {
	if length == 0 {
		return "noop", nil
	}

	r := [2]uint64{start, length}

	// BLKZEROOUT needs sector-aligned ranges
	if start%DefaultBlockSize == 0 && length%DefaultBlockSize == 0 {
		if err := d.ioctl(unix.BLKZEROOUT, unsafe.Pointer(&r[0])); err == nil {
			return "blkzeroout", nil
		}
	}

	zeroes := make([]byte, min(length, zeroChunk))

	for off := start; off < start+length; {
		n := min(uint64(len(zeroes)), start+length-off)

		if _, err := d.f.WriteAt(zeroes[:n], int64(off)); err != nil {
			return "", err
		}

		off += n
	}

	return "writezeroes", d.f.Sync()
}
