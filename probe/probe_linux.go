// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build linux

package probe

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func openFile(path string, write bool) (*os.File, error) {
	flag := os.O_RDONLY

	if write {
		flag = os.O_RDWR
	}

	return os.OpenFile(path, flag|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
}

func adviseRandom(f *os.File) {
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM) //nolint:errcheck
}

// lock takes a shared lock on the whole disk, as partitioning tools take an exclusive one.
func (p *Probe) lock() (func(), error) {
	if p.skipLocking || p.dev == nil {
		return func() {}, nil
	}

	wholeDisk, err := p.dev.GetWholeDisk()
	if err != nil {
		return nil, fmt.Errorf("failed to get whole disk: %w", err)
	}

	if err = wholeDisk.TryLock(false); err != nil {
		wholeDisk.Close() //nolint:errcheck

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrFailedLock
		}

		return nil, fmt.Errorf("failed to lock whole disk: %w", err)
	}

	return func() {
		wholeDisk.Unlock() //nolint:errcheck
		wholeDisk.Close()  //nolint:errcheck
	}, nil
}

func formatDevNo(devNo uint64) string {
	return fmt.Sprintf("%d:%d", unix.Major(devNo), unix.Minor(devNo))
}
