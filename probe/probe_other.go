// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !linux

package probe

import (
	"os"
	"strconv"
)

func openFile(path string, write bool) (*os.File, error) {
	flag := os.O_RDONLY

	if write {
		flag = os.O_RDWR
	}

	return os.OpenFile(path, flag, 0)
}

func adviseRandom(*os.File) {}

func (p *Probe) lock() (func(), error) {
	return func() {}, nil
}

func formatDevNo(devNo uint64) string {
	return "0x" + strconv.FormatUint(devNo, 16)
}
