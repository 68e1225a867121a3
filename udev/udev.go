// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package udev triggers udev events for block devices.
package udev

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/siderolabs/go-blkid/block"
)

// Action of a uevent.
type Action int

// Action values.
const (
	ActionAdd Action = iota
	ActionChange
	ActionRemove
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionChange:
		return "change"
	case ActionRemove:
		return "remove"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// SendUEvent queues a udev event for the block device at path.
func SendUEvent(path string, action Action) error {
	if action < ActionAdd || action > ActionRemove {
		return fmt.Errorf("invalid action %s", action)
	}

	path, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}

	devNo, err := block.DeviceNumberFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(block.SysFsDevicePath(devNo), "uevent"), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open uevent of %s: %w", path, err)
	}

	if _, err = f.WriteString(action.String()); err != nil {
		f.Close() //nolint:errcheck

		return fmt.Errorf("failed to send %s event to %s: %w", action, path, err)
	}

	return f.Close()
}
