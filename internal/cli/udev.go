// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cli

import (
	"fmt"

	"github.com/siderolabs/go-blkid/udev"
)

// UEventCmd triggers a udev event.
type UEventCmd struct {
	Device string `arg help:"Block device"`
	Action string `help:"add, change or remove" default:"change"`
}

// Run the command.
func (cmd *UEventCmd) Run(*Globals) error {
	for _, action := range []udev.Action{udev.ActionAdd, udev.ActionChange, udev.ActionRemove} {
		if action.String() == cmd.Action {
			return udev.SendUEvent(cmd.Device, action)
		}
	}

	return fmt.Errorf("unknown action %q", cmd.Action)
}
