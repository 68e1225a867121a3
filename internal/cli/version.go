// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cli

import (
	"fmt"

	"github.com/siderolabs/go-blkid/blkid"
)

// VersionCmd prints the library version.
type VersionCmd struct{}

// Run the command.
func (cmd *VersionCmd) Run(*Globals) error {
	info := blkid.LibraryVersion()

	fmt.Fprintf(output, "blkid from go-blkid %s (%s)\n", info.Version, info.ReleaseDate)

	return nil
}
