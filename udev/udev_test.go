// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package udev_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/udev"
)

func TestAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "add", udev.ActionAdd.String())
	assert.Equal(t, "change", udev.ActionChange.String())
	assert.Equal(t, "remove", udev.ActionRemove.String())
	assert.Equal(t, "Action(7)", udev.Action(7).String())
}

func TestSendUEventErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "image.raw")
	require.NoError(t, os.WriteFile(path, make([]byte, 512), 0o600))

	assert.ErrorContains(t, udev.SendUEvent(path, udev.Action(7)), "invalid action")
	assert.Error(t, udev.SendUEvent(path, udev.ActionChange))
	assert.Error(t, udev.SendUEvent(filepath.Join(t.TempDir(), "missing"), udev.ActionChange))
}
