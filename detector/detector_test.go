// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
)

func TestMagic(t *testing.T) {
	t.Parallel()

	m := &detector.Magic{Value: []byte("EFI PART"), Offset: 512}

	assert.True(t, m.Matches([]byte("EFI PART and more")))
	assert.False(t, m.Matches([]byte("EFI")))
	assert.False(t, m.Matches([]byte("EFI_PART")))
	assert.EqualValues(t, 520, m.End())
	assert.Equal(t, "4546492050415254", m.Hex())
}

func TestSetLabel(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string
		raw  []byte

		expectedLabel string
		expectedRaw   string
	}{
		{
			name:          "padded",
			raw:           []byte("BOOT       "),
			expectedLabel: "BOOT",
			expectedRaw:   "BOOT       ",
		},
		{
			name:          "nul terminated",
			raw:           []byte("data\x00garbage"),
			expectedLabel: "data",
			expectedRaw:   "data",
		},
		{
			name:          "spaces inside",
			raw:           []byte("my disk"),
			expectedLabel: "my_disk",
			expectedRaw:   "my disk",
		},
		{
			name: "empty",
			raw:  []byte("   \x00"),
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var res detector.Result

			res.SetLabel(test.raw)

			label, ok := res.Lookup(blkid.TagLabel)

			if test.expectedLabel == "" {
				assert.False(t, ok)
				assert.Empty(t, res.Properties)

				return
			}

			require.True(t, ok)
			assert.Equal(t, test.expectedLabel, label.ValueString())

			raw, ok := res.Lookup(blkid.TagLabelRaw)
			require.True(t, ok)
			assert.Equal(t, test.expectedRaw, string(raw.Value()))
		})
	}
}

func TestSetUUID(t *testing.T) {
	t.Parallel()

	var res detector.Result

	res.SetUUID("00000000-0000", make([]byte, 6))
	assert.Empty(t, res.Properties)

	res.SetUUID("", []byte{1})
	assert.Empty(t, res.Properties)

	res.SetUUID("1234-5678", []byte{0x78, 0x56, 0x34, 0x12})

	uuid, ok := res.Lookup(blkid.TagUUID)
	require.True(t, ok)
	assert.Equal(t, "1234-5678", uuid.ValueString())

	raw, ok := res.Lookup(blkid.TagUUIDRaw)
	require.True(t, ok)
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, raw.Value())

	res.SetUint(blkid.TagFSSize, 4096)

	size, ok := res.Lookup(blkid.TagFSSize)
	require.True(t, ok)
	assert.Equal(t, "4096", size.ValueString())
}
