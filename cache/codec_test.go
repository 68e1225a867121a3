// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/blkid"
)

func TestEncodeDevice(t *testing.T) {
	t.Parallel()

	d := &Device{
		name:     "/dev/mapper/vg-root",
		devNo:    0xfd00,
		time:     time.Unix(1697364422, 123456000),
		priority: PriorityDM,
		tags: []blkid.Tag{
			blkid.NewTagString(blkid.TagLabel, `my "root"`),
			blkid.NewTagString(blkid.TagType, "ext4"),
		},
	}

	line := encodeDevice(d)

	assert.Equal(t,
		`<device DEVNO="0xfd00" TIME="1697364422.123456" PRI="40" LABEL="my \"root\"" TYPE="ext4">/dev/mapper/vg-root</device>`+"\n",
		line,
	)

	decoded, err := decodeDevice(strings.TrimSpace(line))
	require.NoError(t, err)

	assert.Equal(t, d.name, decoded.name)
	assert.Equal(t, d.devNo, decoded.devNo)
	assert.True(t, d.time.Equal(decoded.time))
	assert.Equal(t, d.priority, decoded.priority)
	assert.Equal(t, d.tags, decoded.tags)
}

func TestEncodeNeverProbed(t *testing.T) {
	t.Parallel()

	line := encodeDevice(&Device{name: "/dev/sdb"})

	assert.Equal(t, `<device DEVNO="0x0000" TIME="0.000000">/dev/sdb</device>`+"\n", line)

	d, err := decodeDevice(strings.TrimSpace(line))
	require.NoError(t, err)

	assert.True(t, d.time.IsZero())
	assert.Empty(t, d.tags)
}

func TestDecodeDevice(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string
		line string

		expectedName  string
		expectedError string
	}{
		{
			name:         "greater-than in value",
			line:         `<device DEVNO="0x0801" LABEL="a>b">/dev/sda1</device>`,
			expectedName: "/dev/sda1",
		},
		{
			name:          "no prefix",
			line:          `device DEVNO="0x0801">/dev/sda1</device>`,
			expectedError: `missing "<device" in`,
		},
		{
			name:          "no suffix",
			line:          `<device DEVNO="0x0801">/dev/sda1`,
			expectedError: `missing "</device>" in`,
		},
		{
			name:          "unterminated",
			line:          `<device LABEL="a>/dev/sda1</device>`,
			expectedError: "unterminated device attributes",
		},
		{
			name:          "no name",
			line:          `<device DEVNO="0x0801"></device>`,
			expectedError: "missing device name",
		},
		{
			name:          "bad devno",
			line:          `<device DEVNO="sda">/dev/sda1</device>`,
			expectedError: "invalid DEVNO",
		},
		{
			name:          "bad time",
			line:          `<device TIME="yesterday">/dev/sda1</device>`,
			expectedError: "invalid TIME",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			d, err := decodeDevice(test.line)

			if test.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.expectedError)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedName, d.name)
		})
	}
}

func TestReadDevices(t *testing.T) {
	t.Parallel()

	file := strings.Join([]string{
		`<device DEVNO="0x0801" TIME="1697364422.000001" LABEL="root">/dev/sda1</device>`,
		``,
		`garbage`,
		`<device DEVNO="0x0802" TIME="1697364422.000002" UUID="2f4c">/dev/sda2</device>`,
	}, "\n")

	devices, err := readDevices(strings.NewReader(file))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3:")

	require.Len(t, devices, 2)
	assert.Equal(t, "/dev/sda1", devices[0].name)
	assert.Equal(t, uint64(0x802), devices[1].devNo)
	assert.Equal(t, 2000, devices[1].time.Nanosecond())
}
