// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package squashfs_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/superblocks/squashfs"
	"github.com/siderolabs/go-blkid/internal/testutil"
)

func makeImage(order binary.ByteOrder, major uint16) []byte {
	buf := make([]byte, 4096)

	if order == binary.ByteOrder(binary.BigEndian) {
		copy(buf, "sqsh")
	} else {
		copy(buf, "hsqs")
	}

	order.PutUint32(buf[12:], 131072)
	order.PutUint16(buf[28:], major)
	order.PutUint16(buf[30:], 1)
	order.PutUint64(buf[40:], 1<<20)

	return buf
}

func TestProbe(t *testing.T) {
	for _, test := range []struct {
		name  string
		probe detector.Detector
		order binary.ByteOrder
		major uint16

		expected map[string]string
	}{
		{
			name:  "squashfs",
			probe: &squashfs.Probe{},
			order: binary.LittleEndian,
			major: 4,

			expected: map[string]string{
				"VERSION":     "4.1",
				"FSBLOCKSIZE": "131072",
				"BLOCK_SIZE":  "131072",
				"FSSIZE":      "1048576",
			},
		},
		{
			name:  "squashfs3 on v4",
			probe: &squashfs.Probe3{},
			order: binary.LittleEndian,
			major: 4,
		},
		{
			name:  "squashfs on v3",
			probe: &squashfs.Probe{},
			order: binary.LittleEndian,
			major: 3,
		},
		{
			name:  "squashfs3 big endian",
			probe: &squashfs.Probe3{},
			order: binary.BigEndian,
			major: 3,

			expected: map[string]string{
				"VERSION":    "3.1",
				"ENDIANNESS": "BIG",
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			buf := makeImage(test.order, test.major)

			m := testutil.Match(test.probe, buf)
			require.NotNil(t, m)

			res, err := test.probe.Probe(testutil.NewImage(buf), m)
			require.NoError(t, err)

			assert.Equal(t, test.expected, testutil.Properties(res))
		})
	}
}
