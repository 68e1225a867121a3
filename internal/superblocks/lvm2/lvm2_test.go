// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package lvm2_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/internal/superblocks/lvm2"
	"github.com/siderolabs/go-blkid/internal/testutil"
)

func makeImage(sector int) []byte {
	buf := make([]byte, 4096)
	label := buf[sector*lvm2.LabelSize : (sector+1)*lvm2.LabelSize]

	copy(label, "LABELONE")
	binary.LittleEndian.PutUint64(label[8:], uint64(sector))
	binary.LittleEndian.PutUint32(label[20:], 32)
	copy(label[24:], "LVM2 001")
	copy(label[32:], "GmtrW1xYhZbG4BgR1Wq3N0aZ8LdnU5kE")
	binary.LittleEndian.PutUint32(label[16:], lvm2.Checksum(label))

	return buf
}

func TestProbe(t *testing.T) {
	for _, sector := range []int{0, 1} {
		p := &lvm2.Probe{}
		buf := makeImage(sector)

		m := testutil.Match(p, buf)
		require.NotNil(t, m)

		res, err := p.Probe(testutil.NewImage(buf), m)
		require.NoError(t, err)

		assert.Equal(t, map[string]string{
			"UUID":    "GmtrW1-xYhZ-bG4B-gR1W-q3N0-aZ8L-dnU5kE",
			"VERSION": "LVM2 001",
		}, testutil.Properties(res))
	}
}

func TestBadChecksum(t *testing.T) {
	p := &lvm2.Probe{}
	buf := makeImage(1)
	buf[lvm2.LabelSize+100] = 0xff

	res, err := p.Probe(testutil.NewImage(buf), nil)
	require.NoError(t, err)

	assert.Equal(t, "1", testutil.Properties(res)["SBBADCSUM"])
}
