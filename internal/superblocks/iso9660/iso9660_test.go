// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package iso9660_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/siderolabs/go-blkid/internal/superblocks/iso9660"
	"github.com/siderolabs/go-blkid/internal/testutil"
)

func padded(s string, n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}

	copy(buf, s)

	return buf
}

func ucs2(s string, n int) []byte {
	encoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}

	buf := make([]byte, n)
	copy(buf, encoded)

	for i := len(encoded); i+1 < n; i += 2 {
		buf[i+1] = ' '
	}

	return buf
}

type descriptor struct {
	typ    byte
	joliet bool
}

func makeImage(base int, descriptors ...descriptor) []byte {
	buf := make([]byte, base+iso9660.SuperblockOffset+iso9660.SectorSize*(len(descriptors)+1))

	for i, d := range append(descriptors, descriptor{typ: 0xff}) {
		vd := buf[base+iso9660.SuperblockOffset+iso9660.SectorSize*i:]

		vd[0] = d.typ
		copy(vd[1:], "CD001")
		vd[6] = 1

		switch {
		case d.typ == 0:
			copy(vd[7:], padded("EL TORITO SPECIFICATION", 32))
		case d.joliet:
			copy(vd[88:], "%/E")
			copy(vd[40:], ucs2("Grüße", 32))
			copy(vd[8:], ucs2("LINUX", 32))
		case d.typ == 1:
			copy(vd[8:], padded("LINUX", 32))
			copy(vd[40:], padded("CDROM", 32))
			binary.LittleEndian.PutUint32(vd[80:], 1000)
			binary.BigEndian.PutUint32(vd[84:], 1000)
			binary.LittleEndian.PutUint16(vd[128:], 2048)
			copy(vd[318:], padded("PUBLISHER", 128))
			copy(vd[813:], "2024010203040500\x00")
			copy(vd[830:], "0000000000000000\x00")
		}
	}

	return buf
}

func TestPrimary(t *testing.T) {
	p := &iso9660.Probe{}
	buf := makeImage(0, descriptor{typ: 1})

	m := testutil.Match(p, buf)
	require.NotNil(t, m)

	res, err := p.Probe(testutil.NewImage(buf), m)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"LABEL":        "CDROM",
		"LABEL_RAW":    string(padded("CDROM", 32)),
		"SYSTEM_ID":    "LINUX",
		"PUBLISHER_ID": "PUBLISHER",
		"UUID":         "2024-01-02-03-04-05-00",
		"FSBLOCKSIZE":  "2048",
		"BLOCK_SIZE":   "2048",
		"FSSIZE":       "2048000",
	}, testutil.Properties(res))
}

func TestJolietAndBoot(t *testing.T) {
	p := &iso9660.Probe{}
	buf := makeImage(0, descriptor{typ: 1}, descriptor{typ: 0}, descriptor{typ: 2, joliet: true})

	res, err := p.Probe(testutil.NewImage(buf), nil)
	require.NoError(t, err)

	props := testutil.Properties(res)

	assert.Equal(t, "Grüße", props["LABEL"])
	assert.Equal(t, "Joliet Extension", props["VERSION"])
	assert.Equal(t, "LINUX", props["SYSTEM_ID"])
	assert.Equal(t, "EL TORITO SPECIFICATION", props["BOOT_SYSTEM_ID"])
}

func TestSessionOffset(t *testing.T) {
	const session = 16 * iso9660.SectorSize

	p := &iso9660.Probe{}
	img := testutil.NewImage(makeImage(session, descriptor{typ: 1}))

	res, err := p.Probe(img, nil)
	require.NoError(t, err)
	assert.Nil(t, res)

	img.Hints = map[string]uint64{iso9660.HintSessionOffset: session}

	res, err = p.Probe(img, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	label, ok := testutil.Properties(res)["LABEL"]
	assert.True(t, ok)
	assert.Equal(t, "CDROM", label)
}
