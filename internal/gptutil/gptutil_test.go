// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gptutil_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/internal/gptutil"
)

func TestGUIDToUUID(t *testing.T) {
	u := uuid.UUID{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, 0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}
	guid := [16]byte{0x67, 0x45, 0x23, 0x01, 0xab, 0x89, 0xef, 0xcd, 0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}

	assert.Equal(t, u, gptutil.GUIDToUUID(guid))
	assert.Equal(t, guid, gptutil.UUIDToGUID(u))
	assert.Equal(t, u, gptutil.GUIDToUUID(gptutil.UUIDToGUID(u)))
}

type sizer struct {
	sector uint
	size   uint64
}

func (s sizer) GetSectorSize() uint { return s.sector }
func (s sizer) GetSize() uint64     { return s.size }

func TestLastLBA(t *testing.T) {
	lba, ok := gptutil.LastLBA(sizer{512, 1 << 20})
	require.True(t, ok)
	assert.EqualValues(t, 2047, lba)

	_, ok = gptutil.LastLBA(sizer{4096, 512})
	assert.False(t, ok)

	_, ok = gptutil.LastLBA(sizer{0, 512})
	assert.False(t, ok)
}

func TestName(t *testing.T) {
	encoded, err := gptutil.EncodeName("EFI System Partition")
	require.NoError(t, err)

	assert.Equal(t, byte('E'), encoded[0])
	assert.Equal(t, byte(0), encoded[1])

	decoded, err := gptutil.DecodeName(encoded[:])
	require.NoError(t, err)
	assert.Equal(t, "EFI System Partition", decoded)
}
