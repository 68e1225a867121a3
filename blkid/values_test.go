// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/blkid"
)

func TestParseOSType(t *testing.T) {
	for _, test := range []struct {
		name string

		input string

		expected      blkid.OSType
		expectedError string
	}{
		{
			name:     "linux",
			input:    "0x83",
			expected: blkid.OSTypeLinux,
		},
		{
			name:     "quoted",
			input:    `"0x83"`,
			expected: blkid.OSTypeLinux,
		},
		{
			name:     "empty partition",
			input:    " '0x00' ",
			expected: blkid.OSTypeEmptyPartition,
		},
		{
			name:          "out of range",
			input:         "0xFFFFFF",
			expectedError: `invalid hexadecimal string: 0xFFFFFF strconv.ParseUint: parsing "FFFFFF": value out of range`,
		},
		{
			name:          "missing prefix",
			input:         "83",
			expectedError: "missing '0x' prefix in: 83",
		},
		{
			name:          "not hex",
			input:         "0xzz",
			expectedError: `invalid hexadecimal string: 0xzz strconv.ParseUint: parsing "zz": invalid syntax`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			actual, err := blkid.ParseOSType(test.input)

			if test.expectedError != "" {
				require.EqualError(t, err, test.expectedError)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, actual)
		})
	}

	assert.Equal(t, "0x83", blkid.OSTypeLinux.String())
	assert.Equal(t, "Linux", blkid.OSTypeLinux.Description())
}

func TestParseFileSystem(t *testing.T) {
	for _, fs := range []blkid.FileSystem{
		blkid.FileSystemExt4,
		blkid.FileSystemXFS,
		blkid.FileSystemVFAT,
		blkid.FileSystemSwap,
		blkid.FileSystemLUKS,
		blkid.FileSystemZFS,
	} {
		parsed, err := blkid.ParseFileSystem(fs.String())
		require.NoError(t, err)
		assert.Equal(t, fs, parsed)
	}

	parsed, err := blkid.ParseFileSystem(` "squashfs" `)
	require.NoError(t, err)
	assert.Equal(t, blkid.FileSystemSquashfs, parsed)

	_, err = blkid.ParseFileSystem("ext5")
	assert.EqualError(t, err, `unsupported file system: "ext5"`)
}

func TestParsePartitionTableType(t *testing.T) {
	parsed, err := blkid.ParsePartitionTableType("gpt")
	require.NoError(t, err)
	assert.Equal(t, blkid.PartitionTableGPT, parsed)

	parsed, err = blkid.ParsePartitionTableType(`"PMBR"`)
	require.NoError(t, err)
	assert.Equal(t, blkid.PartitionTableProtectiveMBR, parsed)

	_, err = blkid.ParsePartitionTableType("apm")
	assert.EqualError(t, err, `unsupported partition type: "apm"`)
}

func TestParsePartitionType(t *testing.T) {
	parsed, err := blkid.ParsePartitionType("0x82")
	require.NoError(t, err)

	osType, ok := parsed.OSType()
	require.True(t, ok)
	assert.Equal(t, blkid.OSTypeLinuxSwap, osType)

	parsed, err = blkid.ParsePartitionType(`"C12A7328-F81F-11D2-BA4B-00A0C93EC93B"`)
	require.NoError(t, err)

	guid, ok := parsed.GUID()
	require.True(t, ok)
	assert.Equal(t, blkid.GPTTypeEFISystem, guid)
	assert.Equal(t, "EFI System", parsed.Description())

	assert.Equal(t, blkid.PartitionTypeFromGUID(uuid.MustParse("c12a7328-f81f-11d2-ba4b-00a0c93ec93b")), parsed)

	_, err = blkid.ParsePartitionType("linux")
	assert.EqualError(t, err, `unsupported partition type: "linux"`)
}

func TestParseUsage(t *testing.T) {
	for _, usage := range []blkid.Usage{blkid.UsageFileSystem, blkid.UsageRaid, blkid.UsageCrypto, blkid.UsageOther} {
		parsed, err := blkid.ParseUsage(usage.String())
		require.NoError(t, err)
		assert.Equal(t, usage, parsed)
	}

	_, err := blkid.ParseUsage("swap")
	assert.EqualError(t, err, `unsupported device usage: "swap"`)
}

func TestParseEndian(t *testing.T) {
	parsed, err := blkid.ParseEndian("BIG")
	require.NoError(t, err)
	assert.Equal(t, blkid.EndianBig, parsed)

	_, err = blkid.ParseEndian("middle")
	assert.EqualError(t, err, `unsupported endianness value: "middle"`)
}

func TestParseBool(t *testing.T) {
	b, err := blkid.ParseBool(`"1"`)
	require.NoError(t, err)
	assert.True(t, bool(b))

	b, err = blkid.ParseBool("0")
	require.NoError(t, err)
	assert.False(t, bool(b))

	_, err = blkid.ParseBool("true")
	assert.EqualError(t, err, `invalid boolean value: "true". Expected 0 or 1`)
}

func TestParseUnsignedInt(t *testing.T) {
	u, err := blkid.ParseUnsignedInt("4096")
	require.NoError(t, err)
	assert.False(t, u.Is64())
	assert.EqualValues(t, 4096, u.Uint64())

	u, err = blkid.ParseUnsignedInt("8589934592")
	require.NoError(t, err)
	assert.True(t, u.Is64())
	assert.Equal(t, "8589934592", u.String())

	_, err = blkid.ParseUint32("8589934592")
	assert.Error(t, err)

	_, err = blkid.ParseUnsignedInt("-1")
	assert.ErrorContains(t, err, `invalid integer value: "-1"`)
}

func TestParseUnixTimestamp(t *testing.T) {
	ts, err := blkid.ParseUnixTimestamp("1700000000")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1700000000, 0), ts.Time())
}

func TestParsePartitionBitflags(t *testing.T) {
	flags, err := blkid.ParsePartitionBitflags("0x8000000000000001")
	require.NoError(t, err)
	assert.EqualValues(t, uint64(0x8000000000000001), flags)
	assert.Equal(t, "0x8000000000000001", flags.String())
}

func TestParseIdentifiers(t *testing.T) {
	id, err := blkid.ParseUUID(` "ABCD-1234" `)
	require.NoError(t, err)
	assert.Equal(t, blkid.UUID("abcd-1234"), id)

	label, err := blkid.ParseLabel(`' padded '`)
	require.NoError(t, err)
	assert.Equal(t, blkid.Label(" padded "), label)

	raw, err := blkid.ParseRawBytes(`"raw value"`)
	require.NoError(t, err)
	assert.Equal(t, "raw value", raw.String())
	assert.Equal(t, "raw_value", raw.SafeString())
}
