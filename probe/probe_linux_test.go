// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build linux

package probe_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/siderolabs/go-cmd/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/go-blkid/block"
	"github.com/siderolabs/go-blkid/internal/testutil"
	"github.com/siderolabs/go-blkid/probe"
)

func mkfs(t *testing.T, tool string, args ...string) {
	t.Helper()

	if _, err := exec.LookPath(tool); err != nil {
		t.Skipf("%s is not available", tool)
	}

	out, err := cmd.Run(tool, args...)
	require.NoError(t, err, out)
}

func TestProbeFilesystems(t *testing.T) {
	for _, test := range []struct {
		name  string
		setup func(t *testing.T, path string)

		expected map[string]string
	}{
		{
			name: "ext4",
			setup: func(t *testing.T, path string) {
				mkfs(t, "mkfs.ext4", "-L", "extlabel", "-U", "98d3a4d2-1b9e-4bcc-9a8c-7b6d2c1a9e2f", path)
			},
			expected: map[string]string{
				"TYPE":  "ext4",
				"LABEL": "extlabel",
				"UUID":  "98d3a4d2-1b9e-4bcc-9a8c-7b6d2c1a9e2f",
			},
		},
		{
			name: "vfat",
			setup: func(t *testing.T, path string) {
				mkfs(t, "mkfs.vfat", "-F", "32", "-n", "FATLABEL", "-i", "12345678", path)
			},
			expected: map[string]string{
				"TYPE":  "vfat",
				"LABEL": "FATLABEL",
				"UUID":  "1234-5678",
			},
		},
		{
			name: "xfs",
			setup: func(t *testing.T, path string) {
				mkfs(t, "mkfs.xfs", "--unsupported", "-L", "xfslabel", "-m", "uuid=4bd1e7a4-4c4b-4f5e-9f5e-0f6d7c8b9a0e", path)
			},
			expected: map[string]string{
				"TYPE":  "xfs",
				"LABEL": "xfslabel",
				"UUID":  "4bd1e7a4-4c4b-4f5e-9f5e-0f6d7c8b9a0e",
			},
		},
		{
			name: "swap",
			setup: func(t *testing.T, path string) {
				mkfs(t, "mkswap", "-L", "swaplabel", "-U", "0b0e7d59-3f0c-4c6c-a1f5-2a5c2e3d4f60", path)
			},
			expected: map[string]string{
				"TYPE":  "swap",
				"LABEL": "swaplabel",
				"UUID":  "0b0e7d59-3f0c-4c6c-a1f5-2a5c2e3d4f60",
			},
		},
		{
			name: "luks2",
			setup: func(t *testing.T, path string) {
				mkfs(t, "cryptsetup", "luksFormat", "--batch-mode", "--type", "luks2", "--pbkdf", "pbkdf2", "--pbkdf-force-iterations", "1000",
					"--label", "cryptlabel", "--uuid", "5b1e2c3d-4f5a-4b6c-8d7e-9f0a1b2c3d4e",
					"--key-file", "/dev/urandom", "--keyfile-size", "32", path)
			},
			expected: map[string]string{
				"TYPE":  "crypto_LUKS",
				"LABEL": "cryptlabel",
				"UUID":  "5b1e2c3d-4f5a-4b6c-8d7e-9f0a1b2c3d4e",
			},
		},
	} {
		for _, useLoopDevice := range []bool{false, true} {
			t.Run(fmt.Sprintf("loop=%v", useLoopDevice), func(t *testing.T) {
				t.Run(test.name, func(t *testing.T) {
					if useLoopDevice && os.Geteuid() != 0 {
						t.Skip("test requires root privileges")
					}

					rawImage := filepath.Join(t.TempDir(), "image.raw")

					f, err := os.Create(rawImage)
					require.NoError(t, err)

					require.NoError(t, f.Truncate(512*MiB))
					require.NoError(t, f.Close())

					probePath := rawImage

					if useLoopDevice {
						loDev := testutil.AttachLoop(t, rawImage, false)

						probePath = loDev.Path()
					}

					test.setup(t, probePath)

					p, err := probe.New(probe.Config{
						Path:         probePath,
						ScanTopology: true,
						Logger:       zaptest.NewLogger(t),
					})
					require.NoError(t, err)

					t.Cleanup(func() { assert.NoError(t, p.Close()) })

					res, err := p.FindDeviceProperties()
					require.NoError(t, err)
					assert.Equal(t, probe.FoundProperties, res)

					props := map[string]string{}

					for _, tag := range p.Properties() {
						props[tag.Name().String()] = tag.ValueString()
					}

					for name, value := range test.expected {
						assert.Equal(t, value, props[name], name)
					}

					assert.Equal(t, "512", props["LOGICAL_SECTOR_SIZE"])
					assert.EqualValues(t, 512*MiB, p.Size())

					if useLoopDevice {
						assert.True(t, p.IsWholeDisk())
						assert.NotZero(t, p.DeviceNumber())
					} else {
						assert.Zero(t, p.DeviceNumber())
					}
				})
			})
		}
	}
}

func TestProbeLocked(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("test requires root privileges")
	}

	rawImage := filepath.Join(t.TempDir(), "image.raw")

	require.NoError(t, os.WriteFile(rawImage, make([]byte, 16*MiB), 0o600))

	loDev := testutil.AttachLoop(t, rawImage, false)

	blk, err := block.NewFromPath(loDev.Path(), block.OpenForWrite())
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, blk.Close()) })

	require.NoError(t, blk.Lock(true))

	p, err := probe.New(probe.Config{Path: loDev.Path(), Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, p.Close()) })

	res, err := p.RunScan()
	require.ErrorIs(t, err, probe.ErrFailedLock)
	assert.Equal(t, probe.ScanError, res)

	require.NoError(t, blk.Unlock())

	res, err = p.RunScan()
	require.NoError(t, err)
	assert.Equal(t, probe.NoProperties, res)

	p2, err := probe.New(probe.Config{Path: loDev.Path(), SkipLocking: true, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, p2.Close()) })

	require.NoError(t, blk.Lock(true))

	res, err = p2.RunScan()
	require.NoError(t, err)
	assert.Equal(t, probe.NoProperties, res)
}
