// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package testutil provides in-memory images for detector tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/block"
	"github.com/siderolabs/go-blkid/detector"
)

// Image is an in-memory detector.Reader.
type Image struct {
	*bytes.Reader

	SectorSize uint
	Hints      map[string]uint64
	Force      bool
}

// NewImage wraps buf.
func NewImage(buf []byte) *Image {
	return &Image{
		Reader:     bytes.NewReader(buf),
		SectorSize: block.DefaultBlockSize,
	}
}

// GetSectorSize implements detector.Reader.
func (i *Image) GetSectorSize() uint {
	return i.SectorSize
}

// GetSize implements detector.Reader.
func (i *Image) GetSize() uint64 {
	return uint64(i.Reader.Size())
}

// Device implements detector.Reader.
func (i *Image) Device() *block.Device {
	return nil
}

// Hint implements detector.Reader.
func (i *Image) Hint(name string) (uint64, bool) {
	v, ok := i.Hints[name]

	return v, ok
}

// Put copies data into buf at offset.
func Put(buf []byte, offset int, data []byte) {
	copy(buf[offset:], data)
}

// ForceGPT implements detector.Options.
func (i *Image) ForceGPT() bool {
	return i.Force
}

// Match returns the first magic of d found in buf, nil if there is none.
func Match(d detector.Detector, buf []byte) *detector.Magic {
	for _, m := range d.Magic() {
		if m.End() <= int64(len(buf)) && m.Matches(buf[m.Offset:]) {
			return m
		}
	}

	return nil
}

// Properties flattens the result into a map of tag name to raw value.
func Properties(res *detector.Result) map[string]string {
	if res == nil {
		return nil
	}

	return Tags(res.Properties)
}

// Tags flattens tags into a map of tag name to raw value.
func Tags(tags []blkid.Tag) map[string]string {
	out := make(map[string]string, len(tags))

	for _, tag := range tags {
		out[tag.Name().String()] = string(tag.Value())
	}

	return out
}

// WriteImage stores buf in a temporary file and returns its path.
func WriteImage(t testing.TB, buf []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "image.raw")

	require.NoError(t, os.WriteFile(path, buf, 0o600))

	return path
}
