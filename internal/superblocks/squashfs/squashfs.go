// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package squashfs probes Squash filesystems.
package squashfs

import (
	"encoding/binary"
	"fmt"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

// SuperBlockSize is the size of the part of the superblock which is inspected.
const SuperBlockSize = 48

var squashfsMagic1 = detector.Magic{ // big endian
	Offset: 0,
	Value:  []byte("sqsh"),
}

var squashfsMagic2 = detector.Magic{ // little endian
	Offset: 0,
	Value:  []byte("hsqs"),
}

// SuperBlock of squashfs, either endianness.
type SuperBlock struct {
	buf   []byte
	order binary.ByteOrder
}

func readSuperBlock(r detector.Reader) (*SuperBlock, error) {
	buf, err := ioutil.ReadBlock(r, 0, SuperBlockSize)
	if err != nil {
		return nil, err
	}

	var order binary.ByteOrder = binary.LittleEndian

	if string(buf[:4]) == string(squashfsMagic1.Value) {
		order = binary.BigEndian
	}

	return &SuperBlock{buf: buf, order: order}, nil
}

// BlockSize returns block_size (v4).
func (sb *SuperBlock) BlockSize() uint32 { return sb.order.Uint32(sb.buf[12:]) }

// Major returns s_major.
func (sb *SuperBlock) Major() uint16 { return sb.order.Uint16(sb.buf[28:]) }

// Minor returns s_minor.
func (sb *SuperBlock) Minor() uint16 { return sb.order.Uint16(sb.buf[30:]) }

// BytesUsed returns bytes_used (v4).
func (sb *SuperBlock) BytesUsed() uint64 { return sb.order.Uint64(sb.buf[40:]) }

// Version returns the "major.minor" version string.
func (sb *SuperBlock) Version() string {
	return fmt.Sprintf("%d.%d", sb.Major(), sb.Minor())
}

// Probe for squashfs 4.0 and later, which is always little endian.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&squashfsMagic2}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemSquashfs.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageFileSystem
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	sb, err := readSuperBlock(r)
	if err != nil {
		return nil, err
	}

	if sb.Major() < 4 {
		return nil, nil //nolint:nilnil
	}

	res := &detector.Result{}

	res.SetString(blkid.TagVersion, sb.Version())
	res.SetUint(blkid.TagFSBlockSize, uint64(sb.BlockSize()))
	res.SetUint(blkid.TagBlockSize, uint64(sb.BlockSize()))
	res.SetUint(blkid.TagFSSize, sb.BytesUsed())

	return res, nil
}

// Probe3 is the probe for squashfs older than 4.0.
type Probe3 struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe3) Magic() []*detector.Magic {
	return []*detector.Magic{
		&squashfsMagic1,
		&squashfsMagic2,
	}
}

// Name returns the name of the filesystem.
func (p *Probe3) Name() string {
	return blkid.FileSystemSquashfs3.String()
}

// Usage implements detector.Detector.
func (p *Probe3) Usage() blkid.Usage {
	return blkid.UsageFileSystem
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe3) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	sb, err := readSuperBlock(r)
	if err != nil {
		return nil, err
	}

	if sb.Major() > 3 {
		return nil, nil //nolint:nilnil
	}

	endian := blkid.EndianLittle
	if sb.order == binary.BigEndian {
		endian = blkid.EndianBig
	}

	res := &detector.Result{}

	res.SetString(blkid.TagVersion, sb.Version())
	res.SetString(blkid.TagEndianness, endian.String())

	return res, nil
}
