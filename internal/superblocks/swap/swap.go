// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package swap probes Linux swap areas.
package swap

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

const (
	magicV0 = "SWAP-SPACE"
	magicV1 = "SWAPSPACE2"

	headerOffset = 1024
	headerSize   = 1068
)

var magics = func() []*detector.Magic {
	var out []*detector.Magic

	for _, value := range []string{magicV0, magicV1} {
		for _, pageSize := range []int64{0x1000, 0x2000, 0x4000, 0x8000, 0x10000} {
			out = append(out, &detector.Magic{
				Offset: pageSize - int64(len(value)),
				Value:  []byte(value),
			})
		}
	}

	return out
}()

// Probe for the swap area.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return magics
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemSwap.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageOther
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, m *detector.Magic) (*detector.Result, error) {
	pageSize := uint64(m.End())

	res := &detector.Result{}

	if string(m.Value) == magicV0 {
		res.SetString(blkid.TagVersion, "0")
		res.SetUint(blkid.TagFSBlockSize, pageSize)

		return res, nil
	}

	buf, err := ioutil.ReadBlock(r, 0, headerSize)
	if err != nil {
		return nil, err
	}

	hdr := buf[headerOffset:]

	var (
		order  binary.ByteOrder
		endian blkid.Endian
	)

	switch {
	case binary.LittleEndian.Uint32(hdr) == 1:
		order, endian = binary.LittleEndian, blkid.EndianLittle
	case binary.BigEndian.Uint32(hdr) == 1:
		order, endian = binary.BigEndian, blkid.EndianBig
	default:
		return nil, nil //nolint:nilnil
	}

	lastPage := order.Uint32(hdr[4:])
	if lastPage == 0 {
		return nil, nil //nolint:nilnil
	}

	res.SetString(blkid.TagVersion, "1")
	res.SetLabel(hdr[28:44])

	if id, err := uuid.FromBytes(hdr[12:28]); err == nil {
		res.SetUUID(id.String(), hdr[12:28])
	}

	res.SetUint(blkid.TagFSBlockSize, pageSize)
	res.SetUint(blkid.TagFSLastBlock, uint64(lastPage))
	res.SetUint(blkid.TagFSSize, (uint64(lastPage)+1)*pageSize)
	res.SetString(blkid.TagEndianness, endian.String())

	return res, nil
}
