// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package luks probes LUKS encrypted volumes.
package luks

import (
	"encoding/binary"
	"strconv"

	"github.com/google/uuid"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
	"github.com/siderolabs/go-blkid/internal/utils"
)

// Header layout, shared by both versions up to the UUID.
const (
	HeaderSize = 512

	versionOffset = 6
	labelOffset   = 24
	labelSize     = 48
	uuidOffset    = 168
	uuidSize      = 40
)

var luksMagic = detector.Magic{
	Offset: 0,
	Value:  []byte("LUKS\xba\xbe"),
}

// Probe for the encrypted volume.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&luksMagic}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemLUKS.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageCrypto
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	buf, err := ioutil.ReadBlock(r, 0, HeaderSize)
	if err != nil {
		return nil, err
	}

	version := binary.BigEndian.Uint16(buf[versionOffset:])

	res := &detector.Result{}

	switch version {
	case 1:
	case 2:
		res.SetLabel(buf[labelOffset : labelOffset+labelSize])
	default:
		return nil, nil //nolint:nilnil
	}

	res.SetString(blkid.TagVersion, strconv.Itoa(int(version)))

	// LUKS keeps the UUID as text.
	if id, err := uuid.ParseBytes(utils.CString(buf[uuidOffset : uuidOffset+uuidSize])); err == nil {
		res.SetString(blkid.TagUUID, id.String())
	}

	return res, nil
}
