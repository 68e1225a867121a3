// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bluestore probes Ceph BlueStore block devices.
package bluestore

import (
	"github.com/google/uuid"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

const (
	uuidOffset = 23
	uuidSize   = 36
)

var blueStoreMagic = detector.Magic{
	Offset: 0,
	Value:  []byte("bluestore block device"),
}

// Probe for the bluestore.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&blueStoreMagic}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemBlueStore.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageOther
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	res := &detector.Result{}

	buf, err := ioutil.ReadBlock(r, uuidOffset, uuidSize)
	if err != nil {
		// the label is optional
		return res, nil //nolint:nilerr
	}

	if id, err := uuid.ParseBytes(buf); err == nil {
		res.SetString(blkid.TagUUID, id.String())
	}

	return res, nil
}
