// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package topology probes the I/O characteristics of a device.
package topology

import (
	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
)

// IOCtl reads the topology of a block device via the kernel.
type IOCtl struct{}

// Name implements detector.Detector.
func (p *IOCtl) Name() string {
	return "ioctl-geometry"
}

// Usage implements detector.Detector.
func (p *IOCtl) Usage() blkid.Usage {
	return blkid.UsageUnknown
}

// Magic implements detector.Detector.
func (p *IOCtl) Magic() []*detector.Magic {
	return nil
}

// Probe implements detector.Detector.
func (p *IOCtl) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	dev := r.Device()
	if dev == nil {
		return nil, nil //nolint:nilnil
	}

	logical := uint64(dev.GetSectorSize())

	physical, err := dev.GetPhysicalSectorSize()
	if err != nil {
		// not a block device
		return nil, nil //nolint:nilnil,nilerr
	}

	top := &detector.Topology{
		LogicalSectorSize:  logical,
		PhysicalSectorSize: uint64(physical),
		DAX:                dev.IsDAX(),
	}

	if v, err := dev.GetMinimumIOSize(); err == nil {
		top.MinimumIOSize = uint64(v)
	}

	if v, err := dev.GetOptimalIOSize(); err == nil {
		top.OptimalIOSize = uint64(v)
	}

	if v, err := dev.GetAlignmentOffset(); err == nil {
		top.AlignmentOffset = v
	}

	return &detector.Result{Topology: fill(top, logical)}, nil
}

// Default reports the sector size of the region for anything the kernel can't describe, e.g. image files.
type Default struct{}

// Name implements detector.Detector.
func (p *Default) Name() string {
	return "default"
}

// Usage implements detector.Detector.
func (p *Default) Usage() blkid.Usage {
	return blkid.UsageUnknown
}

// Magic implements detector.Detector.
func (p *Default) Magic() []*detector.Magic {
	return nil
}

// Probe implements detector.Detector.
func (p *Default) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	sectorSize := uint64(r.GetSectorSize())

	return &detector.Result{Topology: fill(&detector.Topology{}, sectorSize)}, nil
}

// fill replaces the unset values with the logical sector size.
func fill(top *detector.Topology, sectorSize uint64) *detector.Topology {
	if top.LogicalSectorSize == 0 {
		top.LogicalSectorSize = sectorSize
	}

	if top.PhysicalSectorSize == 0 {
		top.PhysicalSectorSize = top.LogicalSectorSize
	}

	if top.MinimumIOSize == 0 {
		top.MinimumIOSize = top.PhysicalSectorSize
	}

	return top
}
