// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package detector defines the contract between the scan orchestrator and per-format detectors.
package detector

import (
	"io"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/block"
)

// Category of a detector.
type Category int

// Detector categories, in scanning order.
const (
	CategorySuperblocks Category = iota
	CategoryPartitions
	CategoryTopology
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case CategorySuperblocks:
		return "superblocks"
	case CategoryPartitions:
		return "partitions"
	case CategoryTopology:
		return "topology"
	default:
		return "unknown"
	}
}

// Reader gives a detector access to the scanned region.
//
// Offsets passed to ReadAt are relative to the start of the region.
type Reader interface {
	io.ReaderAt

	// GetSectorSize returns the logical sector size.
	GetSectorSize() uint
	// GetSize returns the size of the region.
	GetSize() uint64
	// Device returns the underlying block device, nil for image files.
	Device() *block.Device
	// Hint returns the value of a named I/O hint.
	Hint(name string) (uint64, bool)
}

// Options is optionally implemented by a Reader to pass partition scanning options.
type Options interface {
	// ForceGPT makes GPT detection ignore a missing protective MBR.
	ForceGPT() bool
}

// Detector inspects a region and reports the properties it recognizes.
type Detector interface {
	// Name is the stable identifier used by filters, e.g. "ext4" or "gpt".
	Name() string
	// Usage classifies the detected content.
	Usage() blkid.Usage
	// Magic returns the magic values to look for. Detectors without magic values are always probed.
	Magic() []*Magic
	// Probe runs the further inspection.
	//
	// The magic value which matched is passed in, nil if the detector has no magic.
	// A nil result means no match.
	Probe(r Reader, m *Magic) (*Result, error)
}

// CodeError is implemented by detector errors which carry a raw status code.
//
// The orchestrator reports them as exceptions rather than plain errors.
type CodeError interface {
	error
	Code() int
}
