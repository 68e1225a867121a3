// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package detector

import (
	"bytes"
	"strconv"

	"github.com/siderolabs/go-blkid/blkid"
)

// Result of a successful probe.
type Result struct {
	// Properties in the order they were found.
	Properties []blkid.Tag

	// Table is set by partition table detectors.
	Table *PartitionTable

	// Topology is set by topology detectors.
	Topology *Topology

	// Magic is set by detectors which locate their signature themselves (e.g. GPT).
	Magic *Magic
}

// Set appends a property.
func (r *Result) Set(name blkid.TagName, value []byte) {
	r.Properties = append(r.Properties, blkid.NewTag(name, value))
}

// SetString appends a string property.
func (r *Result) SetString(name blkid.TagName, value string) {
	r.Properties = append(r.Properties, blkid.NewTagString(name, value))
}

// SetUint appends a decimal property.
func (r *Result) SetUint(name blkid.TagName, value uint64) {
	r.SetString(name, strconv.FormatUint(value, 10))
}

// SetLabel records LABEL_RAW as found on disk and LABEL as the printable form of it.
//
// Empty labels (after trimming NUL padding) are not recorded.
func (r *Result) SetLabel(raw []byte) {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}

	label := bytes.TrimRight(raw, " ")
	if len(label) == 0 {
		return
	}

	r.Set(blkid.TagLabelRaw, raw)
	r.SetString(blkid.TagLabel, blkid.SafeString(label))
}

// SetLabelString records a label which was already decoded.
func (r *Result) SetLabelString(label string) {
	if label == "" {
		return
	}

	r.SetString(blkid.TagLabelRaw, label)
	r.SetString(blkid.TagLabel, blkid.SafeString([]byte(label)))
}

// SetUUID records UUID and UUID_RAW.
//
// All-zero identifiers are treated as unset.
func (r *Result) SetUUID(formatted string, raw []byte) {
	if formatted == "" || isZero(raw) {
		return
	}

	r.Set(blkid.TagUUIDRaw, raw)
	r.SetString(blkid.TagUUID, formatted)
}

// Lookup returns the first property with the given name.
func (r *Result) Lookup(name blkid.TagName) (blkid.Tag, bool) {
	return blkid.FindTag(r.Properties, name)
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return len(b) > 0
}

// PartitionTable is a partition table found by a partitions detector.
type PartitionTable struct {
	Type blkid.PartitionTableType

	// ID is the disk identifier (GPT disk GUID, DOS disk signature).
	ID string

	// Offset of the table from the start of the region, in bytes.
	Offset uint64

	Partitions []Partition
}

// Partition is an entry of a partition table.
type Partition struct {
	// Type of the partition: an MBR code or a GPT type GUID.
	Type blkid.PartitionType

	// UUID of the partition (GPT) or the derived "<disk id>-<number>" form (DOS).
	UUID string
	// Name of the partition, GPT only.
	Name string

	// Number is the 1-based partition number.
	Number uint

	// Offset and Size in bytes.
	Offset uint64
	Size   uint64

	Flags uint64
}

// Topology describes the I/O characteristics of a device.
type Topology struct {
	AlignmentOffset    uint64
	MinimumIOSize      uint64
	OptimalIOSize      uint64
	LogicalSectorSize  uint64
	PhysicalSectorSize uint64
	DAX                bool
}
