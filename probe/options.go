// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"strconv"
	"strings"
)

// Filter selects whether a list of items is scanned for or skipped.
type Filter int

// Filter values.
const (
	// FilterIn scans only for the listed items.
	FilterIn Filter = iota
	// FilterOut scans for everything but the listed items.
	FilterOut
)

// String implements fmt.Stringer.
func (f Filter) String() string {
	if f == FilterOut {
		return "Out"
	}

	return "In"
}

// FsProperty selects the properties superblock detectors report.
type FsProperty uint32

// FsProperty flags.
const (
	// FsLabel reports LABEL.
	FsLabel FsProperty = 1 << (iota + 1)
	// FsLabelRaw reports LABEL_RAW.
	FsLabelRaw
	// FsUUID reports UUID, UUID_SUB, LOGUUID and EXT_JOURNAL.
	FsUUID
	// FsUUIDRaw reports UUID_RAW.
	FsUUIDRaw
	// FsType reports TYPE.
	FsType
	// FsSecondType reports SEC_TYPE.
	FsSecondType
	// FsUsage reports USAGE.
	FsUsage
	// FsVersion reports VERSION.
	FsVersion
	// FsMagic reports SBMAGIC and SBMAGIC_OFFSET.
	FsMagic
	// FsBadChecksum accepts superblocks with a bad checksum and reports SBBADCSUM.
	FsBadChecksum
	// FsInfo reports FSSIZE, FSLASTBLOCK, FSBLOCKSIZE and BLOCK_SIZE.
	FsInfo

	// FsDefault is the set used when none is configured.
	FsDefault = FsLabel | FsUUID | FsType | FsSecondType
)

var fsPropertyNames = []struct {
	flag FsProperty
	name string
}{
	{FsLabel, "Label"},
	{FsLabelRaw, "LabelRaw"},
	{FsUUID, "UUID"},
	{FsUUIDRaw, "UUIDRaw"},
	{FsType, "Type"},
	{FsSecondType, "SecondType"},
	{FsUsage, "Usage"},
	{FsVersion, "Version"},
	{FsMagic, "Magic"},
	{FsBadChecksum, "BadChecksum"},
	{FsInfo, "FsInfo"},
}

// String implements fmt.Stringer.
func (p FsProperty) String() string {
	var names []string

	for _, n := range fsPropertyNames {
		if p&n.flag != 0 {
			names = append(names, n.name)
		}
	}

	if len(names) == 0 {
		return "None"
	}

	return strings.Join(names, "|")
}

// PartitionScanningOption tunes the partitions chain.
type PartitionScanningOption uint32

// PartitionScanningOption flags.
const (
	// PartitionsEntryDetails reports the PART_ENTRY_* properties of a partition device.
	PartitionsEntryDetails PartitionScanningOption = 1 << (iota + 1)
	// PartitionsForceGPT detects GPT even without a protective MBR.
	PartitionsForceGPT
	// PartitionsMagic reports PTMAGIC and PTMAGIC_OFFSET.
	PartitionsMagic
)

// String implements fmt.Stringer.
func (o PartitionScanningOption) String() string {
	var names []string

	if o&PartitionsEntryDetails != 0 {
		names = append(names, "EntryDetails")
	}

	if o&PartitionsForceGPT != 0 {
		names = append(names, "ForceGPT")
	}

	if o&PartitionsMagic != 0 {
		names = append(names, "Magic")
	}

	if len(names) == 0 {
		return "None"
	}

	return strings.Join(names, "|")
}

// IoHint is a named value passed down to detectors, e.g. "session_offset" for multi-session CDs.
type IoHint struct {
	Name  string
	Value uint64
}

// NewIoHint creates a hint, the name is trimmed.
func NewIoHint(name string, value uint64) IoHint {
	return IoHint{Name: strings.TrimSpace(name), Value: value}
}

// String implements fmt.Stringer.
func (h IoHint) String() string {
	return h.Name + "=" + strconv.FormatUint(h.Value, 10)
}

// ScanResult is the outcome of a scan-driving operation.
type ScanResult int

// ScanResult values.
const (
	// FoundProperties means a detector matched and its properties were collected.
	FoundProperties ScanResult = iota
	// NoProperties means no (further) detector matched.
	NoProperties
	// ConflictingValues means detectors of the same category disagree, manual intervention is advised.
	ConflictingValues
	// ScanError means a detector or the I/O failed, the error is returned alongside.
	ScanError
	// ScanException means the scan ended in an unexpected state, see ExceptionError.
	ScanException
)

// String implements fmt.Stringer.
func (r ScanResult) String() string {
	switch r {
	case FoundProperties:
		return "FoundProperties"
	case NoProperties:
		return "NoProperties"
	case ConflictingValues:
		return "ConflictingValues"
	case ScanError:
		return "Error"
	case ScanException:
		return "Exception"
	default:
		return "ScanResult(" + strconv.Itoa(int(r)) + ")"
	}
}
