// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

// PartitionTableType identifies a partition table format.
type PartitionTableType int

// Known partition table formats.
const (
	PartitionTableAIX PartitionTableType = iota
	PartitionTableAtari
	PartitionTableBSD
	PartitionTableDOS
	PartitionTableFreeBSD
	PartitionTableGPT
	PartitionTableMac
	PartitionTableMinix
	PartitionTableNetBSD
	PartitionTableOpenBSD
	PartitionTableProtectiveMBR
	PartitionTableSGI
	PartitionTableSolaris
	PartitionTableSun
	PartitionTableUltrix
	PartitionTableUnixware

	partitionTableTypeCount
)

var partitionTableTypeNames = [partitionTableTypeCount]string{
	PartitionTableAIX:           "aix",
	PartitionTableAtari:         "atari",
	PartitionTableBSD:           "bsd",
	PartitionTableDOS:           "dos",
	PartitionTableFreeBSD:       "freebsd",
	PartitionTableGPT:           "gpt",
	PartitionTableMac:           "mac",
	PartitionTableMinix:         "minix",
	PartitionTableNetBSD:        "netbsd",
	PartitionTableOpenBSD:       "openbsd",
	PartitionTableProtectiveMBR: "PMBR",
	PartitionTableSGI:           "sgi",
	PartitionTableSolaris:       "solaris",
	PartitionTableSun:           "sun",
	PartitionTableUltrix:        "ultrix",
	PartitionTableUnixware:      "unixware",
}

// String returns the name reported in the PTTYPE tag.
func (t PartitionTableType) String() string {
	if t < 0 || t >= partitionTableTypeCount {
		return "unknown"
	}

	return partitionTableTypeNames[t]
}

// ParsePartitionTableType parses a partition table name, e.g. "gpt" or "PMBR".
func ParsePartitionTableType(s string) (PartitionTableType, error) {
	stripped, err := unquote("PartitionTableType", s)
	if err != nil {
		return 0, err
	}

	for i, name := range partitionTableTypeNames {
		if name == stripped {
			return PartitionTableType(i), nil
		}
	}

	return 0, parserError("PartitionTableType", "unsupported partition type: %q", s)
}
