// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import (
	"strings"

	"github.com/google/uuid"
)

// Well-known GPT partition type GUIDs.
var (
	GPTTypeEFISystem      = uuid.MustParse("c12a7328-f81f-11d2-ba4b-00a0c93ec93b")
	GPTTypeBIOSBoot       = uuid.MustParse("21686148-6449-6e6f-744e-656564454649")
	GPTTypeLinuxFS        = uuid.MustParse("0fc63daf-8483-4772-8e79-3d69d8477de4")
	GPTTypeLinuxSwap      = uuid.MustParse("0657fd6d-a4ab-43c4-84e5-0933c84b4f4f")
	GPTTypeLinuxLVM       = uuid.MustParse("e6d6d379-f507-44c2-a23c-238f2a3df928")
	GPTTypeLinuxRAID      = uuid.MustParse("a19d880f-05fc-4d3b-a006-743f0f84911e")
	GPTTypeMicrosoftBasic = uuid.MustParse("ebd0a0a2-b9e5-4433-87c0-68b6b72699c7")
)

var gptTypeNames = map[uuid.UUID]string{
	GPTTypeEFISystem:      "EFI System",
	GPTTypeBIOSBoot:       "BIOS boot",
	GPTTypeLinuxFS:        "Linux filesystem",
	GPTTypeLinuxSwap:      "Linux swap",
	GPTTypeLinuxLVM:       "Linux LVM",
	GPTTypeLinuxRAID:      "Linux RAID",
	GPTTypeMicrosoftBasic: "Microsoft basic data",
}

// PartitionType is the type of a partition entry: an MBR code or a GPT type GUID.
type PartitionType struct {
	guid   uuid.UUID
	osType OSType
	isGUID bool
}

// PartitionTypeFromOSType wraps an MBR partition type code.
func PartitionTypeFromOSType(t OSType) PartitionType {
	return PartitionType{osType: t}
}

// PartitionTypeFromGUID wraps a GPT partition type GUID.
func PartitionTypeFromGUID(g uuid.UUID) PartitionType {
	return PartitionType{guid: g, isGUID: true}
}

// OSType returns the MBR code, if the type is one.
func (t PartitionType) OSType() (OSType, bool) {
	return t.osType, !t.isGUID
}

// GUID returns the GPT type GUID, if the type is one.
func (t PartitionType) GUID() (uuid.UUID, bool) {
	return t.guid, t.isGUID
}

// String returns the value reported in the PART_ENTRY_TYPE tag.
func (t PartitionType) String() string {
	if t.isGUID {
		return t.guid.String()
	}

	return t.osType.String()
}

// Description returns a short human-readable name.
func (t PartitionType) Description() string {
	if !t.isGUID {
		return t.osType.Description()
	}

	if name, ok := gptTypeNames[t.guid]; ok {
		return name
	}

	return "unknown"
}

// ParsePartitionType parses an MBR code ("0x83") or a GPT type GUID.
func ParsePartitionType(s string) (PartitionType, error) {
	if t, err := ParseOSType(s); err == nil {
		return PartitionTypeFromOSType(t), nil
	}

	stripped, err := unquote("PartitionType", s)
	if err != nil {
		return PartitionType{}, err
	}

	g, err := uuid.Parse(strings.TrimSpace(stripped))
	if err != nil {
		return PartitionType{}, parserError("PartitionType", "unsupported partition type: %q", s)
	}

	return PartitionTypeFromGUID(g), nil
}
