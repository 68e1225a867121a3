// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import "strings"

// Usage classifies what a superblock is used for.
//
// Values are bit flags so that sets of usages can be filtered on.
type Usage uint

// Usage values.
const (
	UsageUnknown    Usage = 0
	UsageFileSystem Usage = 1 << 1
	UsageRaid       Usage = 1 << 2
	UsageCrypto     Usage = 1 << 3
	UsageOther      Usage = 1 << 4
)

// String implements fmt.Stringer.
func (u Usage) String() string {
	switch u {
	case UsageFileSystem:
		return "filesystem"
	case UsageRaid:
		return "raid"
	case UsageCrypto:
		return "crypto"
	case UsageOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseUsage parses the lower-case name of a usage, e.g. "filesystem".
func ParseUsage(s string) (Usage, error) {
	stripped, err := unquote("Usage", s)
	if err != nil {
		return UsageUnknown, err
	}

	switch strings.ToLower(strings.TrimSpace(stripped)) {
	case "filesystem":
		return UsageFileSystem, nil
	case "raid":
		return UsageRaid, nil
	case "crypto":
		return UsageCrypto, nil
	case "other":
		return UsageOther, nil
	case "unknown":
		return UsageUnknown, nil
	default:
		return UsageUnknown, parserError("Usage", "unsupported device usage: %q", s)
	}
}
