// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import (
	"strconv"
	"strings"
	"time"
)

// Bool is a boolean property encoded as "0" or "1".
type Bool bool

// String implements fmt.Stringer.
func (b Bool) String() string {
	if b {
		return "1"
	}

	return "0"
}

// ParseBool parses "0" or "1".
func ParseBool(s string) (Bool, error) {
	stripped, err := unquote("Bool", s)
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(stripped) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, parserError("Bool", "invalid boolean value: %q. Expected 0 or 1", s)
	}
}

// UnsignedInt is an unsigned integer property which remembers its width.
type UnsignedInt struct {
	value uint64
	wide  bool
}

// U32 creates a 32-bit UnsignedInt.
func U32(v uint32) UnsignedInt {
	return UnsignedInt{value: uint64(v)}
}

// U64 creates a 64-bit UnsignedInt.
func U64(v uint64) UnsignedInt {
	return UnsignedInt{value: v, wide: true}
}

// Uint64 returns the value.
func (u UnsignedInt) Uint64() uint64 {
	return u.value
}

// Is64 returns true for 64-bit values.
func (u UnsignedInt) Is64() bool {
	return u.wide
}

// String implements fmt.Stringer.
func (u UnsignedInt) String() string {
	return strconv.FormatUint(u.value, 10)
}

// ParseUint32 parses a decimal 32-bit unsigned integer.
func ParseUint32(s string) (UnsignedInt, error) {
	v, err := parseUint("UnsignedInt", s, 32)
	if err != nil {
		return UnsignedInt{}, err
	}

	return U32(uint32(v)), nil
}

// ParseUint64 parses a decimal 64-bit unsigned integer.
func ParseUint64(s string) (UnsignedInt, error) {
	v, err := parseUint("UnsignedInt", s, 64)
	if err != nil {
		return UnsignedInt{}, err
	}

	return U64(v), nil
}

// ParseUnsignedInt parses a decimal value, picking the narrowest width which fits.
func ParseUnsignedInt(s string) (UnsignedInt, error) {
	if u, err := ParseUint32(s); err == nil {
		return u, nil
	}

	return ParseUint64(s)
}

func parseUint(typ, s string, bits int) (uint64, error) {
	stripped, err := unquote(typ, s)
	if err != nil {
		return 0, err
	}

	stripped = strings.TrimSpace(stripped)

	v, err := strconv.ParseUint(stripped, 10, bits)
	if err != nil {
		return 0, parserError(typ, "invalid integer value: %q in %q %v", stripped, s, err)
	}

	return v, nil
}

func parseHex(typ, s string, bits int) (uint64, error) {
	stripped, err := unquote(typ, s)
	if err != nil {
		return 0, err
	}

	digits, ok := strings.CutPrefix(strings.TrimSpace(stripped), "0x")
	if !ok {
		return 0, parserError(typ, "missing '0x' prefix in: %s", s)
	}

	v, err := strconv.ParseUint(digits, 16, bits)
	if err != nil {
		return 0, parserError(typ, "invalid hexadecimal string: %s %v", s, err)
	}

	return v, nil
}

// UnixTimestamp is a number of seconds since the Unix epoch.
type UnixTimestamp uint64

// Time converts the timestamp.
func (t UnixTimestamp) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// String implements fmt.Stringer.
func (t UnixTimestamp) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// ParseUnixTimestamp parses a decimal number of seconds.
func ParseUnixTimestamp(s string) (UnixTimestamp, error) {
	v, err := parseUint("UnixTimestamp", s, 64)
	if err != nil {
		return 0, err
	}

	return UnixTimestamp(v), nil
}

// PartitionBitflags are the attribute bits of a partition entry.
type PartitionBitflags uint64

// String implements fmt.Stringer.
func (f PartitionBitflags) String() string {
	return "0x" + strconv.FormatUint(uint64(f), 16)
}

// ParsePartitionBitflags parses a 0x-prefixed hexadecimal value.
func ParsePartitionBitflags(s string) (PartitionBitflags, error) {
	v, err := parseHex("PartitionBitflags", s, 64)
	if err != nil {
		return 0, err
	}

	return PartitionBitflags(v), nil
}
