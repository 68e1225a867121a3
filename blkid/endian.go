// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import "strings"

// Endian is the byte order of an on-disk structure.
type Endian int

// Endian values.
const (
	EndianLittle Endian = iota
	EndianBig
)

// String implements fmt.Stringer.
func (e Endian) String() string {
	if e == EndianBig {
		return "BIG"
	}

	return "LITTLE"
}

// ParseEndian parses "BIG" or "LITTLE".
func ParseEndian(s string) (Endian, error) {
	stripped, err := unquote("Endian", s)
	if err != nil {
		return EndianLittle, err
	}

	switch strings.ToUpper(strings.TrimSpace(stripped)) {
	case "BIG":
		return EndianBig, nil
	case "LITTLE":
		return EndianLittle, nil
	default:
		return EndianLittle, parserError("Endian", "unsupported endianness value: %q", s)
	}
}
