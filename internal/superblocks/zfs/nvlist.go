// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package zfs

import "encoding/binary"

// nvpair data types which are decoded.
const (
	DataTypeUint64 = 8
	DataTypeString = 9
)

// nvlistHeaderSize covers the XDR encoding header, nvl_version and nvl_nvflag.
const nvlistHeaderSize = 12

// ParseNVList decodes the top-level uint64 and string pairs of an XDR-encoded nvlist.
//
// Nested lists and other types are skipped, a truncated list yields the pairs decoded so far.
func ParseNVList(buf []byte) map[string]any {
	pairs := map[string]any{}

	if len(buf) < nvlistHeaderSize {
		return pairs
	}

	buf = buf[nvlistHeaderSize:]

	for len(buf) >= 8 {
		encodedSize := binary.BigEndian.Uint32(buf)
		if encodedSize == 0 || int(encodedSize) > len(buf) {
			break
		}

		pair := buf[8:encodedSize]
		buf = buf[encodedSize:]

		name, rest, ok := xdrString(pair)
		if !ok || len(rest) < 8 {
			continue
		}

		typ := binary.BigEndian.Uint32(rest)
		rest = rest[8:] // type, nelem

		switch typ {
		case DataTypeUint64:
			if len(rest) >= 8 {
				pairs[name] = binary.BigEndian.Uint64(rest)
			}
		case DataTypeString:
			if value, _, ok := xdrString(rest); ok {
				pairs[name] = value
			}
		}
	}

	return pairs
}

func xdrString(buf []byte) (string, []byte, bool) {
	if len(buf) < 4 {
		return "", nil, false
	}

	n := int(binary.BigEndian.Uint32(buf))
	padded := (n + 3) &^ 3

	if len(buf) < 4+padded {
		return "", nil, false
	}

	return string(buf[4 : 4+n]), buf[4+padded:], true
}
