// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import (
	"strings"
	"unicode/utf8"
)

// Label is a volume label, kept as it was found on disk.
type Label string

// ParseLabel strips optional quotes.
func ParseLabel(s string) (Label, error) {
	stripped, err := unquote("Label", s)
	if err != nil {
		return "", err
	}

	return Label(stripped), nil
}

// UUID is a volume identifier.
//
// Not every file system uses RFC 4122 identifiers (e.g. vfat serial numbers), so the
// value is kept as a lower-cased string.
type UUID string

// ParseUUID strips optional quotes and lower-cases the identifier.
func ParseUUID(s string) (UUID, error) {
	stripped, err := unquote("UUID", s)
	if err != nil {
		return "", err
	}

	return UUID(strings.ToLower(strings.TrimSpace(stripped))), nil
}

// RawBytes is an uninterpreted property value.
type RawBytes []byte

// ParseRawBytes strips optional quotes and keeps the bytes.
func ParseRawBytes(s string) (RawBytes, error) {
	stripped, err := unquote("RawBytes", s)
	if err != nil {
		return nil, err
	}

	return RawBytes(stripped), nil
}

// String returns the lossy string form, invalid UTF-8 is replaced with U+FFFD.
func (b RawBytes) String() string {
	if utf8.Valid(b) {
		return string(b)
	}

	return strings.ToValidUTF8(string(b), "�")
}

// SafeString returns the printable form, see SafeString.
func (b RawBytes) SafeString() string {
	return SafeString(b)
}
