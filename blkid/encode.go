// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	encodeAllowed = "#+-.:=@_"
	safeAllowed   = encodeAllowed + "/ $%?,"
)

func isAllowed(c byte, extra string) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || strings.IndexByte(extra, c) >= 0
}

// EncodeString encodes unsafe bytes the way udev does for its /dev/disk/by-* links.
//
// Alphanumerics, "#+-.:=@_" and valid multi-byte UTF-8 sequences are kept, anything else
// (including whitespace and the backslash) is written as \xNN.
func EncodeString(b []byte) string {
	var sb strings.Builder

	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError && size > 1 {
			sb.Write(b[i : i+size])
			i += size

			continue
		}

		c := b[i]

		if c != '\\' && isAllowed(c, encodeAllowed) {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, `\x%02x`, c)
		}

		i++
	}

	return sb.String()
}

// SafeString returns a printable version of b.
//
// Surrounding whitespace is removed, inner whitespace becomes '_', and so does every
// byte which is not part of a valid UTF-8 sequence or not a safe character.
func SafeString(b []byte) string {
	b = trimSpaceBytes(b)

	var sb strings.Builder

	sb.Grow(len(b))

	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])

		switch {
		case r == utf8.RuneError && size <= 1:
			sb.WriteByte('_')
		case size > 1:
			if unicode.IsSpace(r) || !unicode.IsPrint(r) {
				sb.WriteByte('_')
			} else {
				sb.Write(b[i : i+size])
			}
		case unicode.IsSpace(r):
			sb.WriteByte('_')
		case isAllowed(b[i], safeAllowed):
			sb.WriteByte(b[i])
		default:
			sb.WriteByte('_')
		}

		i += max(size, 1)
	}

	return sb.String()
}

func trimSpaceBytes(b []byte) []byte {
	start, end := 0, len(b)

	for start < end && isASCIISpace(b[start]) {
		start++
	}

	for end > start && isASCIISpace(b[end-1]) {
		end--
	}

	return b[start:end]
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}

	return false
}
