// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unquote implements the grammar shared by every textual value.
//
// Leading and trailing whitespace is trimmed. A value starting with a double quote (or
// a single quote) must end with the same quote, which is then removed.
func Unquote(s string) (string, error) {
	return unquote("string", s)
}

func unquote(typ, s string) (string, error) {
	trimmed := strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(trimmed, `"`):
		inner, ok := strings.CutSuffix(trimmed[1:], `"`)
		if !ok {
			return "", parserError(typ, "missing closing double-quote in: %s", s)
		}

		return inner, nil
	case strings.HasPrefix(trimmed, `'`):
		inner, ok := strings.CutSuffix(trimmed[1:], `'`)
		if !ok {
			return "", parserError(typ, "missing closing quote in: %s", s)
		}

		return inner, nil
	default:
		return trimmed, nil
	}
}

// ParseBytes converts b to a string and hands it over to parse.
//
// Input which is not valid UTF-8 is rejected with a ConversionError.
func ParseBytes[T any](b []byte, parse func(string) (T, error)) (T, error) {
	var zero T

	if !utf8.Valid(b) {
		return zero, &ConversionError{
			Type: "string",
			Msg:  "bytes to UTF-8 string slice conversion error",
		}
	}

	v, err := parse(string(b))
	if err != nil {
		return zero, &ConversionError{
			Type: "string",
			Msg:  err.Error(),
			Err:  err,
		}
	}

	return v, nil
}

// QuoteValue renders a raw tag value as a double-quoted string.
//
// Double quotes and backslashes are escaped with a backslash, control characters are
// written as \xNN. UnquoteValue reverses the transformation.
func QuoteValue(value []byte) string {
	var sb strings.Builder

	sb.Grow(len(value) + 2)
	sb.WriteByte('"')

	for _, c := range value {
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c == 0x7f:
			sb.WriteString(`\x`)
			sb.WriteString(strconv.FormatUint(uint64(c)>>4, 16))
			sb.WriteString(strconv.FormatUint(uint64(c)&0xf, 16))
		default:
			sb.WriteByte(c)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

// UnquoteValue parses a value produced by QuoteValue.
//
// The input must start and end with a double quote.
func UnquoteValue(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '"' {
		return nil, parserError("value", "missing opening double-quote in: %s", s)
	}

	out := make([]byte, 0, len(s)-2)

	for i := 1; i < len(s); i++ {
		c := s[i]

		switch c {
		case '"':
			if i != len(s)-1 {
				return nil, parserError("value", "unexpected double-quote at position %d in: %s", i, s)
			}

			return out, nil
		case '\\':
			if i+1 >= len(s)-1 {
				return nil, parserError("value", "dangling escape character in: %s", s)
			}

			if s[i+1] == 'x' && i+3 < len(s) {
				if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					out = append(out, byte(n))
					i += 3

					continue
				}
			}

			out = append(out, s[i+1])
			i++
		default:
			out = append(out, c)
		}
	}

	return nil, parserError("value", "missing closing double-quote in: %s", s)
}
