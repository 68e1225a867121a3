// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// Tag is a single property discovered on a device: a name and a raw value.
//
// Tags are immutable, accessors return copies.
type Tag struct {
	name  TagName
	value []byte
}

// NewTag creates a tag.
func NewTag(name TagName, value []byte) Tag {
	return Tag{
		name:  name,
		value: bytes.Clone(value),
	}
}

// NewTagString creates a tag from a string value.
func NewTagString(name TagName, value string) Tag {
	return Tag{
		name:  name,
		value: []byte(value),
	}
}

// Name returns the name of the tag.
func (t Tag) Name() TagName {
	return t.name
}

// Value returns a copy of the raw value.
func (t Tag) Value() []byte {
	return bytes.Clone(t.value)
}

// ValueString returns the value as a string, invalid UTF-8 is replaced with U+FFFD.
func (t Tag) ValueString() string {
	if utf8.Valid(t.value) {
		return string(t.value)
	}

	return strings.ToValidUTF8(string(t.value), "�")
}

// Equal compares tags structurally.
func (t Tag) Equal(other Tag) bool {
	return t.name == other.name && bytes.Equal(t.value, other.value)
}

// Compare orders tags by name, then by value.
func (t Tag) Compare(other Tag) int {
	if c := cmp.Compare(t.name, other.name); c != 0 {
		return c
	}

	return bytes.Compare(t.value, other.value)
}

// String renders the tag as NAME="value".
func (t Tag) String() string {
	return t.name.String() + "=" + QuoteValue(t.value)
}

// ParseTag parses the NAME="value" form produced by Tag.String.
func ParseTag(s string) (Tag, error) {
	trimmed := strings.TrimSpace(s)

	name, value, ok := strings.Cut(trimmed, "=")
	if !ok {
		return Tag{}, parserError("Tag", "missing '=' in: %s", s)
	}

	tagName, err := ParseTagName(name)
	if err != nil {
		return Tag{}, err
	}

	if !strings.HasPrefix(value, `"`) {
		return Tag{}, parserError("Tag", "missing opening double-quote in: %s", s)
	}

	raw, err := UnquoteValue(value)
	if err != nil {
		return Tag{}, parserError("Tag", "invalid tag value in: %s: %v", s, err)
	}

	return Tag{name: tagName, value: raw}, nil
}

// ParseTags parses a whitespace separated list of NAME="value" pairs.
//
// Malformed entries are reported in the returned error, every valid entry is returned
// regardless.
func ParseTags(s string) ([]Tag, error) {
	var (
		tags   []Tag
		result *multierror.Error
	)

	for _, field := range SplitTags(s) {
		tag, err := ParseTag(field)
		if err != nil {
			result = multierror.Append(result, err)

			continue
		}

		tags = append(tags, tag)
	}

	return tags, result.ErrorOrNil()
}

// SplitTags splits a list of NAME="value" pairs on whitespace outside of double-quoted values.
func SplitTags(s string) []string {
	var (
		fields  []string
		start   = -1
		quoted  bool
		escaped bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case !quoted && isASCIISpace(c):
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}

			continue
		}

		if start < 0 {
			start = i
		}
	}

	if start >= 0 {
		fields = append(fields, s[start:])
	}

	return fields
}

// FindTag returns the first tag with the given name.
func FindTag(tags []Tag, name TagName) (Tag, bool) {
	for _, tag := range tags {
		if tag.name == name {
			return tag, true
		}
	}

	return Tag{}, false
}

// GoString implements fmt.GoStringer.
func (t Tag) GoString() string {
	return fmt.Sprintf("blkid.Tag{%s}", t.String())
}
