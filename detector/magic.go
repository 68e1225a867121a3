// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package detector

import (
	"bytes"
	"encoding/hex"
)

// Magic is a byte signature at a fixed offset of the scanned region.
type Magic struct {
	// Value to search for.
	Value []byte

	// Offset of the value from the start of the region.
	Offset int64
}

// Matches returns true if buf, read at the magic offset, starts with the magic value.
func (m *Magic) Matches(buf []byte) bool {
	return len(buf) >= len(m.Value) && bytes.Equal(buf[:len(m.Value)], m.Value)
}

// End returns the offset of the first byte after the magic value.
func (m *Magic) End() int64 {
	return m.Offset + int64(len(m.Value))
}

// Hex returns the magic value hex-encoded.
func (m *Magic) Hex() string {
	return hex.EncodeToString(m.Value)
}
