// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

// Version of the library, matching the libblkid release it mirrors.
var (
	Version     = "2.40.1"
	ReleaseDate = "08-May-2024"
)

// LibraryInfo describes the library release.
type LibraryInfo struct {
	Version     string
	ReleaseDate string
	ReleaseCode uint32
}

// LibraryVersion returns the library release information.
func LibraryVersion() LibraryInfo {
	return LibraryInfo{
		Version:     Version,
		ReleaseDate: ReleaseDate,
		ReleaseCode: ParseVersionString(Version),
	}
}

// ParseVersionString converts a dotted version string into a release code ("2.38.1" is 2381).
//
// Dots are skipped, parsing stops at the first character which is not a digit.
func ParseVersionString(s string) uint32 {
	var code uint32

	for i := range len(s) {
		c := s[i]

		if c == '.' {
			continue
		}

		if c < '0' || c > '9' {
			break
		}

		code = code*10 + uint32(c-'0')
	}

	return code
}
