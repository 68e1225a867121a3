// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package blkid defines the values reported by block device identification: tags
// (NAME="value" pairs) and the typed values they carry.
//
// Every textual value shares one grammar: surrounding whitespace is ignored and an
// opening quote must be matched by a closing one.
package blkid
