// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe_test

import (
	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
)

// fakeDetector matches when its magic is found (or always, without magic) and reports fixed tags.
type fakeDetector struct {
	name  string
	usage blkid.Usage
	magic []*detector.Magic
	tags  []blkid.Tag
	err   error

	// noMatch makes the detector return a nil result
	noMatch bool

	calls int
	hints map[string]uint64
}

func (d *fakeDetector) Name() string { return d.name }

func (d *fakeDetector) Usage() blkid.Usage { return d.usage }

func (d *fakeDetector) Magic() []*detector.Magic { return d.magic }

func (d *fakeDetector) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	d.calls++

	if v, ok := r.Hint("session_offset"); ok {
		d.hints = map[string]uint64{"session_offset": v}
	}

	if d.err != nil {
		return nil, d.err
	}

	if d.noMatch {
		return nil, nil //nolint:nilnil
	}

	return &detector.Result{Properties: d.tags}, nil
}

func fake(name string, tags ...blkid.Tag) *fakeDetector {
	return &fakeDetector{name: name, usage: blkid.UsageFileSystem, tags: tags}
}

func miss(name string) *fakeDetector {
	return &fakeDetector{name: name, usage: blkid.UsageFileSystem, noMatch: true}
}

func label(v string) blkid.Tag { return blkid.NewTagString(blkid.TagLabel, v) }

func uuidTag(v string) blkid.Tag { return blkid.NewTagString(blkid.TagUUID, v) }

type codeError struct{}

func (codeError) Error() string { return "corrupted" }

func (codeError) Code() int { return -42 }

func superblocks(detectors ...*fakeDetector) map[detector.Category][]detector.Detector {
	chain := make([]detector.Detector, 0, len(detectors))

	for _, d := range detectors {
		chain = append(chain, d)
	}

	return map[detector.Category][]detector.Detector{detector.CategorySuperblocks: chain}
}
