// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"github.com/siderolabs/gen/xslices"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/registry"
)

// chain is the resumable scan state of one detector category.
type chain struct {
	category  detector.Category
	detectors registry.Chain

	enabled bool

	// filtered[i] is true if the detector at position i is skipped
	filtered []bool

	// cursor is the position of the last detector tried, -1 before the first one
	cursor int

	// values collected by the last match
	values []blkid.Tag
}

func newChain(category detector.Category, detectors registry.Chain, enabled bool) *chain {
	return &chain{
		category:  category,
		detectors: detectors,
		enabled:   enabled,
		filtered:  make([]bool, len(detectors)),
		cursor:    -1,
	}
}

func (c *chain) rewind() {
	c.cursor = -1
}

func (c *chain) exhausted() bool {
	return c.cursor+1 >= len(c.detectors)
}

// filterNames replaces the filter with one based on detector names.
func (c *chain) filterNames(filter Filter, names []string) {
	set := xslices.ToSet(names)

	c.filterBy(filter, func(d detector.Detector) bool {
		_, ok := set[d.Name()]

		return ok
	})
}

// filterUsage replaces the filter with one based on detector usage.
func (c *chain) filterUsage(filter Filter, usage blkid.Usage) {
	c.filterBy(filter, func(d detector.Detector) bool {
		return d.Usage()&usage != 0
	})
}

func (c *chain) filterBy(filter Filter, listed func(detector.Detector) bool) {
	for i, d := range c.detectors {
		switch filter {
		case FilterIn:
			c.filtered[i] = !listed(d)
		case FilterOut:
			c.filtered[i] = listed(d)
		}
	}

	c.rewind()
}

func (c *chain) invertFilter() {
	for i := range c.filtered {
		c.filtered[i] = !c.filtered[i]
	}

	c.rewind()
}

func (c *chain) resetFilter() {
	clear(c.filtered)

	c.rewind()
}

func (c *chain) enable(enabled bool) {
	c.enabled = enabled

	c.rewind()
}
