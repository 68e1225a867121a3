// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
)

// match is a successful detector run.
type match struct {
	category detector.Category
	detector detector.Detector
	magic    *detector.Magic
	result   *detector.Result
	values   []blkid.Tag
}

// RunScan advances the scan by one match.
//
// Chains are scanned in order (superblocks, partitions, topology), each resuming after the last
// detector tried. On a match the properties of the matching chain are replaced and FoundProperties
// is returned. A chain which has nothing left to scan drops its properties, so once NoProperties
// is returned all enabled chains are exhausted and Properties is empty.
func (p *Probe) RunScan() (ScanResult, error) {
	if p.closed {
		return ScanError, ErrClosed
	}

	if p.noScan {
		return NoProperties, nil
	}

	unlock, err := p.lock()
	if err != nil {
		return ScanError, err
	}

	defer unlock()

	if p.current < 0 {
		p.current = 0
	}

	for {
		c := p.chains[p.current]

		if c.enabled {
			if c.exhausted() {
				p.resetChain(c)
			} else if res, err := p.scanChain(c, c.cursor+1); res != NoProperties {
				return res, err
			}
		}

		if p.current == len(p.chains)-1 {
			return NoProperties, nil
		}

		p.current++
	}
}

// Backtrack steps the scan back by one detector, so that the next RunScan
// runs the last tried detector again.
func (p *Probe) Backtrack() error {
	// chains which were not started yet have nothing to step back
	for p.current >= 0 && p.chains[p.current].cursor < 0 {
		p.current--
	}

	if p.current < 0 {
		return ErrNoPreviousPosition
	}

	p.chains[p.current].cursor--

	return nil
}

// FindDeviceProperties runs each enabled chain up to its first match.
//
// The scan position is reset afterwards.
func (p *Probe) FindDeviceProperties() (ScanResult, error) {
	return p.scanAll(func(c *chain) (ScanResult, error) {
		return p.scanChain(c, 0)
	})
}

// FindAllDeviceProperties runs every detector of each enabled chain.
//
// Properties of all matches are merged. If two detectors of a chain report different
// values for the same property, ConflictingValues is returned and the properties of
// the first match are kept.
func (p *Probe) FindAllDeviceProperties() (ScanResult, error) {
	return p.scanAll(p.scanChainFull)
}

func (p *Probe) scanAll(scan func(*chain) (ScanResult, error)) (ScanResult, error) {
	if p.closed {
		return ScanError, ErrClosed
	}

	p.resetResults()

	if p.noScan {
		return NoProperties, nil
	}

	unlock, err := p.lock()
	if err != nil {
		return ScanError, err
	}

	defer unlock()
	defer p.rewind()

	result := NoProperties

	for _, c := range p.chains {
		if !c.enabled {
			continue
		}

		res, err := scan(c)

		switch res { //nolint:exhaustive
		case NoProperties:
		case FoundProperties:
			if result == NoProperties {
				result = FoundProperties
			}
		case ConflictingValues:
			result = ConflictingValues
		default:
			return res, err
		}
	}

	return result, nil
}

// scanChain runs the chain from position start up to the first match.
func (p *Probe) scanChain(c *chain, start int) (ScanResult, error) {
	p.resetChain(c)

	m, res, err := p.next(c, start)
	if err != nil {
		return res, err
	}

	if m != nil {
		p.accept(m)
	}

	// partition entry details belong to the first pass over the chain only
	if start > 0 {
		return res, nil
	}

	return p.entryDetails(c, res)
}

// scanChainFull runs all detectors of the chain, checking the matches agree.
func (p *Probe) scanChainFull(c *chain) (ScanResult, error) {
	p.resetChain(c)

	result := NoProperties

	for start := 0; start < len(c.detectors); start = c.cursor + 1 {
		m, res, err := p.next(c, start)
		if err != nil {
			return res, err
		}

		if m == nil {
			break
		}

		if result == NoProperties {
			p.accept(m)

			result = FoundProperties

			continue
		}

		for _, tag := range m.values {
			existing, ok := blkid.FindTag(c.values, tag.Name())

			switch {
			case !ok:
				c.values = append(c.values, tag)
			case !existing.Equal(tag):
				p.logger.Debug("conflicting property values",
					zap.Stringer("chain", c.category),
					zap.String("detector", m.detector.Name()),
					zap.Stringer("first", existing),
					zap.Stringer("second", tag),
				)

				result = ConflictingValues
			}
		}
	}

	return p.entryDetails(c, result)
}

// next finds the next match in the chain starting at position start.
//
// A nil match is returned with NoProperties when the chain is exhausted.
func (p *Probe) next(c *chain, start int) (*match, ScanResult, error) {
	window, err := p.magicWindow(c)
	if err != nil {
		return nil, ScanError, err
	}

	for i := start; i < len(c.detectors); i++ {
		c.cursor = i

		if c.filtered[i] {
			continue
		}

		d := c.detectors[i]

		magic, ok := matchMagic(d, window)
		if !ok {
			continue
		}

		result, err := d.Probe(reader{p: p}, magic)
		if err != nil {
			var codeErr detector.CodeError

			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				// the detector ran past the end of the region
				p.logger.Debug("detector hit end of region", zap.String("detector", d.Name()), zap.Error(err))

				continue
			case errors.As(err, &codeErr):
				return nil, ScanException, &ExceptionError{Code: codeErr.Code(), Err: fmt.Errorf("%s: %w", d.Name(), err)}
			default:
				return nil, ScanError, fmt.Errorf("%s: %w", d.Name(), err)
			}
		}

		if result == nil {
			continue
		}

		if result.Magic != nil {
			magic = result.Magic
		}

		m := &match{
			category: c.category,
			detector: d,
			magic:    magic,
			result:   result,
		}

		if !p.collect(m) {
			continue
		}

		p.logger.Debug("detector matched", zap.Stringer("chain", c.category), zap.String("detector", d.Name()))

		return m, FoundProperties, nil
	}

	return nil, NoProperties, nil
}

// magicWindow reads the start of the region covering all magic values of the chain.
func (p *Probe) magicWindow(c *chain) ([]byte, error) {
	size := c.detectors.MaxMagicSize()
	if size == 0 {
		return nil, nil
	}

	size = min(max(size, int64(p.sectorSize)), int64(p.size))

	buf, err := p.bufs.read(p.offset, int(size))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading magic buffer: %w", err)
	}

	return buf, nil
}

// matchMagic returns the matching magic value of the detector.
//
// Detectors without magic values always match with a nil magic.
func matchMagic(d detector.Detector, window []byte) (*detector.Magic, bool) {
	magics := d.Magic()
	if len(magics) == 0 {
		return nil, true
	}

	for _, m := range magics {
		if m.End() > int64(len(window)) {
			continue
		}

		if m.Matches(window[m.Offset:]) {
			return m, true
		}
	}

	return nil, false
}

// accept makes the match the current result of its chain.
func (p *Probe) accept(m *match) {
	c := p.chains[m.category]
	c.values = m.values

	switch m.category { //nolint:exhaustive
	case detector.CategoryPartitions:
		p.table = m.result.Table
	case detector.CategoryTopology:
		p.topology = m.result.Topology
	}

	p.last = m
}

func (p *Probe) resetChain(c *chain) {
	c.values = nil

	switch c.category { //nolint:exhaustive
	case detector.CategoryPartitions:
		p.table = nil
	case detector.CategoryTopology:
		p.topology = nil
	}

	if p.last != nil && p.last.category == c.category {
		p.last = nil
	}
}

func (p *Probe) resetResults() {
	for _, c := range p.chains {
		p.resetChain(c)
	}
}

func (p *Probe) rewind() {
	for _, c := range p.chains {
		c.rewind()
	}

	p.current = -1
}
