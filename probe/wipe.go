// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/block"
)

// DeletePropertiesFromMemory hides the magic value of the last match from further scans
// and steps the scan back, so that the next RunScan runs the matching detector again.
//
// The device is not modified.
func (p *Probe) DeletePropertiesFromMemory() error {
	off, length, err := p.lastMagicRange()
	if err != nil {
		return err
	}

	p.bufs.hide(p.offset+off, length)
	p.last = nil

	return p.stepBack()
}

// DeletePropertiesFromDevice zeroes the magic value of the last match on the device
// and steps the scan back, so that the next RunScan runs the matching detector again.
//
// The probe should be created with AllowWrites.
func (p *Probe) DeletePropertiesFromDevice() error {
	if p.readOnly {
		return ErrReadOnly
	}

	off, length, err := p.lastMagicRange()
	if err != nil {
		return err
	}

	method, err := block.NewFromFile(p.f).ZeroRange(p.offset+off, length)
	if err != nil {
		return fmt.Errorf("failed to wipe magic at offset %d: %w", p.offset+off, err)
	}

	p.logger.Debug("wiped magic",
		zap.String("detector", p.last.detector.Name()),
		zap.Uint64("offset", p.offset+off),
		zap.Uint64("length", length),
		zap.String("method", method),
	)

	p.bufs.purge()
	p.last = nil

	return p.stepBack()
}

// stepBack is Backtrack for the Delete* operations, which may follow a full scan with no position.
func (p *Probe) stepBack() error {
	if err := p.Backtrack(); err != nil && !errors.Is(err, ErrNoPreviousPosition) {
		return err
	}

	return nil
}

func (p *Probe) lastMagicRange() (uint64, uint64, error) {
	if p.last == nil || p.last.magic == nil {
		return 0, 0, ErrNothingToDelete
	}

	magic := p.last.magic

	if magic.Offset < 0 || uint64(magic.End()) > p.size {
		return 0, 0, fmt.Errorf("magic at offset %d is out of the scanned region", magic.Offset)
	}

	return uint64(magic.Offset), uint64(len(magic.Value)), nil
}

// EmptyBuffers drops all data read from the device along with the hidden ranges.
func (p *Probe) EmptyBuffers() {
	p.bufs.reset()
}

// DeviceSkipBytes makes the range read as zeroes until EmptyBuffers is called.
//
// The offset is relative to the start of the scanned region.
func (p *Probe) DeviceSkipBytes(offset, length uint64) error {
	if offset+length > p.size || offset+length < offset {
		return &BuilderError{
			Kind: BuilderErrorInvalid,
			Msg:  fmt.Sprintf("range out of the scanned region: offset %d + length %d > size %d", offset, length, p.size),
		}
	}

	p.bufs.hide(p.offset+offset, length)

	return nil
}
