// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package iso9660 probes ISO9660 filesystems.
package iso9660

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/ioutil"
)

// HintSessionOffset is the hint which moves the volume descriptors to the given multi-session offset.
const HintSessionOffset = "session_offset"

// Volume descriptor layout.
const (
	SuperblockOffset = 0x8000
	SectorSize       = 2048

	vdMax           = 16
	vdEnd           = 0xff
	vdBootRecord    = 0
	vdPrimary       = 1
	vdSupplementary = 2

	descriptorSize = 881
)

var isoMagic = detector.Magic{
	Offset: SuperblockOffset + 1,
	Value:  []byte("CD001"),
}

var jolietEscapes = [][]byte{
	[]byte("%/@"),
	[]byte("%/C"),
	[]byte("%/E"),
}

// Probe for the filesystem.
type Probe struct{}

// Magic returns the magic value for the filesystem.
func (p *Probe) Magic() []*detector.Magic {
	return []*detector.Magic{&isoMagic}
}

// Name returns the name of the filesystem.
func (p *Probe) Name() string {
	return blkid.FileSystemIso9660.String()
}

// Usage implements detector.Detector.
func (p *Probe) Usage() blkid.Usage {
	return blkid.UsageFileSystem
}

// VolumeDescriptor is a single ISO9660 volume descriptor.
type VolumeDescriptor []byte

// Type returns vd_type.
func (vd VolumeDescriptor) Type() byte { return vd[0] }

// SystemID returns system_id.
func (vd VolumeDescriptor) SystemID() []byte { return vd[8:40] }

// VolumeID returns volume_id.
func (vd VolumeDescriptor) VolumeID() []byte { return vd[40:72] }

// SpaceSize returns the volume space size in logical blocks.
func (vd VolumeDescriptor) SpaceSize() uint32 { return binary.LittleEndian.Uint32(vd[80:]) }

// LogicalBlockSize returns the logical block size.
func (vd VolumeDescriptor) LogicalBlockSize() uint16 { return binary.LittleEndian.Uint16(vd[128:]) }

// PublisherID returns publisher_id.
func (vd VolumeDescriptor) PublisherID() []byte { return vd[318:446] }

// ApplicationID returns application_id.
func (vd VolumeDescriptor) ApplicationID() []byte { return vd[574:702] }

// BootSystemID returns boot_system_id of a boot record.
func (vd VolumeDescriptor) BootSystemID() []byte { return vd[7:39] }

// Created returns the creation date.
func (vd VolumeDescriptor) Created() []byte { return vd[813:830] }

// Modified returns the modification date.
func (vd VolumeDescriptor) Modified() []byte { return vd[830:847] }

// IsJoliet returns true for a supplementary descriptor with a UCS-2 escape sequence.
func (vd VolumeDescriptor) IsJoliet() bool {
	for _, esc := range jolietEscapes {
		if bytes.Equal(vd[88:91], esc) {
			return true
		}
	}

	return false
}

// Probe runs the further inspection and returns the result if successful.
func (p *Probe) Probe(r detector.Reader, _ *detector.Magic) (*detector.Result, error) {
	base := int64(SuperblockOffset)

	if off, ok := r.Hint(HintSessionOffset); ok {
		base += int64(off)
	}

	var pvd, joliet, boot VolumeDescriptor

vdLoop:
	for i := range int64(vdMax) {
		buf, err := ioutil.ReadBlock(r, base+SectorSize*i, descriptorSize)
		if err != nil {
			break
		}

		vd := VolumeDescriptor(buf)

		if string(vd[1:6]) != "CD001" {
			break
		}

		switch vd.Type() {
		case vdEnd:
			break vdLoop
		case vdBootRecord:
			if boot == nil {
				boot = vd
			}
		case vdPrimary:
			if pvd == nil {
				pvd = vd
			}
		case vdSupplementary:
			if joliet == nil && vd.IsJoliet() {
				joliet = vd
			}
		}
	}

	if pvd == nil {
		return nil, nil //nolint:nilnil
	}

	res := &detector.Result{}

	if joliet != nil {
		res.SetLabelString(decodeJoliet(joliet.VolumeID()))
		res.SetString(blkid.TagVersion, "Joliet Extension")
	}

	if _, ok := res.Lookup(blkid.TagLabel); !ok {
		res.SetLabel(pvd.VolumeID())
	}

	text := func(name blkid.TagName, primary, supplementary []byte) {
		value := string(bytes.TrimRight(primary, " \x00"))

		if supplementary != nil {
			if decoded := decodeJoliet(supplementary); decoded != "" {
				value = decoded
			}
		}

		if value != "" {
			res.SetString(name, value)
		}
	}

	if joliet != nil {
		text(blkid.TagSystemID, pvd.SystemID(), joliet.SystemID())
		text(blkid.TagPublisherID, pvd.PublisherID(), joliet.PublisherID())
		text(blkid.TagApplicationID, pvd.ApplicationID(), joliet.ApplicationID())
	} else {
		text(blkid.TagSystemID, pvd.SystemID(), nil)
		text(blkid.TagPublisherID, pvd.PublisherID(), nil)
		text(blkid.TagApplicationID, pvd.ApplicationID(), nil)
	}

	if boot != nil {
		text(blkid.TagBootSystemID, boot.BootSystemID(), nil)
	}

	date := pvd.Modified()
	if isEmptyDate(date) {
		date = pvd.Created()
	}

	if !isEmptyDate(date) {
		res.SetString(blkid.TagUUID, fmt.Sprintf("%s-%s-%s-%s-%s-%s-%s",
			date[0:4], date[4:6], date[6:8], date[8:10], date[10:12], date[12:14], date[14:16]))
	}

	blockSize := uint64(pvd.LogicalBlockSize())

	res.SetUint(blkid.TagFSBlockSize, blockSize)
	res.SetUint(blkid.TagBlockSize, blockSize)
	res.SetUint(blkid.TagFSSize, uint64(pvd.SpaceSize())*blockSize)

	return res, nil
}

func decodeJoliet(b []byte) string {
	decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}

	return string(bytes.TrimRight(decoded, " \x00"))
}

func isEmptyDate(date []byte) bool {
	for _, c := range date[:16] {
		if c != '0' && c != 0 {
			return false
		}
	}

	return true
}
