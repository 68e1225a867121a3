// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package probe implements the scanning of devices for superblocks, partition tables and topology.
//
// A Probe runs three chains of detectors (superblocks, partitions, topology) over a region of a
// device. Chains are resumable: RunScan advances one detector match at a time, Backtrack steps back.
package probe

import (
	"errors"
	"io"
	"os"
	"slices"

	"github.com/siderolabs/gen/xslices"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/block"
	"github.com/siderolabs/go-blkid/detector"
)

// Probe scans a device or an image file.
//
// A Probe is not safe for concurrent use.
type Probe struct {
	logger    *zap.Logger
	cfgLogger *zap.Logger

	f         *os.File
	ownedFile bool
	closed    bool

	// dev is nil for image files
	dev       *block.Device
	devNo     uint64
	wholeDisk bool
	noScan    bool

	readOnly    bool
	skipLocking bool

	offset, size uint64
	sectorSize   uint

	bufs *buffers

	chains [3]*chain
	// current is the index of the chain being scanned, -1 before the first one
	current int

	fsProps  FsProperty
	partOpts PartitionScanningOption
	hints    map[string]uint64

	table    *detector.PartitionTable
	topology *detector.Topology
	last     *match

	// entryLookup finds the PART_ENTRY_* properties of the device in its whole disk
	entryLookup func(*chain) ([]blkid.Tag, error)
}

// Close releases the file if it was opened by the probe.
//
// Only the first call has an effect.
func (p *Probe) Close() error {
	if p.closed {
		return nil
	}

	p.closed = true

	if !p.ownedFile {
		return nil
	}

	return p.f.Close()
}

// EnableSuperblocks toggles the superblocks chain.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) EnableSuperblocks(enable bool) {
	p.mutate(detector.CategorySuperblocks).enable(enable)
}

// EnablePartitions toggles the partitions chain.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) EnablePartitions(enable bool) {
	p.mutate(detector.CategoryPartitions).enable(enable)
}

// EnableTopology toggles the topology chain.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) EnableTopology(enable bool) {
	p.mutate(detector.CategoryTopology).enable(enable)
}

// ScanSuperblocksForFileSystems replaces the superblocks filter with a list of file systems.
//
// Resets the scan position of the chain and restarts RunScan from the first chain,
// so it should not be called in the middle of a RunScan loop.
func (p *Probe) ScanSuperblocksForFileSystems(filter Filter, fileSystems []blkid.FileSystem) {
	p.mutate(detector.CategorySuperblocks).filterNames(filter, xslices.Map(fileSystems, blkid.FileSystem.String))
}

// ScanSuperblocksWithUsageFlags replaces the superblocks filter with a list of usages.
//
// Resets the scan position of the chain and restarts RunScan from the first chain,
// so it should not be called in the middle of a RunScan loop.
func (p *Probe) ScanSuperblocksWithUsageFlags(filter Filter, usages []blkid.Usage) {
	var mask blkid.Usage

	for _, u := range usages {
		mask |= u
	}

	p.mutate(detector.CategorySuperblocks).filterUsage(filter, mask)
}

// InvertSuperblocksFilter inverts the superblocks filter.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) InvertSuperblocksFilter() {
	p.mutate(detector.CategorySuperblocks).invertFilter()
}

// ResetSuperblocksFilter removes the superblocks filter.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) ResetSuperblocksFilter() {
	p.mutate(detector.CategorySuperblocks).resetFilter()
}

// ScanPartitionsForPartitionTables replaces the partitions filter with a list of table types.
//
// Resets the scan position of the chain and restarts RunScan from the first chain,
// so it should not be called in the middle of a RunScan loop.
func (p *Probe) ScanPartitionsForPartitionTables(filter Filter, types []blkid.PartitionTableType) {
	p.mutate(detector.CategoryPartitions).filterNames(filter, xslices.Map(types, blkid.PartitionTableType.String))
}

// InvertPartitionsFilter inverts the partitions filter.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) InvertPartitionsFilter() {
	p.mutate(detector.CategoryPartitions).invertFilter()
}

// ResetPartitionsFilter removes the partitions filter.
//
// Resets the scan position of the chain and restarts RunScan from the first chain.
func (p *Probe) ResetPartitionsFilter() {
	p.mutate(detector.CategoryPartitions).resetFilter()
}

func (p *Probe) mutate(category detector.Category) *chain {
	p.current = -1

	return p.chains[category]
}

// CollectFsProperties sets the properties reported for superblocks.
func (p *Probe) CollectFsProperties(props FsProperty) {
	p.fsProps = props
}

// SetPartitionsScanningOptions sets the partitions chain options.
func (p *Probe) SetPartitionsScanningOptions(opts PartitionScanningOption) {
	p.partOpts = opts
}

// SetHint sets an I/O hint for the detectors, replacing a previous value.
func (p *Probe) SetHint(hint IoHint) {
	p.hints[hint.Name] = hint.Value
}

// ResetHints removes all hints.
func (p *Probe) ResetHints() {
	clear(p.hints)
}

// Properties returns the properties collected by the last matches, in chain order.
func (p *Probe) Properties() []blkid.Tag {
	var out []blkid.Tag

	for _, c := range p.chains {
		out = append(out, c.values...)
	}

	return out
}

// LookupProperty returns the value of a collected property.
func (p *Probe) LookupProperty(name blkid.TagName) (blkid.Tag, bool) {
	return blkid.FindTag(p.Properties(), name)
}

// PartitionTable returns the partition table found by the partitions chain.
func (p *Probe) PartitionTable() (*detector.PartitionTable, error) {
	if p.table == nil {
		return nil, ErrNoPartitionTable
	}

	table := *p.table
	table.Partitions = slices.Clone(p.table.Partitions)

	return &table, nil
}

// Partitions returns the entries of the partition table, nil if none was found.
func (p *Probe) Partitions() []detector.Partition {
	if p.table == nil {
		return nil
	}

	return slices.Clone(p.table.Partitions)
}

// PartitionByNumber returns the partition with the given 1-based number.
func (p *Probe) PartitionByNumber(number uint) (detector.Partition, bool) {
	if p.table == nil {
		return detector.Partition{}, false
	}

	for _, part := range p.table.Partitions {
		if part.Number == number {
			return part, true
		}
	}

	return detector.Partition{}, false
}

// PartitionFromDeviceNumber returns the entry of the partition table matching a partition device.
func (p *Probe) PartitionFromDeviceNumber(devNo uint64) (detector.Partition, error) {
	if p.table == nil {
		return detector.Partition{}, ErrNoPartitionTable
	}

	number, err := block.PartitionNumberFromNumber(devNo)
	if err != nil {
		return detector.Partition{}, err
	}

	part, ok := p.PartitionByNumber(number)
	if !ok {
		return detector.Partition{}, errors.New("partition not found in the partition table")
	}

	return part, nil
}

// Topology returns the topology found by the topology chain.
func (p *Probe) Topology() (detector.Topology, error) {
	if p.topology == nil {
		return detector.Topology{}, ErrNoTopology
	}

	return *p.topology, nil
}

// Size returns the size of the scanned region.
func (p *Probe) Size() uint64 {
	return p.size
}

// Offset returns the start of the scanned region.
func (p *Probe) Offset() uint64 {
	return p.offset
}

// SectorSize returns the logical sector size.
func (p *Probe) SectorSize() uint {
	return p.sectorSize
}

// DeviceNumber returns the device number, 0 for image files.
func (p *Probe) DeviceNumber() uint64 {
	return p.devNo
}

// IsWholeDisk returns true if the probe scans a whole disk block device.
func (p *Probe) IsWholeDisk() bool {
	return p.wholeDisk
}

// IsReadOnly returns true unless the probe was created with AllowWrites.
func (p *Probe) IsReadOnly() bool {
	return p.readOnly
}

// reader exposes the scanned region to detectors.
type reader struct {
	p *Probe
}

func (r reader) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}

	if uint64(off) >= r.p.size {
		return 0, io.EOF
	}

	length := min(uint64(len(buf)), r.p.size-uint64(off))

	data, err := r.p.bufs.read(r.p.offset+uint64(off), int(length))
	n := copy(buf, data)

	if err != nil {
		return n, err
	}

	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

func (r reader) GetSectorSize() uint { return r.p.sectorSize }

func (r reader) GetSize() uint64 { return r.p.size }

func (r reader) Device() *block.Device { return r.p.dev }

func (r reader) Hint(name string) (uint64, bool) {
	v, ok := r.p.hints[name]

	return v, ok
}

func (r reader) ForceGPT() bool { return r.p.partOpts&PartitionsForceGPT != 0 }
