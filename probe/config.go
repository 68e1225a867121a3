// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"fmt"
	"os"

	"github.com/siderolabs/gen/xslices"
	"github.com/siderolabs/go-pointer"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/block"
	"github.com/siderolabs/go-blkid/debug"
	"github.com/siderolabs/go-blkid/detector"
	"github.com/siderolabs/go-blkid/internal/registry"
	"github.com/siderolabs/go-blkid/internal/utils"
)

// FileSystemFilter restricts the superblocks chain to (or away from) a list of file systems.
type FileSystemFilter struct {
	Filter      Filter
	FileSystems []blkid.FileSystem
}

// UsageFilter restricts the superblocks chain by detector usage.
type UsageFilter struct {
	Filter Filter
	Usages []blkid.Usage
}

// PartitionTableFilter restricts the partitions chain to (or away from) a list of table types.
type PartitionTableFilter struct {
	Filter Filter
	Types  []blkid.PartitionTableType
}

// Config of a Probe.
type Config struct {
	// Path of the device or image to scan. Exclusive with File.
	Path string
	// File to scan, stays owned by the caller. Exclusive with Path.
	File *os.File

	// AllowWrites opens Path read-write and enables the Delete* operations.
	//
	// It also makes the probe report SBMAGIC and PTMAGIC properties.
	AllowWrites bool

	// BytesPerSector overrides the logical sector size.
	BytesPerSector uint

	// Offset and Size restrict the scan to a segment of the device, Size 0 scans up to the end.
	Offset uint64
	Size   uint64

	// ScanSuperblocks enables the superblocks chain, nil means enabled.
	ScanSuperblocks   *bool
	SuperblocksFilter *FileSystemFilter
	UsageFilter       *UsageFilter
	// FsProperties selects the reported superblock properties, zero means FsDefault.
	FsProperties FsProperty

	ScanPartitions   bool
	PartitionsFilter *PartitionTableFilter
	PartitionOptions PartitionScanningOption

	ScanTopology bool

	// Detectors overrides the default detector set of a category.
	Detectors map[detector.Category][]detector.Detector

	Hints []IoHint

	// SkipLocking disables the shared lock on the whole disk while scanning.
	SkipLocking bool

	Logger *zap.Logger
}

// New validates the config and creates a Probe.
//
//nolint:gocyclo,cyclop
func New(cfg Config) (*Probe, error) {
	switch {
	case cfg.Path == "" && cfg.File == nil:
		return nil, &BuilderError{Kind: BuilderErrorRequired, Msg: "one of the options `Path` or `File` must be set"}
	case cfg.Path != "" && cfg.File != nil:
		return nil, &BuilderError{Kind: BuilderErrorMutuallyExclusive, Msg: "can not set `Path` and `File` simultaneously"}
	}

	if cfg.BytesPerSector != 0 && (cfg.BytesPerSector < block.DefaultBlockSize || !utils.IsPowerOf2(cfg.BytesPerSector)) {
		return nil, &BuilderError{Kind: BuilderErrorInvalid, Msg: fmt.Sprintf("invalid sector size %d", cfg.BytesPerSector)}
	}

	p := &Probe{
		logger:      debug.Logger(cfg.Logger, debug.LowProbe),
		cfgLogger:   cfg.Logger,
		f:           cfg.File,
		readOnly:    !cfg.AllowWrites,
		skipLocking: cfg.SkipLocking,
		current:     -1,
		hints:       map[string]uint64{},
	}

	p.entryLookup = p.partitionEntry

	if p.f == nil {
		f, err := openFile(cfg.Path, cfg.AllowWrites)
		if err != nil {
			return nil, err
		}

		p.f = f
		p.ownedFile = true
	}

	if err := p.init(cfg); err != nil {
		p.Close() //nolint:errcheck

		return nil, err
	}

	return p, nil
}

//nolint:gocyclo,cyclop
func (p *Probe) init(cfg Config) error {
	adviseRandom(p.f)

	st, err := p.f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}

	var devSize uint64

	switch {
	case block.IsBlockDevice(p.f):
		p.dev = block.NewFromFile(p.f)

		if p.devNo, err = p.dev.GetDevNo(); err != nil {
			return fmt.Errorf("failed to get device number: %w", err)
		}

		if devSize, err = p.dev.GetSize(); err != nil {
			return fmt.Errorf("failed to get block device size: %w", err)
		}

		p.sectorSize = p.dev.GetSectorSize()

		if p.wholeDisk, err = p.dev.IsWholeDisk(); err != nil {
			return fmt.Errorf("failed to check if block device is whole disk: %w", err)
		}

		if private, err := p.dev.IsPrivateDeviceMapper(); private && err == nil {
			p.logger.Debug("skipping private device-mapper device")

			p.noScan = true
		}

		if p.wholeDisk && p.dev.IsCD() && p.dev.IsCDNoMedia() {
			p.logger.Debug("skipping CD-ROM device without media")

			p.noScan = true
		}
	case st.Mode().IsRegular():
		devSize = uint64(st.Size())
		p.sectorSize = block.DefaultBlockSize
	default:
		return fmt.Errorf("unsupported file type: %s", st.Mode().Type())
	}

	if cfg.BytesPerSector != 0 {
		p.sectorSize = cfg.BytesPerSector
	}

	if cfg.Offset > devSize {
		return &BuilderError{
			Kind: BuilderErrorInvalid,
			Msg:  fmt.Sprintf("scan segment out of range: offset %d > size %d", cfg.Offset, devSize),
		}
	}

	p.offset, p.size = cfg.Offset, cfg.Size

	if p.size == 0 {
		p.size = devSize - p.offset
	}

	if p.offset+p.size > devSize {
		return &BuilderError{
			Kind: BuilderErrorInvalid,
			Msg:  fmt.Sprintf("scan segment out of range: offset %d + size %d > size %d", p.offset, p.size, devSize),
		}
	}

	if p.bufs, err = newBuffers(p.f); err != nil {
		return err
	}

	for _, category := range []detector.Category{detector.CategorySuperblocks, detector.CategoryPartitions, detector.CategoryTopology} {
		detectors, ok := cfg.Detectors[category]
		if !ok {
			detectors = registry.Default(category)
		}

		p.chains[category] = newChain(category, detectors, false)
	}

	p.EnableSuperblocks(cfg.ScanSuperblocks == nil || pointer.SafeDeref(cfg.ScanSuperblocks))
	p.EnablePartitions(cfg.ScanPartitions)
	p.EnableTopology(cfg.ScanTopology)

	if f := cfg.SuperblocksFilter; f != nil {
		p.ScanSuperblocksForFileSystems(f.Filter, f.FileSystems)
	}

	// a usage filter replaces the file system filter, as both share the chain filter
	if f := cfg.UsageFilter; f != nil {
		p.ScanSuperblocksWithUsageFlags(f.Filter, f.Usages)
	}

	if f := cfg.PartitionsFilter; f != nil {
		p.ScanPartitionsForPartitionTables(f.Filter, f.Types)
	}

	props := cfg.FsProperties
	if props == 0 {
		props = FsDefault
	}

	opts := cfg.PartitionOptions

	if cfg.AllowWrites {
		props |= FsMagic
		opts |= PartitionsMagic
	}

	p.CollectFsProperties(props)
	p.SetPartitionsScanningOptions(opts)

	for _, hint := range cfg.Hints {
		p.SetHint(hint)
	}

	p.logger.Debug("probe initialized",
		zap.String("file", p.f.Name()),
		zap.Uint64("offset", p.offset),
		zap.Uint64("size", p.size),
		zap.Uint("sector_size", p.sectorSize),
		zap.Strings("superblocks", xslices.Map(p.chains[detector.CategorySuperblocks].detectors, detector.Detector.Name)),
	)

	return nil
}
