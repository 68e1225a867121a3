// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/siderolabs/gen/xslices"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/probe"
)

// ProbeCmd scans a single device without the cache.
type ProbeCmd struct {
	Device string `arg help:"Device or image file"`

	Offset uint64 `help:"Start of the scanned region in bytes"`
	Size   uint64 `help:"Size of the scanned region in bytes, up to the end of the device by default"`

	Types      []string `short:"t" help:"Only look for these file systems (comma-separated)"`
	Partitions bool     `short:"p" help:"Scan partition tables and list partitions"`
	Topology   bool     `short:"i" help:"Report I/O limits"`
	All        bool     `short:"a" help:"Run every detector, report conflicting results"`
	NoLock     bool     `help:"Do not lock the whole disk while scanning"`
}

func (cmd *ProbeCmd) config() (probe.Config, error) {
	cfg := probe.Config{
		Path:           cmd.Device,
		Offset:         cmd.Offset,
		Size:           cmd.Size,
		FsProperties:   probe.FsDefault | probe.FsUsage | probe.FsVersion | probe.FsInfo,
		ScanPartitions: cmd.Partitions,
		ScanTopology:   cmd.Topology,
		SkipLocking:    cmd.NoLock,
		Logger:         zap.L(),
	}

	if len(cmd.Types) > 0 {
		fileSystems, err := parseFileSystems(cmd.Types)
		if err != nil {
			return probe.Config{}, err
		}

		cfg.SuperblocksFilter = &probe.FileSystemFilter{Filter: probe.FilterIn, FileSystems: fileSystems}
	}

	if cmd.Partitions {
		cfg.PartitionOptions = probe.PartitionsEntryDetails
	}

	return cfg, nil
}

// Run the command.
func (cmd *ProbeCmd) Run(*Globals) error {
	cfg, err := cmd.config()
	if err != nil {
		return err
	}

	p, err := probe.New(cfg)
	if err != nil {
		return err
	}

	defer p.Close() //nolint:errcheck

	scan := p.FindDeviceProperties
	if cmd.All {
		scan = p.FindAllDeviceProperties
	}

	res, err := scan()
	if err != nil {
		return err
	}

	switch res { //nolint:exhaustive
	case probe.NoProperties:
		return fmt.Errorf("%s: nothing found", cmd.Device)
	case probe.ConflictingValues:
		zap.L().Warn("detectors disagree, properties of the first match are reported", zap.String("device", cmd.Device))
	}

	printTags(cmd.Device, p.Properties())

	if cmd.Partitions {
		for _, part := range p.Partitions() {
			fmt.Fprintf(output, "  #%d %s start=%d size=%s type=%s",
				part.Number, nameColor.Sprint("partition"), part.Offset, humanize.IBytes(part.Size), part.Type)

			if part.Name != "" {
				fmt.Fprintf(output, " name=%q", part.Name)
			}

			fmt.Fprintln(output)
		}
	}

	zap.L().Debug("probed device",
		zap.String("device", cmd.Device),
		zap.String("size", humanize.IBytes(p.Size())),
		zap.Uint("sector_size", p.SectorSize()),
	)

	return nil
}

// WipeCmd lists signatures and erases them with --yes, the way wipefs does.
type WipeCmd struct {
	Device string `arg help:"Device or image file"`

	Types []string `short:"t" help:"Only erase these file systems (comma-separated)"`
	Yes   bool     `help:"Erase the signatures, only list them otherwise"`
}

// Run the command.
func (cmd *WipeCmd) Run(*Globals) error {
	cfg := probe.Config{
		Path:           cmd.Device,
		AllowWrites:    cmd.Yes,
		FsProperties:   probe.FsDefault | probe.FsMagic,
		ScanPartitions: true,
		// also GPT headers behind a damaged protective MBR
		PartitionOptions: probe.PartitionsMagic | probe.PartitionsForceGPT,
		Logger:           zap.L(),
	}

	if len(cmd.Types) > 0 {
		fileSystems, err := parseFileSystems(cmd.Types)
		if err != nil {
			return err
		}

		cfg.SuperblocksFilter = &probe.FileSystemFilter{Filter: probe.FilterIn, FileSystems: fileSystems}
	}

	p, err := probe.New(cfg)
	if err != nil {
		return err
	}

	defer p.Close() //nolint:errcheck

	for {
		res, err := p.RunScan()
		if err != nil {
			return err
		}

		if res != probe.FoundProperties {
			return nil
		}

		props := p.Properties()

		printTags(cmd.Device, xslices.Filter(props, func(tag blkid.Tag) bool {
			switch tag.Name() { //nolint:exhaustive
			case blkid.TagType, blkid.TagPTType, blkid.TagLabel, blkid.TagUUID,
				blkid.TagSBMagicOffset, blkid.TagPTMagicOffset:
				return true
			default:
				return false
			}
		}))

		if !cmd.Yes {
			continue
		}

		if err = p.DeletePropertiesFromDevice(); err != nil {
			if errors.Is(err, probe.ErrNothingToDelete) {
				continue
			}

			return err
		}
	}
}

func parseFileSystems(names []string) ([]blkid.FileSystem, error) {
	fileSystems := make([]blkid.FileSystem, 0, len(names))

	for _, name := range names {
		fs, err := blkid.ParseFileSystem(name)
		if err != nil {
			return nil, err
		}

		fileSystems = append(fileSystems, fs)
	}

	return fileSystems, nil
}
