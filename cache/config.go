// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/block"
	"github.com/siderolabs/go-blkid/debug"
)

// Defaults.
const (
	// DefaultCacheFile is the cache file used unless $BLKID_FILE is set.
	DefaultCacheFile = "/run/blkid/blkid.tab"
	// DefaultProbeInterval is how long a verified entry stays fresh.
	DefaultProbeInterval = 200 * time.Second

	// EnvCacheFile overrides DefaultCacheFile.
	EnvCacheFile = "BLKID_FILE"

	// probeMinInterval is how long any entry stays fresh after it was probed.
	probeMinInterval = 2 * time.Second

	btreeDegree = 8
)

// Config of a Cache.
type Config struct {
	// DiscardChangesOnDrop makes Close write to the null device. Exclusive with AutoSaveChangesTo.
	DiscardChangesOnDrop bool
	// AutoSaveChangesTo is the file the cache is read from and saved to on Close.
	//
	// Defaults to $BLKID_FILE or DefaultCacheFile.
	AutoSaveChangesTo string

	ProbeInterval time.Duration

	// DevDir is where device nodes live, "/dev" by default.
	DevDir string
	// ProcPartitions lists the partitions known to the kernel, "/proc/partitions" by default.
	ProcPartitions string
	// SysBlockDir is the sysfs block class directory, "/sys/block" by default.
	SysBlockDir string

	// Probe reads the tags of a device, a probe.Probe based implementation by default.
	Probe Prober

	Logger *zap.Logger
}

// New validates the config, creates a Cache and loads the cache file.
func New(cfg Config) (*Cache, error) {
	if cfg.DiscardChangesOnDrop && cfg.AutoSaveChangesTo != "" {
		return nil, &BuilderError{
			Kind: BuilderErrorMutuallyExclusive,
			Msg:  "can not set `DiscardChangesOnDrop` and `AutoSaveChangesTo` simultaneously",
		}
	}

	c := &Cache{
		logger:         debug.Logger(cfg.Logger, debug.Cache),
		evalLogger:     debug.Logger(cfg.Logger, debug.Evaluate),
		destination:    cfg.AutoSaveChangesTo,
		probeInterval:  cfg.ProbeInterval,
		devDir:         cfg.DevDir,
		procPartitions: cfg.ProcPartitions,
		sysBlockDir:    cfg.SysBlockDir,
		prober:         cfg.Probe,
		devices:        btree.New(btreeDegree),
		now:            time.Now,
		deviceNumber:   block.DeviceNumberFromPath,
	}

	switch {
	case cfg.DiscardChangesOnDrop:
		c.destination = os.DevNull
	case c.destination == "":
		c.destination = os.Getenv(EnvCacheFile)

		if c.destination == "" {
			c.destination = DefaultCacheFile
		}
	}

	if c.probeInterval == 0 {
		c.probeInterval = DefaultProbeInterval
	}

	if c.devDir == "" {
		c.devDir = "/dev"
	}

	if c.procPartitions == "" {
		c.procPartitions = "/proc/partitions"
	}

	if c.sysBlockDir == "" {
		c.sysBlockDir = "/sys/block"
	}

	if c.prober == nil {
		c.prober = DefaultProber(cfg.Logger)
	}

	c.load()

	return c, nil
}

func (c *Cache) load() {
	f, err := os.Open(c.destination)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("failed to open cache file", zap.String("path", c.destination), zap.Error(err))
		}

		return
	}

	defer f.Close() //nolint:errcheck

	devices, err := readDevices(f)
	if err != nil {
		c.logger.Warn("skipped malformed cache file entries", zap.String("path", c.destination), zap.Error(err))
	}

	for _, d := range devices {
		c.devices.ReplaceOrInsert(d)
	}

	c.logger.Debug("loaded cache file", zap.String("path", c.destination), zap.Int("devices", len(devices)))
}
