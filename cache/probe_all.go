// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/btree"
	"go.uber.org/zap"
)

type kernelPartition struct {
	name   string
	blocks uint64
}

// ProbeAllDevices verifies every block device known to the kernel.
//
// Nothing is done if all devices were probed less than ProbeInterval ago.
func (c *Cache) ProbeAllDevices() error {
	if c.borrowed > 0 {
		return ErrBorrowed
	}

	if c.probedAll && c.now().Sub(c.probedAllTime) < c.probeInterval {
		return nil
	}

	if err := c.probeKernelDevices(false); err != nil {
		return err
	}

	c.probedAll = true
	c.probedAllTime = c.now()

	return nil
}

// ProbeAllNewDevices probes block devices which are not in the cache yet.
func (c *Cache) ProbeAllNewDevices() error {
	if c.borrowed > 0 {
		return ErrBorrowed
	}

	return c.probeKernelDevices(true)
}

// ProbeAllRemovableDevices probes devices with removable media.
//
// This is slow for devices like floppy drives and should not be called often.
// Removable devices are never saved to the cache file.
func (c *Cache) ProbeAllRemovableDevices() error {
	if c.borrowed > 0 {
		return ErrBorrowed
	}

	entries, err := os.ReadDir(c.sysBlockDir)
	if err != nil {
		return fmt.Errorf("failed to list block devices: %w", err)
	}

	for _, entry := range entries {
		removable, err := os.ReadFile(filepath.Join(c.sysBlockDir, entry.Name(), "removable"))
		if err != nil || string(bytes.TrimSpace(removable)) != "1" {
			continue
		}

		d, err := c.LookupDevice(c.devicePath(entry.Name()), OperationVerify)
		if err != nil {
			c.logger.Debug("skipped removable device", zap.String("device", entry.Name()), zap.Error(err))

			continue
		}

		c.get(d.name).removable = true
	}

	return nil
}

// GarbageCollect drops devices which no longer exist, or whose node now belongs to another device number.
func (c *Cache) GarbageCollect() {
	if c.borrowed > 0 {
		c.logger.Debug("skipped garbage collection, cache is borrowed")

		return
	}

	var stale []*Device

	c.devices.Ascend(func(item btree.Item) bool {
		d := item.(*Device) //nolint:forcetypeassert

		if _, err := os.Stat(d.name); err != nil {
			stale = append(stale, d)

			return true
		}

		if d.devNo != 0 {
			if devNo, err := c.deviceNumber(d.name); err != nil || devNo != d.devNo {
				stale = append(stale, d)
			}
		}

		return true
	})

	for _, d := range stale {
		c.logger.Debug("removing stale device", zap.String("device", d.name))

		c.remove(d)
	}
}

func (c *Cache) probeKernelDevices(onlyNew bool) error {
	partitions, err := c.kernelPartitions()
	if err != nil {
		return err
	}

	for _, part := range partitions {
		// extended partitions
		if part.blocks == 1 {
			continue
		}

		if c.hasPartitions(part.name) {
			continue
		}

		path := c.devicePath(part.name)

		if onlyNew && c.get(path) != nil {
			continue
		}

		if _, err = c.LookupDevice(path, OperationVerify); err != nil {
			c.logger.Debug("skipped device", zap.String("device", path), zap.Error(err))
		}
	}

	return nil
}

// kernelPartitions parses /proc/partitions.
func (c *Cache) kernelPartitions() ([]kernelPartition, error) {
	f, err := os.Open(c.procPartitions)
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel partitions: %w", err)
	}

	defer f.Close() //nolint:errcheck

	var partitions []kernelPartition

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		// major minor  #blocks  name
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			continue
		}

		blocks, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			continue
		}

		partitions = append(partitions, kernelPartition{name: fields[3], blocks: blocks})
	}

	return partitions, scanner.Err()
}

// hasPartitions returns true for whole disks with partitions, only the partitions are probed.
func (c *Cache) hasPartitions(name string) bool {
	name = strings.ReplaceAll(name, "/", "!")

	entries, err := os.ReadDir(filepath.Join(c.sysBlockDir, name))
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), name) {
			return true
		}
	}

	return false
}

// devicePath maps a kernel device name to its path, dm-N devices are named after their mapping.
func (c *Cache) devicePath(name string) string {
	name = strings.ReplaceAll(name, "!", "/")

	if strings.HasPrefix(name, "dm-") {
		if mapped, err := os.ReadFile(filepath.Join(c.sysBlockDir, name, "dm", "name")); err == nil {
			if mapped = bytes.TrimSpace(mapped); len(mapped) > 0 {
				return filepath.Join(c.devDir, "mapper", string(mapped))
			}
		}
	}

	return filepath.Join(c.devDir, name)
}
