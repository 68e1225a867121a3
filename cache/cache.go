// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package cache implements a registry of block devices and their tags, persisted to a file.
//
// Changes are kept in memory and written to the cache file on Close:
//
//	c, err := cache.New(cache.Config{})
//	if err != nil {
//		return err
//	}
//
//	defer c.Close() //nolint:errcheck
//
//	name, ok := c.FindDeviceNameFromTag(blkid.NewTagString(blkid.TagLabel, "root"))
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
)

// Cache of block devices.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	logger     *zap.Logger
	evalLogger *zap.Logger

	destination   string
	probeInterval time.Duration

	devDir         string
	procPartitions string
	sysBlockDir    string

	prober       Prober
	now          func() time.Time
	deviceNumber func(path string) (uint64, error)

	devices *btree.BTree

	dirty    bool
	closed   bool
	borrowed int

	probedAll     bool
	probedAllTime time.Time
}

// Destination returns the file the cache is saved to.
func (c *Cache) Destination() string {
	return c.destination
}

// Len returns the number of devices in the cache.
func (c *Cache) Len() int {
	return c.devices.Len()
}

// Close saves the cache if it was changed.
//
// Only the first call has an effect.
func (c *Cache) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true

	if !c.dirty {
		return nil
	}

	return c.save()
}

// LookupDevice resolves a device by name.
//
// Errors wrap ErrEmptyDeviceName, ErrDeviceNotFound, ErrDeviceCreation or ErrBorrowed.
func (c *Cache) LookupDevice(name string, op Operation) (Device, error) {
	if name == "" {
		return Device{}, ErrEmptyDeviceName
	}

	d := c.get(name)

	if op == OperationFind {
		if d == nil {
			return Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
		}

		return d.clone(), nil
	}

	if c.borrowed > 0 {
		return Device{}, ErrBorrowed
	}

	cached := d != nil

	if !cached {
		if strings.ContainsRune(name, 0) {
			return Device{}, fmt.Errorf("%w: %q", ErrDeviceCreation, name)
		}

		d = &Device{name: name}
	}

	switch op { //nolint:exhaustive
	case OperationCreate:
		if !cached {
			c.devices.ReplaceOrInsert(d)
			c.dirty = true
		}

		return d.clone(), nil
	case OperationNormal:
		if cached && c.fresh(d) {
			return d.clone(), nil
		}
	case OperationVerify:
	default:
		return Device{}, fmt.Errorf("unsupported operation %s", op)
	}

	verified, err := c.verify(d)
	if err != nil {
		return Device{}, err
	}

	return verified.clone(), nil
}

// TagValueFromDevice returns the value of a tag of the named device, the device is verified if stale.
func (c *Cache) TagValueFromDevice(name string, tag blkid.TagName) (string, bool) {
	d, err := c.LookupDevice(name, OperationNormal)
	if err != nil {
		return "", false
	}

	return d.TagValue(tag)
}

// RefreshDeviceData probes the named device and updates its entry.
func (c *Cache) RefreshDeviceData(name string) (Device, error) {
	return c.LookupDevice(name, OperationVerify)
}

func (c *Cache) get(name string) *Device {
	item := c.devices.Get(&Device{name: name})
	if item == nil {
		return nil
	}

	return item.(*Device) //nolint:forcetypeassert
}

func (c *Cache) remove(d *Device) {
	if c.devices.Delete(d) != nil {
		c.dirty = true
	}
}

// fresh returns true if the entry can be used without probing the device.
func (c *Cache) fresh(d *Device) bool {
	if d.time.IsZero() {
		return false
	}

	st, err := os.Stat(d.name)
	if err != nil {
		return false
	}

	age := c.now().Sub(d.time)

	if age < 0 || st.ModTime().After(d.time) {
		return false
	}

	return age < probeMinInterval || (d.verified && age < c.probeInterval)
}

// verify probes the device and updates (or drops) its entry.
func (c *Cache) verify(d *Device) (*Device, error) {
	info, err := c.prober(d.name)
	if err != nil {
		if gone(err) {
			c.logger.Debug("device is gone", zap.String("device", d.name), zap.Error(err))

			c.remove(d)

			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, d.name)
		}

		c.logger.Debug("failed to probe device", zap.String("device", d.name), zap.Error(err))

		// keep what is known about devices which can't be read right now
		if c.get(d.name) != nil && len(d.tags) > 0 {
			return d, nil
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrDeviceNotFound, d.name, err)
	}

	if len(info.Tags) == 0 {
		c.logger.Debug("nothing found on device", zap.String("device", d.name))

		c.remove(d)

		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, d.name)
	}

	d.tags = info.Tags
	d.devNo = info.DeviceNumber
	d.time = c.now()
	d.priority = c.devicePriority(d.name)
	d.verified = true

	c.devices.ReplaceOrInsert(d)
	c.dirty = true

	return d, nil
}

// devicePriority ranks device-mapper devices over md devices over everything else.
func (c *Cache) devicePriority(name string) int {
	switch base := filepath.Base(name); {
	case strings.HasPrefix(name, filepath.Join(c.devDir, "mapper")+"/"), strings.HasPrefix(base, "dm-"):
		return PriorityDM
	case strings.HasPrefix(base, "md"):
		return PriorityMD
	default:
		return 0
	}
}

func gone(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENXIO) || errors.Is(err, syscall.ENODEV)
}

// save writes the cache file, through a temporary file unless the destination is a device.
func (c *Cache) save() error {
	var sb strings.Builder

	c.devices.Ascend(func(item btree.Item) bool {
		d := item.(*Device) //nolint:forcetypeassert

		if !d.removable {
			sb.WriteString(encodeDevice(d))
		}

		return true
	})

	st, err := os.Stat(c.destination)
	if err == nil && !st.Mode().IsRegular() {
		f, err := os.OpenFile(c.destination, os.O_WRONLY|os.O_TRUNC, 0)
		if err != nil {
			return fmt.Errorf("failed to open cache file: %w", err)
		}

		if _, err = f.WriteString(sb.String()); err != nil {
			f.Close() //nolint:errcheck

			return fmt.Errorf("failed to write cache file: %w", err)
		}

		return f.Close()
	}

	dir := filepath.Dir(c.destination)

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.destination)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err = tmp.WriteString(sb.String()); err != nil {
		tmp.Close() //nolint:errcheck

		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck

		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmp.Name(), c.destination); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	c.logger.Debug("saved cache file", zap.String("path", c.destination), zap.Int("devices", c.devices.Len()))

	return nil
}
