// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/cache"
)

// LookupCmd resolves LABEL=... or UUID=... to a device.
type LookupCmd struct {
	Tag  blkid.Tag `arg optional help:"LABEL=value or UUID=value"`
	UUID uuid.UUID `short:"u" help:"Look up by UUID"`
}

// Run the command.
func (cmd *LookupCmd) Run(globals *Globals) error {
	tag := cmd.Tag

	switch {
	case cmd.UUID != uuid.Nil:
		tag = blkid.NewTagString(blkid.TagUUID, cmd.UUID.String())
	case tag.Value() == nil:
		return errors.New("a tag or --uuid is required")
	}

	c, err := globals.openCache()
	if err != nil {
		return err
	}

	defer closeCache(c)

	name, ok := c.FindCanonicalDeviceNameFromTag(tag)
	if !ok {
		return fmt.Errorf("no device with %s", tag)
	}

	fmt.Fprintln(output, name)

	return nil
}

// TagCmd prints the cached tags of devices, probing them if the cache is stale.
type TagCmd struct {
	Devices []string `arg help:"Devices"`

	Match   string `short:"s" help:"Only print this tag (e.g. LABEL)"`
	Verify  bool   `help:"Probe the devices even if the cache is fresh"`
	OnlyTag bool   `short:"o" help:"Print the value only, requires --match"`
}

// Run the command.
func (cmd *TagCmd) Run(globals *Globals) error {
	var match *blkid.TagName

	if cmd.Match != "" {
		name, err := blkid.ParseTagName(cmd.Match)
		if err != nil {
			return err
		}

		match = &name
	}

	c, err := globals.openCache()
	if err != nil {
		return err
	}

	defer closeCache(c)

	op := cache.OperationNormal
	if cmd.Verify {
		op = cache.OperationVerify
	}

	var failed bool

	for _, name := range cmd.Devices {
		d, err := c.LookupDevice(name, op)
		if err != nil {
			zap.L().Error("lookup failed", zap.String("device", name), zap.Error(err))

			failed = true

			continue
		}

		tags := d.Tags()

		if match != nil {
			tag, ok := blkid.FindTag(tags, *match)
			if !ok {
				continue
			}

			if cmd.OnlyTag {
				fmt.Fprintln(output, tag.ValueString())

				continue
			}

			tags = []blkid.Tag{tag}
		}

		printTags(d.Name(), tags)
	}

	if failed {
		return errors.New("some devices could not be read")
	}

	return nil
}

// ListCmd lists the devices of the cache.
type ListCmd struct {
	Match  blkid.Tag `short:"m" help:"Only list devices with this tag (NAME=value)"`
	Cached bool      `help:"Do not probe the devices known to the kernel first"`
	Probe  string    `help:"Which devices to probe first: all, new or removable" default:"new"`
}

// Run the command.
func (cmd *ListCmd) Run(globals *Globals) error {
	c, err := globals.openCache()
	if err != nil {
		return err
	}

	defer closeCache(c)

	if !cmd.Cached {
		switch cmd.Probe {
		case "all":
			err = c.ProbeAllDevices()
		case "new":
			err = c.ProbeAllNewDevices()
		case "removable":
			err = c.ProbeAllRemovableDevices()
		default:
			return fmt.Errorf("unknown --probe value %q", cmd.Probe)
		}

		if err != nil {
			return err
		}
	}

	var it *cache.DeviceIter

	if cmd.Match.Value() != nil {
		it = c.DevicesMatching(cmd.Match)
	} else {
		it = c.Devices()
	}

	defer it.Close()

	for d, ok := it.Next(); ok; d, ok = it.Next() {
		printTags(d.Name(), d.Tags())
	}

	return nil
}

// GCCmd drops devices which no longer exist.
type GCCmd struct{}

// Run the command.
func (cmd *GCCmd) Run(globals *Globals) error {
	c, err := globals.openCache()
	if err != nil {
		return err
	}

	defer closeCache(c)

	before := c.Len()

	c.GarbageCollect()

	zap.L().Info("garbage collected", zap.Int("removed", before-c.Len()), zap.String("cache", c.Destination()))

	return nil
}

func closeCache(c *cache.Cache) {
	if err := c.Close(); err != nil {
		zap.L().Error("failed to save cache", zap.String("path", c.Destination()), zap.Error(err))
	}
}
