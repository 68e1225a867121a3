// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"strings"

	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/probe"
)

// Info is what a Prober found on a device.
//
// No tags means nothing was found.
type Info struct {
	DeviceNumber uint64
	Tags         []blkid.Tag
}

// Prober reads the tags of the device at path.
type Prober func(path string) (Info, error)

// DefaultProber scans superblocks and the partition entry of the device.
//
// Partition entry UUID and name are kept as PARTUUID and PARTLABEL, other entry details are dropped.
func DefaultProber(logger *zap.Logger) Prober {
	return func(path string) (Info, error) {
		p, err := probe.New(probe.Config{
			Path:             path,
			ScanPartitions:   true,
			PartitionOptions: probe.PartitionsEntryDetails,
			Logger:           logger,
		})
		if err != nil {
			return Info{}, err
		}

		defer p.Close() //nolint:errcheck

		if _, err = p.FindDeviceProperties(); err != nil {
			return Info{}, err
		}

		return Info{
			DeviceNumber: p.DeviceNumber(),
			Tags:         cachedTags(p.Properties()),
		}, nil
	}
}

// uncachedTags are descriptive iso9660 identifiers, not worth keeping in the cache file.
var uncachedTags = map[blkid.TagName]bool{
	blkid.TagSystemID:      true,
	blkid.TagPublisherID:   true,
	blkid.TagApplicationID: true,
	blkid.TagBootSystemID:  true,
}

func cachedTags(props []blkid.Tag) []blkid.Tag {
	tags := make([]blkid.Tag, 0, len(props))

	for _, tag := range props {
		switch name := tag.Name(); {
		case name == blkid.TagPartEntryUUID:
			tags = append(tags, blkid.NewTag(blkid.TagPartUUID, tag.Value()))
		case name == blkid.TagPartEntryName:
			tags = append(tags, blkid.NewTag(blkid.TagPartLabel, tag.Value()))
		case strings.HasPrefix(name.String(), "PART_ENTRY_"), uncachedTags[name]:
		default:
			tags = append(tags, tag)
		}
	}

	return tags
}
