// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package cli implements the blkid command line.
package cli

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/cache"
)

// Globals are flags shared by all commands.
type Globals struct {
	LogLevel string `help:"Set the logging level (debug|info|warn|error)" default:"info"`
	Debug    bool   `help:"Enable diagnostics of every subsystem, LIBBLKID_DEBUG selects them otherwise"`

	CacheFile string `help:"Cache file, $BLKID_FILE or /run/blkid/blkid.tab by default"`
	Discard   bool   `help:"Do not save changes to the cache file"`
}

// CLI is the blkid command line.
type CLI struct {
	Globals

	Probe   ProbeCmd   `cmd help:"Scan a device or image file"`
	Wipe    WipeCmd    `cmd help:"Find and erase signatures"`
	Lookup  LookupCmd  `cmd help:"Find the device with a LABEL or UUID"`
	Tag     TagCmd     `cmd help:"Print the tags of a device"`
	List    ListCmd    `cmd help:"List devices in the cache"`
	GC      GCCmd      `cmd name:"gc" help:"Remove devices which no longer exist from the cache"`
	UEvent  UEventCmd  `cmd name:"uevent" help:"Trigger a udev event for a device"`
	Version VersionCmd `cmd help:"Print the library version"`
}

// TagDecoder parses NAME=value arguments, the value may be double-quoted.
func TagDecoder(ctx *kong.DecodeContext, target reflect.Value) error {
	var value string
	if err := ctx.Scan.PopValueInto("tag", &value); err != nil {
		return err
	}

	tag, err := ParseTagArg(value)
	if err != nil {
		return err
	}

	target.Set(reflect.ValueOf(tag))

	return nil
}

// UUIDDecoder parses UUID flags.
func UUIDDecoder(ctx *kong.DecodeContext, target reflect.Value) error {
	var value string
	if err := ctx.Scan.PopValueInto("uuid", &value); err != nil {
		return err
	}

	var u uuid.UUID

	if value != "" {
		var err error

		if u, err = uuid.Parse(value); err != nil {
			return err
		}
	}

	target.Set(reflect.ValueOf(u))

	return nil
}

// TypeMappers returns the kong options decoding tags and UUIDs.
func TypeMappers() []kong.Option {
	return []kong.Option{
		kong.TypeMapper(reflect.TypeOf(blkid.Tag{}), kong.MapperFunc(TagDecoder)),
		kong.TypeMapper(reflect.TypeOf(uuid.UUID{}), kong.MapperFunc(UUIDDecoder)),
	}
}

// ParseTagArg parses NAME=value or NAME="value".
func ParseTagArg(s string) (blkid.Tag, error) {
	name, value, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return blkid.Tag{}, fmt.Errorf("expected NAME=value, got %q", s)
	}

	if strings.HasPrefix(value, `"`) {
		return blkid.ParseTag(s)
	}

	tagName, err := blkid.ParseTagName(name)
	if err != nil {
		return blkid.Tag{}, err
	}

	return blkid.NewTagString(tagName, value), nil
}

func (g *Globals) openCache() (*cache.Cache, error) {
	return cache.New(cache.Config{
		DiscardChangesOnDrop: g.Discard,
		AutoSaveChangesTo:    g.CacheFile,
		Logger:               zap.L(),
	})
}

// output of the commands.
var output io.Writer = color.Output

var (
	deviceColor = color.New(color.FgBlue, color.Bold)
	nameColor   = color.New(color.FgCyan)
)

// printTags prints a blkid style line: `device: NAME="value" ...`.
func printTags(device string, tags []blkid.Tag) {
	var sb strings.Builder

	if device != "" {
		sb.WriteString(deviceColor.Sprint(device))
		sb.WriteString(":")
	}

	for _, tag := range tags {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(nameColor.Sprint(tag.Name().String()))
		sb.WriteString("=")
		sb.WriteString(blkid.QuoteValue(tag.Value()))
	}

	fmt.Fprintln(output, sb.String())
}
