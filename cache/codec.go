// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/siderolabs/go-blkid/blkid"
)

const (
	lineStart = "<device"
	lineEnd   = "</device>"

	attrDevNo    = "DEVNO"
	attrTime     = "TIME"
	attrPriority = "PRI"
)

// encodeDevice renders a cache file line:
//
//	<device DEVNO="0x0801" TIME="1697364422.123456" LABEL="root">/dev/sda1</device>
func encodeDevice(d *Device) string {
	var sb strings.Builder

	sb.WriteString(lineStart)
	fmt.Fprintf(&sb, ` %s="0x%04x"`, attrDevNo, d.devNo)

	if d.time.IsZero() {
		fmt.Fprintf(&sb, ` %s="0.000000"`, attrTime)
	} else {
		fmt.Fprintf(&sb, ` %s="%d.%06d"`, attrTime, d.time.Unix(), d.time.Nanosecond()/int(time.Microsecond))
	}

	if d.priority != 0 {
		fmt.Fprintf(&sb, ` %s="%d"`, attrPriority, d.priority)
	}

	for _, tag := range d.tags {
		sb.WriteByte(' ')
		sb.WriteString(tag.String())
	}

	sb.WriteByte('>')
	sb.WriteString(d.name)
	sb.WriteString(lineEnd)
	sb.WriteByte('\n')

	return sb.String()
}

// decodeDevice parses a line written by encodeDevice.
//
//nolint:gocyclo,cyclop
func decodeDevice(line string) (*Device, error) {
	inner, ok := strings.CutPrefix(line, lineStart)
	if !ok {
		return nil, fmt.Errorf("missing %q in: %s", lineStart, line)
	}

	inner, ok = strings.CutSuffix(inner, lineEnd)
	if !ok {
		return nil, fmt.Errorf("missing %q in: %s", lineEnd, line)
	}

	end := attributesEnd(inner)
	if end < 0 {
		return nil, fmt.Errorf("unterminated device attributes in: %s", line)
	}

	d := &Device{name: strings.TrimSpace(inner[end+1:])}
	if d.name == "" {
		return nil, fmt.Errorf("missing device name in: %s", line)
	}

	for _, field := range blkid.SplitTags(inner[:end]) {
		name, value, _ := strings.Cut(field, "=")

		switch name {
		case attrDevNo, attrTime, attrPriority:
			raw, err := blkid.UnquoteValue(value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s in: %s: %w", name, line, err)
			}

			if err = d.setAttribute(name, string(raw)); err != nil {
				return nil, fmt.Errorf("invalid %s in: %s: %w", name, line, err)
			}
		default:
			tag, err := blkid.ParseTag(field)
			if err != nil {
				return nil, err
			}

			d.tags = append(d.tags, tag)
		}
	}

	return d, nil
}

func (d *Device) setAttribute(name, value string) error {
	switch name {
	case attrDevNo:
		v, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return err
		}

		d.devNo = v
	case attrTime:
		secs, usecs, _ := strings.Cut(value, ".")

		sec, err := strconv.ParseInt(secs, 10, 64)
		if err != nil {
			return err
		}

		var usec int64

		if usecs != "" {
			if usec, err = strconv.ParseInt(usecs, 10, 64); err != nil {
				return err
			}
		}

		// never probed
		if sec == 0 && usec == 0 {
			return nil
		}

		d.time = time.Unix(sec, usec*int64(time.Microsecond))
	case attrPriority:
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}

		d.priority = v
	}

	return nil
}

// attributesEnd returns the index of the '>' closing the attribute list, skipping quoted values.
func attributesEnd(s string) int {
	var quoted, escaped bool

	for i := range len(s) {
		switch c := s[i]; {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == '>' && !quoted:
			return i
		}
	}

	return -1
}

// readDevices parses a cache file.
//
// Malformed lines are skipped and reported in the returned error.
func readDevices(r io.Reader) ([]*Device, error) {
	var (
		devices []*Device
		result  *multierror.Error
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		d, err := decodeDevice(line)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("line %d: %w", lineNo, err))

			continue
		}

		devices = append(devices, d)
	}

	if err := scanner.Err(); err != nil {
		result = multierror.Append(result, err)
	}

	return devices, result.ErrorOrNil()
}
