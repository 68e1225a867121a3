// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package debug controls diagnostic logging per subsystem.
//
// The set of enabled subsystems is process-wide and can be initialized once,
// either from the LIBBLKID_DEBUG environment variable or with everything enabled.
// Loggers of disabled subsystems drop debug messages.
package debug

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvDebug is a comma-separated list of subsystem names (or a numeric mask).
const EnvDebug = "LIBBLKID_DEBUG"

// Mask is a set of subsystems.
type Mask uint32

// Subsystems, the bits match libblkid.
const (
	Init Mask = 1 << (iota + 1)
	Cache
	Config
	Dev
	DevName
	DevNo
	Evaluate
	LowProbe
	Probe
	Read
	Save
	Tag
	Buffer

	All Mask = 0xffff
)

var maskNames = []struct {
	name string
	mask Mask
}{
	{"init", Init},
	{"cache", Cache},
	{"config", Config},
	{"dev", Dev},
	{"devname", DevName},
	{"devno", DevNo},
	{"evaluate", Evaluate},
	{"lowprobe", LowProbe},
	{"probe", Probe},
	{"read", Read},
	{"save", Save},
	{"tag", Tag},
	{"buffer", Buffer},
	{"all", All},
}

// String implements fmt.Stringer.
func (m Mask) String() string {
	if m&All == All {
		return "all"
	}

	var names []string

	for _, n := range maskNames {
		if n.mask != All && m&n.mask != 0 {
			names = append(names, n.name)
		}
	}

	if len(names) == 0 {
		return fmt.Sprintf("0x%04x", uint32(m))
	}

	return strings.Join(names, ",")
}

// ParseMask parses a LIBBLKID_DEBUG value.
//
// Unknown names are reported in the error, the known ones are still returned.
func ParseMask(s string) (Mask, error) {
	s = strings.TrimSpace(s)

	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Mask(v), nil
	}

	var (
		m      Mask
		result *multierror.Error
	)

	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		known := false

		for _, n := range maskNames {
			if n.name == name {
				m |= n.mask
				known = true

				break
			}
		}

		if !known {
			result = multierror.Append(result, fmt.Errorf("unknown debug subsystem %q", name))
		}
	}

	return m, result.ErrorOrNil()
}

var (
	once sync.Once
	mask Mask
)

// InitDefault enables the subsystems listed in LIBBLKID_DEBUG.
//
// Only the first call to InitDefault or InitFull has an effect.
func InitDefault() error {
	var err error

	once.Do(func() {
		mask, err = ParseMask(os.Getenv(EnvDebug))
	})

	return err
}

// InitFull enables all subsystems, see InitDefault.
func InitFull() {
	once.Do(func() {
		mask = All
	})
}

// Enabled returns the enabled subsystems.
func Enabled() Mask {
	return mask
}

// Logger returns a logger named after the subsystem.
//
// Debug messages are dropped unless the subsystem is enabled.
func Logger(logger *zap.Logger, subsystem Mask) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}

	logger = logger.Named(subsystem.String())

	if mask&subsystem == 0 && logger.Core().Enabled(zapcore.DebugLevel) {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
	}

	return logger
}
