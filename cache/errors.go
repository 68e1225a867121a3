// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import (
	"errors"

	"github.com/siderolabs/go-blkid/probe"
)

// Device resolution errors.
var (
	ErrEmptyDeviceName = errors.New("device name is empty")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDeviceCreation  = errors.New("failed to create device entry")
	ErrBorrowed        = errors.New("cache is borrowed by an open iterator")
)

// BuilderError is returned by New for an invalid Config.
type BuilderError = probe.BuilderError

// BuilderError kinds.
const (
	BuilderErrorRequired          = probe.BuilderErrorRequired
	BuilderErrorMutuallyExclusive = probe.BuilderErrorMutuallyExclusive
	BuilderErrorInvalid           = probe.BuilderErrorInvalid
)
