// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrFailedLock         = errors.New("failed to acquire shared lock while probing blockdevice")
	ErrReadOnly           = errors.New("probe is read-only, set AllowWrites to modify the device")
	ErrNoPreviousPosition = errors.New("no previous scan position")
	ErrNothingToDelete    = errors.New("no magic value was collected for the last match")
	ErrNoPartitionTable   = errors.New("no partition table found")
	ErrNoTopology         = errors.New("no topology found")
	ErrClosed             = errors.New("probe is closed")
)

// BuilderErrorKind classifies configuration errors.
type BuilderErrorKind int

// BuilderErrorKind values.
const (
	// BuilderErrorRequired means a required option is missing.
	BuilderErrorRequired BuilderErrorKind = iota
	// BuilderErrorMutuallyExclusive means options which exclude each other were set.
	BuilderErrorMutuallyExclusive
	// BuilderErrorInvalid means an option value is invalid.
	BuilderErrorInvalid
)

// BuilderError is returned by New for an invalid Config.
type BuilderError struct {
	Kind BuilderErrorKind
	Msg  string
	Err  error
}

func (e *BuilderError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}

	return e.Msg
}

func (e *BuilderError) Unwrap() error {
	return e.Err
}

// ExceptionError carries the raw status code of a detector which ended in an unexpected state.
type ExceptionError struct {
	Code int
	Err  error
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("unexpected scan state (code %d): %v", e.Code, e.Err)
}

func (e *ExceptionError) Unwrap() error {
	return e.Err
}
