// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package blkid

import "fmt"

// ParserError is returned when the text form of a value can not be parsed.
//
// Type names the value being parsed (e.g. "OSType"), Msg quotes the offending input.
type ParserError struct {
	Type string
	Msg  string
}

func (e *ParserError) Error() string {
	return e.Msg
}

func parserError(typ, format string, args ...any) error {
	return &ParserError{
		Type: typ,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// ConversionError is returned when raw bytes can not be converted into a value.
type ConversionError struct {
	Type string
	Msg  string
	Err  error
}

func (e *ConversionError) Error() string {
	return e.Msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
