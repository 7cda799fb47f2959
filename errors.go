// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dylib

import "errors"

var (
	// ErrClosed is returned for operations requiring an open library
	// handle when the Lib is closed.
	ErrClosed = errors.New("library not open")

	// ErrEmptyPath is returned when opening with an empty path.
	ErrEmptyPath = errors.New("empty library path")

	// ErrEmptyExtension is returned when opening with an empty
	// extension.
	ErrEmptyExtension = errors.New("empty library extension")

	// ErrEmptyName is returned when resolving an empty symbol name.
	ErrEmptyName = errors.New("empty symbol name")

	// ErrNotFunc is returned when a function symbol is requested
	// for a non-func type.
	ErrNotFunc = errors.New("not a func type")
)

// HandleError is an error relating to the library handle: a failure to
// open or close a library, or an operation attempted on a closed Lib.
type HandleError struct {
	Op   string // "open", "close" or "symbol"
	Path string // library path if known
	Err  error
}

func (e *HandleError) Error() string {
	if e.Path == "" {
		return "dylib: " + e.Op + ": " + e.Err.Error()
	}
	return "dylib: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *HandleError) Unwrap() error { return e.Err }

// SymbolError is an error resolving or binding a symbol in an open
// library.
type SymbolError struct {
	Name string // symbol name
	Path string // library path
	Err  error
}

func (e *SymbolError) Error() string {
	if e.Name == "" {
		return "dylib: symbol in " + e.Path + ": " + e.Err.Error()
	}
	return "dylib: symbol " + e.Name + " in " + e.Path + ": " + e.Err.Error()
}

func (e *SymbolError) Unwrap() error { return e.Err }

// Error is a native loader error message.
type Error string

func (e Error) Error() string { return string(e) }
