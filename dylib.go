// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dylib implements loading of native dynamic libraries and
// resolution of their exported functions and variables.
//
// A Lib owns at most one operating system library handle. The zero value
// is an empty Lib that holds no handle; Open acquires one and Close
// releases it. Ownership of a handle may be transferred between Lib values
// with Move and Take, but a Lib must not be copied.
//
// Symbols are resolved on every request. Func and Var reinterpret the
// resolved address as the type asserted by the caller; no check of the
// type against the library's definition is possible, so type correctness
// is the caller's responsibility.
//
// A Lib is not safe for concurrent use. Distinct Lib values may hold
// handles to the same library from different goroutines.
package dylib

import (
	"context"
	"log/slog"
	"runtime"
)

// Lib represents a possibly open handle to a dynamically loaded library.
type Lib struct {
	_ noCopy

	h   *handle
	log *slog.Logger
}

// handle is the heap-allocated owner of a native library handle. It is
// closed by its cleanup if it becomes unreachable while still open.
type handle struct {
	addr    uintptr
	name    string
	cleanup runtime.Cleanup
}

func newHandle(addr uintptr, name string) *handle {
	h := &handle{addr: addr, name: name}
	h.cleanup = runtime.AddCleanup(h, func(addr uintptr) {
		dlclose(addr)
	}, addr)
	return h
}

// release closes the native handle, detaching the cleanup first.
func (h *handle) release() error {
	h.cleanup.Stop()
	return dlclose(h.addr)
}

// Option is an option for opening a library.
type Option func(*options)

type options struct {
	mode Mode
	log  *slog.Logger
}

// WithMode sets the loader mode used to open the library. The default
// is Now|Local. Flags that have no meaning on a platform are zero there.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithLogger sets a logger for the Lib. Open, close and symbol resolution
// events are logged at debug level. A nil logger disables logging.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Open opens the dynamic library at path and returns a Lib holding its
// handle. path is interpreted by the platform's loader; see dlopen(3) or
// LoadLibrary for search rules.
func Open(path string, opts ...Option) (*Lib, error) {
	var l Lib
	err := l.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// OpenExt opens the dynamic library at prefix+ext. It is intended to be
// used with Extension.
func OpenExt(prefix, ext string, opts ...Option) (*Lib, error) {
	var l Lib
	err := l.OpenExt(prefix, ext, opts...)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Open opens the dynamic library at path into the receiver. If the
// receiver already holds a handle, the new library is opened before the
// previous handle is released, and the previous handle is released whether
// or not the open succeeds. On failure the receiver is left closed.
//
// If releasing the previous handle fails, the receiver holds the new
// handle and the close error is returned.
func (l *Lib) Open(path string, opts ...Option) error {
	o := options{mode: Now | Local, log: l.log}
	for _, opt := range opts {
		opt(&o)
	}
	l.log = o.log

	prev := l.h
	l.h = nil
	if path == "" {
		return l.closePrev(prev, &HandleError{Op: "open", Err: ErrEmptyPath})
	}
	addr, err := dlopen(path, o.mode)
	if err != nil {
		l.logAttrs(slog.LevelWarn, "open failed", slog.String("path", path), slog.Any("error", err))
		return l.closePrev(prev, &HandleError{Op: "open", Path: path, Err: err})
	}
	l.h = newHandle(addr, path)
	l.logAttrs(slog.LevelDebug, "open", slog.String("path", path), slog.Int("mode", int(o.mode)))
	return l.closePrev(prev, nil)
}

// OpenExt opens the dynamic library at prefix+ext into the receiver with
// the semantics of [Lib.Open].
func (l *Lib) OpenExt(prefix, ext string, opts ...Option) error {
	switch "" {
	case prefix:
		return l.Open("", opts...)
	case ext:
		prev := l.h
		l.h = nil
		return l.closePrev(prev, &HandleError{Op: "open", Path: prefix, Err: ErrEmptyExtension})
	}
	return l.Open(prefix+ext, opts...)
}

// closePrev releases a handle displaced by an open, returning err if it is
// not nil, and otherwise any error from the release.
func (l *Lib) closePrev(prev *handle, err error) error {
	if prev == nil {
		return err
	}
	cerr := prev.release()
	l.logAttrs(slog.LevelDebug, "close previous", slog.String("path", prev.name))
	if err != nil {
		return err
	}
	if cerr != nil {
		return &HandleError{Op: "close", Path: prev.name, Err: cerr}
	}
	return nil
}

// Close closes the receiver, unloading the library. Symbols must not be
// used after Close has been called. Closing a closed Lib is a no-op.
func (l *Lib) Close() error {
	if l == nil || l.h == nil {
		return nil
	}
	h := l.h
	l.h = nil
	err := h.release()
	l.logAttrs(slog.LevelDebug, "close", slog.String("path", h.name))
	if err != nil {
		return &HandleError{Op: "close", Path: h.name, Err: err}
	}
	return nil
}

// IsOpen returns whether the receiver holds a library handle.
func (l *Lib) IsOpen() bool { return l != nil && l.h != nil }

// Name returns the path the library was opened with, or the empty
// string if the receiver is closed.
func (l *Lib) Name() string {
	if l == nil || l.h == nil {
		return ""
	}
	return l.h.name
}

// Move returns a new Lib holding the receiver's handle, leaving the
// receiver closed. Moving from a nil Lib returns a closed Lib.
func (l *Lib) Move() *Lib {
	if l == nil {
		return &Lib{}
	}
	m := &Lib{h: l.h, log: l.log}
	l.h = nil
	return m
}

// Take closes the receiver's handle if it has one and then takes
// ownership of src's handle, leaving src closed. Taking from the
// receiver itself is a no-op, and a nil src is treated as a closed Lib.
// Any error closing the receiver's previous handle is returned after the
// transfer. The receiver must not be nil.
func (l *Lib) Take(src *Lib) error {
	if src == l {
		return nil
	}
	err := l.Close()
	if src == nil {
		return err
	}
	l.h = src.h
	src.h = nil
	if l.log == nil {
		l.log = src.log
	}
	return err
}

// Symbol takes a symbol name and returns the address it resolves to in
// the receiver's library.
func (l *Lib) Symbol(name string) (uintptr, error) {
	if !l.IsOpen() {
		return 0, &HandleError{Op: "symbol", Err: ErrClosed}
	}
	if name == "" {
		return 0, &SymbolError{Path: l.h.name, Err: ErrEmptyName}
	}
	addr, err := dlsym(l.h.addr, name)
	if err != nil {
		l.logAttrs(slog.LevelDebug, "unresolved symbol", slog.String("path", l.h.name), slog.String("symbol", name), slog.Any("error", err))
		return 0, &SymbolError{Name: name, Path: l.h.name, Err: err}
	}
	l.logAttrs(slog.LevelDebug, "resolved symbol", slog.String("path", l.h.name), slog.String("symbol", name))
	return addr, nil
}

// LogValue implements slog.LogValuer.
func (l *Lib) LogValue() slog.Value {
	if !l.IsOpen() {
		return slog.GroupValue(slog.Bool("open", false))
	}
	return slog.GroupValue(
		slog.String("name", l.h.name),
		slog.Bool("open", true),
	)
}

func (l *Lib) logAttrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.log == nil {
		return
	}
	l.log.LogAttrs(context.Background(), level, msg, attrs...)
}

// noCopy may be embedded into structs which must not be copied
// after first use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
