// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && !cgo

package dylib

// Flags not exported by purego. Values are from the system dlfcn.h.
const (
	NoDelete Mode = 0x01000
	NoLoad   Mode = 0x00004
	DeepBind Mode = 0x00008
)
