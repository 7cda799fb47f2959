// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin && !cgo

package dylib

// Flags not exported by purego. Values are from the system dlfcn.h.
const (
	NoDelete Mode = 0x80
	NoLoad   Mode = 0x10

	// DeepBind has no effect on darwin.
	DeepBind Mode = 0
)
