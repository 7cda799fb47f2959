// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix && cgo && !linux

package dylib

// DeepBind has no effect on this platform.
const DeepBind Mode = 0
