// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && cgo

package dylib

/*
#ifndef _GNU_SOURCE
#define _GNU_SOURCE
#endif
#include <dlfcn.h>
*/
import "C"

// DeepBind places the library's own symbols ahead of global symbols
// when resolving its references.
const DeepBind = Mode(C.RTLD_DEEPBIND)
