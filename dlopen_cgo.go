// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix && cgo

package dylib

/*
#cgo linux LDFLAGS: -ldl
#include <stdlib.h>
#include <dlfcn.h>
*/
import "C"

import (
	"errors"
	"unsafe"
)

// Mode is a set of dlopen flags. See man 3 dlopen for details.
type Mode int

const (
	Lazy     = Mode(C.RTLD_LAZY)
	Now      = Mode(C.RTLD_NOW)
	Global   = Mode(C.RTLD_GLOBAL)
	Local    = Mode(C.RTLD_LOCAL)
	NoDelete = Mode(C.RTLD_NODELETE)
	NoLoad   = Mode(C.RTLD_NOLOAD)
)

func dlopen(path string, mode Mode) (uintptr, error) {
	C.dlerror()

	filename := C.CString(path)
	h := C.dlopen(filename, C.int(mode))
	C.free(unsafe.Pointer(filename))
	if h == nil {
		return 0, lastError("could not open")
	}
	return uintptr(h), nil
}

func dlsym(handle uintptr, name string) (uintptr, error) {
	C.dlerror()

	sym := C.CString(name)
	s := C.dlsym(*(*unsafe.Pointer)(unsafe.Pointer(&handle)), sym)
	C.free(unsafe.Pointer(sym))
	dlErrMsg := C.dlerror()
	if dlErrMsg != nil {
		return 0, Error(C.GoString(dlErrMsg))
	}
	return uintptr(s), nil
}

func dlclose(handle uintptr) error {
	C.dlerror()

	if C.dlclose(*(*unsafe.Pointer)(unsafe.Pointer(&handle))) != 0 {
		return lastError("could not close")
	}
	return nil
}

// lastError returns the pending dlerror message, or an error with the
// fallback message if there is none.
func lastError(fallback string) error {
	dlErrMsg := C.dlerror()
	if dlErrMsg == nil {
		return errors.New(fallback)
	}
	return Error(C.GoString(dlErrMsg))
}
