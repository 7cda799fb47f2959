// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin || linux) && !cgo

package dylib

import "github.com/ebitengine/purego"

// Mode is a set of dlopen flags. See man 3 dlopen for details.
type Mode int

const (
	Lazy   = Mode(purego.RTLD_LAZY)
	Now    = Mode(purego.RTLD_NOW)
	Global = Mode(purego.RTLD_GLOBAL)
	Local  = Mode(purego.RTLD_LOCAL)
)

func dlopen(path string, mode Mode) (uintptr, error) {
	h, err := purego.Dlopen(path, int(mode))
	if err != nil {
		return 0, Error(err.Error())
	}
	return h, nil
}

func dlsym(handle uintptr, name string) (uintptr, error) {
	s, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, Error(err.Error())
	}
	return s, nil
}

func dlclose(handle uintptr) error {
	err := purego.Dlclose(handle)
	if err != nil {
		return Error(err.Error())
	}
	return nil
}
