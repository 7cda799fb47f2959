// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package dylib

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Mode is a set of dlopen flags. The flags have no effect on windows.
type Mode int

const (
	Lazy     Mode = 0
	Now      Mode = 0
	Global   Mode = 0
	Local    Mode = 0
	NoDelete Mode = 0
	NoLoad   Mode = 0
	DeepBind Mode = 0
)

func dlopen(path string, _ Mode) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, fmt.Errorf("LoadLibrary: %w", err)
	}
	return uintptr(h), nil
}

func dlsym(handle uintptr, name string) (uintptr, error) {
	s, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, fmt.Errorf("GetProcAddress: %w", err)
	}
	return s, nil
}

func dlclose(handle uintptr) error {
	err := windows.FreeLibrary(windows.Handle(handle))
	if err != nil {
		return fmt.Errorf("FreeLibrary: %w", err)
	}
	return nil
}
