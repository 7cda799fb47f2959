// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows && !(unix && cgo) && !((darwin || linux) && !cgo)

package dylib

import "errors"

// Mode is a set of dlopen flags. The flags have no effect on this platform.
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

func dlopen(string, Mode) (uintptr, error) { return 0, errors.ErrUnsupported }

func dlsym(uintptr, string) (uintptr, error) { return 0, errors.ErrUnsupported }

func dlclose(uintptr) error { return errors.ErrUnsupported }
