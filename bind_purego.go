// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin || freebsd || linux || windows) && (amd64 || arm64)

package dylib

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// bind sets the func pointed to by fptr to call the C function at addr.
func bind(fptr any, addr uintptr) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("cannot bind function: %v", r)
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}
