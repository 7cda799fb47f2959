// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package version reports the build version.
package version

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

// Print writes the program name and build version to w.
func Print(w io.Writer, prog string) error {
	v, err := String()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, prog, v)
	return err
}

// String returns the module version of the binary, with the VCS
// revision and modification state when they are recorded.
func String() (string, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", errors.New("no build info")
	}
	var revision, modified string
	for _, bs := range bi.Settings {
		switch bs.Key {
		case "vcs.revision":
			revision = bs.Value
		case "vcs.modified":
			modified = bs.Value
		}
	}
	switch {
	case revision == "":
		return bi.Main.Version, nil
	case modified == "true":
		return bi.Main.Version + " " + revision + " (modified)", nil
	default:
		return bi.Main.Version + " " + revision, nil
	}
}
