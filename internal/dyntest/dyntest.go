// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dyntest builds the native test fixture library.
package dyntest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/execabs"

	"github.com/kortschak/dylib"
)

//go:embed testdata/dynlib.c
var source []byte

// Name is the file name prefix of the fixture library.
const Name = "dynlib"

// ErrNoCompiler is returned by Build when no C compiler is available.
var ErrNoCompiler = errors.New("no C compiler")

// Build compiles the fixture library into dir and returns the path prefix
// of the library without its extension. The library exports:
//
//	double pi_value = 3.14159;
//	void *ptr = (void *)1;
//	int32_t counter = 0;
//	double adder(double, double);
//	void print_hello(void);
//	void increment(void);
//	int32_t add_i32(int32_t, int32_t);
//	int32_t str_len(const char *);
//	const char *greeting(void);
//
// The compiler is taken from $CC, falling back to cc.
func Build(dir string) (string, error) {
	cc := strings.Fields(os.Getenv("CC"))
	if len(cc) == 0 {
		cc = []string{"cc"}
	}
	path, err := execabs.LookPath(cc[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCompiler, err)
	}
	src := filepath.Join(dir, Name+".c")
	err = os.WriteFile(src, source, 0o644)
	if err != nil {
		return "", err
	}
	prefix := filepath.Join(dir, Name)
	args := append(cc[1:], "-shared", "-fPIC", "-o", prefix+dylib.Extension, src)
	out, err := execabs.Command(path, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to build fixture: %w\n%s", err, out)
	}
	return prefix, nil
}
