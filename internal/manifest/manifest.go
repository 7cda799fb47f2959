// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package manifest provides library check manifests. A manifest names a
// dynamic library and a set of functions to call and variables to inspect,
// each with an optional CEL expectation.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a library check manifest.
type Manifest struct {
	// Library is the path of the library to open. If Library has a
	// directory component and is relative, it is interpreted relative
	// to the directory holding the manifest file.
	Library string `json:"library" toml:"library"`
	// Extension indicates that the platform's library extension should
	// be appended to Library.
	Extension bool `json:"extension,omitempty" toml:"extension"`
	// Mode is the symbol binding mode, "now" or "lazy". The default
	// is "now".
	Mode      string     `json:"mode,omitempty" toml:"mode"`
	Functions []Function `json:"function,omitempty" toml:"function"`
	Variables []Variable `json:"variable,omitempty" toml:"variable"`
}

// Function is a function call check.
type Function struct {
	Name string `json:"name" toml:"name"`
	// Signature is the C signature of the function in the syntax
	// of ctype.ParseSignature.
	Signature string `json:"signature" toml:"signature"`
	Args      []any  `json:"args,omitempty" toml:"args"`
	// Expect is a CEL expression that must evaluate to true. The
	// expression has access to result, the call's result, and args,
	// the call's arguments.
	Expect string `json:"expect,omitempty" toml:"expect"`
}

// Variable is a variable check.
type Variable struct {
	Name string `json:"name" toml:"name"`
	Type string `json:"type" toml:"type"`
	// Set is a value to write to the variable before it is checked.
	Set any `json:"set,omitempty" toml:"set"`
	// Expect is a CEL expression that must evaluate to true. The
	// expression has access to value, the variable's value.
	Expect string `json:"expect,omitempty" toml:"expect"`
}

// Schema is the CUE schema for a valid manifest.
const Schema = `
{
	library:    string & != ""
	extension?: bool
	mode?:      "now" | "lazy"
	function?:  [... _#function]
	variable?:  [... _#variable]
}

_#function: {
	name:      _#symbol
	signature: =~"^[^()]+\\(.*\\)$"
	args?:     [... number | string | bool]
	expect?:   string
}

_#variable: {
	name:    _#symbol
	type:    string & != ""
	set?:    number | string | bool
	expect?: string
}

_#symbol: =~"^[A-Za-z_][A-Za-z0-9_$.@]*$"
`

// ValidationError is returned by Load when a manifest does not conform
// to Schema.
type ValidationError struct {
	// Paths holds the invalid paths in the manifest.
	Paths [][]string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if strings.ContainsRune(m.Library, '/') || strings.ContainsRune(m.Library, filepath.Separator) {
		if !filepath.IsAbs(m.Library) {
			m.Library = filepath.Join(filepath.Dir(path), m.Library)
		}
	}
	return m, nil
}

// Parse parses and validates a TOML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		keys := make([]error, len(undec))
		for i, k := range undec {
			keys[i] = fmt.Errorf("unknown key %q", k)
		}
		return nil, errors.Join(keys...)
	}
	paths, err := Validate(Schema, &m)
	if err != nil {
		return nil, &ValidationError{Paths: paths, Err: err}
	}
	return &m, nil
}
