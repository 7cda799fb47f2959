// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var parseTests = []struct {
	name      string
	data      string
	want      *Manifest
	wantPaths [][]string
	wantErr   bool
}{
	{
		name: "valid",
		data: `
library = "./dynlib"
extension = true
mode = "lazy"

[[function]]
name = "adder"
signature = "f64(f64,f64)"
args = [5, 10.5]
expect = "result == 15.5"

[[variable]]
name = "pi_value"
type = "f64"
set = 1
expect = "value == 1.0"
`,
		want: &Manifest{
			Library:   "./dynlib",
			Extension: true,
			Mode:      "lazy",
			Functions: []Function{{
				Name:      "adder",
				Signature: "f64(f64,f64)",
				Args:      []any{int64(5), 10.5},
				Expect:    "result == 15.5",
			}},
			Variables: []Variable{{
				Name:   "pi_value",
				Type:   "f64",
				Set:    int64(1),
				Expect: "value == 1.0",
			}},
		},
	},
	{
		name: "minimal",
		data: `library = "libm.so.6"`,
		want: &Manifest{Library: "libm.so.6"},
	},
	{
		name:      "no_library",
		data:      `extension = true`,
		wantPaths: [][]string{{"library"}},
		wantErr:   true,
	},
	{
		name:      "bad_mode",
		data:      "library = \"x\"\nmode = \"eager\"",
		wantPaths: [][]string{{"mode"}},
		wantErr:   true,
	},
	{
		name: "bad_function",
		data: `
library = "x"

[[function]]
name = "1adder"
signature = "f64"
`,
		wantPaths: [][]string{
			{"function", "0", "name"},
			{"function", "0", "signature"},
		},
		wantErr: true,
	},
	{
		name: "bad_variable",
		data: `
library = "x"

[[variable]]
name = "pi_value"
type = ""
`,
		wantPaths: [][]string{{"variable", "0", "type"}},
		wantErr:   true,
	},
	{
		name:    "unknown_key",
		data:    "library = \"x\"\nlibary = \"y\"",
		wantErr: true,
	},
	{
		name:    "bad_toml",
		data:    "library = ",
		wantErr: true,
	},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse([]byte(test.data))
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error result: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					if !cmp.Equal(test.wantPaths, verr.Paths) {
						t.Errorf("unexpected invalid paths:\n--- want:\n+++ got:\n%s", cmp.Diff(test.wantPaths, verr.Paths))
					}
				} else if test.wantPaths != nil {
					t.Errorf("expected validation error, got %T: %v", err, err)
				}
				return
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected manifest:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

func TestLoadRelative(t *testing.T) {
	dir := t.TempDir()
	for _, test := range []struct {
		library string
		want    string
	}{
		{library: "./dynlib", want: filepath.Join(dir, "dynlib")},
		{library: "sub/dynlib", want: filepath.Join(dir, "sub", "dynlib")},
		{library: "libm.so.6", want: "libm.so.6"},
	} {
		path := filepath.Join(dir, "manifest.toml")
		err := os.WriteFile(path, []byte(`library = "`+test.library+`"`), 0o644)
		if err != nil {
			t.Fatalf("unexpected error writing manifest: %v", err)
		}
		m, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error loading manifest: %v", err)
		}
		if m.Library != test.want {
			t.Errorf("unexpected library path for %q: got:%q want:%q", test.library, m.Library, test.want)
		}
	}
}

func TestExpect(t *testing.T) {
	for _, test := range []struct {
		src     string
		decls   string
		act     map[string]any
		want    bool
		wantErr bool
	}{
		{src: "", decls: "value", want: true},
		{src: "value == 3.14159", decls: "value", act: map[string]any{"value": 3.14159}, want: true},
		{src: "value > 4.0", decls: "value", act: map[string]any{"value": 3.14159}, want: false},
		{src: "value == 1u", decls: "value", act: map[string]any{"value": uint64(1)}, want: true},
		{src: "result == args[0] + args[1]", decls: "function", act: map[string]any{"result": 15.0, "args": []any{5.0, 10.0}}, want: true},
		{src: "result == null", decls: "function", act: map[string]any{"result": nil, "args": []any{}}, want: true},
		{src: "value + ", decls: "value", wantErr: true},
		{src: "1 + 2", decls: "value", act: map[string]any{"value": 1.0}, wantErr: true},
		{src: "result", decls: "value", wantErr: true},
		{src: "value.within(3.14, 0.01)", decls: "value", act: map[string]any{"value": 3.14159}, want: true},
		{src: "!value.is_null()", decls: "value", act: map[string]any{"value": uint64(1)}, want: true},
		{src: `debug("sum", result) == 15.0`, decls: "function", act: map[string]any{"result": 15.0, "args": []any{}}, want: true},
	} {
		t.Run(test.src, func(t *testing.T) {
			decls := variableVars
			if test.decls == "function" {
				decls = functionVars
			}
			got, err := expect(test.src, nil, decls, test.act)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error result: got:%v want error:%t", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("unexpected result: got:%t want:%t", got, test.want)
			}
		})
	}
}
