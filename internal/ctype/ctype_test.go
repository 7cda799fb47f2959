// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctype

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kortschak/dylib"
	"github.com/kortschak/dylib/internal/dyntest"
)

var fixture string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ctype-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fixture, err = dyntest.Build(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture tests will be skipped: %v\n", err)
	}
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

var parseSignatureTests = []struct {
	in      string
	want    Signature
	wantErr bool
}{
	{in: "f64(f64,f64)", want: Signature{Result: Float64, Params: []Kind{Float64, Float64}}},
	{in: "double(double, double)", want: Signature{Result: Float64, Params: []Kind{Float64, Float64}}},
	{in: "void()", want: Signature{Result: Void}},
	{in: "void(void)", want: Signature{Result: Void}},
	{in: " i32 ( char * ) ", want: Signature{Result: Int32, Params: []Kind{String}}},
	{in: "str()", want: Signature{Result: String}},
	{in: "ptr(u64,bool,int8_t)", want: Signature{Result: Pointer, Params: []Kind{Uint64, Bool, Int8}}},
	{in: "f64", wantErr: true},
	{in: "f64(", wantErr: true},
	{in: "(f64)", wantErr: true},
	{in: "f64(f64,void)", wantErr: true},
	{in: "f64(f64,)", wantErr: true},
	{in: "quad(f64)", wantErr: true},
}

func TestParseSignature(t *testing.T) {
	for _, test := range parseSignatureTests {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseSignature(test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error result: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected signature:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
			again, err := ParseSignature(got.String())
			if err != nil {
				t.Fatalf("unexpected error reparsing %q: %v", got, err)
			}
			if !cmp.Equal(got, again) {
				t.Errorf("signature did not round trip: %s != %s", got, again)
			}
		})
	}
}

func TestFuncType(t *testing.T) {
	sig := Signature{Result: Float64, Params: []Kind{Float64, Float64}}
	want := reflect.TypeFor[func(float64, float64) float64]()
	if got := sig.FuncType(); got != want {
		t.Errorf("unexpected func type: got:%v want:%v", got, want)
	}
	sig = Signature{Result: Void}
	want = reflect.TypeFor[func()]()
	if got := sig.FuncType(); got != want {
		t.Errorf("unexpected func type: got:%v want:%v", got, want)
	}
}

func TestParseUnknown(t *testing.T) {
	for _, name := range []string{"", "invalid", "long double", "quad"} {
		_, err := Parse(name)
		if !errors.Is(err, ErrUnknownType) {
			t.Errorf("unexpected error for %q: got:%v want:%v", name, err, ErrUnknownType)
		}
	}
}

var parseValueTests = []struct {
	kind    Kind
	in      string
	want    any
	wantErr bool
}{
	{kind: Float64, in: "3.14159", want: 3.14159},
	{kind: Float32, in: "1.5", want: float32(1.5)},
	{kind: Int32, in: "-7", want: int32(-7)},
	{kind: Int8, in: "128", wantErr: true},
	{kind: Uint8, in: "0xff", want: uint8(255)},
	{kind: Uint16, in: "-1", wantErr: true},
	{kind: Pointer, in: "0x1", want: uintptr(1)},
	{kind: Bool, in: "true", want: true},
	{kind: String, in: "hello", want: "hello"},
	{kind: Void, in: "", wantErr: true},
}

func TestParseValue(t *testing.T) {
	for _, test := range parseValueTests {
		t.Run(fmt.Sprintf("%s_%s", test.kind, test.in), func(t *testing.T) {
			got, err := test.kind.ParseValue(test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error result: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if !cmp.Equal(test.want, got.Interface()) {
				t.Errorf("unexpected value: got:%#v want:%#v", got.Interface(), test.want)
			}
		})
	}
}

var convertTests = []struct {
	kind    Kind
	in      any
	want    any
	wantErr bool
}{
	{kind: Float64, in: int64(5), want: float64(5)},
	{kind: Float64, in: 2.5, want: 2.5},
	{kind: Int32, in: int64(10), want: int32(10)},
	{kind: Int32, in: 10.0, want: int32(10)},
	{kind: Int32, in: 10.5, wantErr: true},
	{kind: Int8, in: int64(300), wantErr: true},
	{kind: Uint32, in: int64(-1), wantErr: true},
	{kind: Pointer, in: int64(1), want: uintptr(1)},
	{kind: Float32, in: 1e300, wantErr: true},
	{kind: Bool, in: true, want: true},
	{kind: Bool, in: int64(1), wantErr: true},
	{kind: String, in: "x", want: "x"},
	{kind: Int64, in: "0x10", want: int64(16)},
}

func TestConvert(t *testing.T) {
	for _, test := range convertTests {
		t.Run(fmt.Sprintf("%s_%v", test.kind, test.in), func(t *testing.T) {
			got, err := test.kind.Convert(test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error result: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if !cmp.Equal(test.want, got.Interface()) {
				t.Errorf("unexpected value: got:%#v want:%#v", got.Interface(), test.want)
			}
		})
	}
}

func TestNative(t *testing.T) {
	got := []any{
		Native(reflect.ValueOf(int32(-3))),
		Native(reflect.ValueOf(uintptr(1))),
		Native(reflect.ValueOf(float32(1.5))),
		Native(reflect.ValueOf(true)),
		Native(reflect.ValueOf("s")),
		Native(reflect.Value{}),
	}
	want := []any{int64(-3), uint64(1), 1.5, true, "s", nil}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected native values:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

func openFixture(t *testing.T) *dylib.Lib {
	t.Helper()
	if fixture == "" {
		t.Skip("no fixture library")
	}
	lib, err := dylib.OpenExt(fixture, dylib.Extension)
	if err != nil {
		t.Fatalf("unexpected error opening fixture: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

var callTests = []struct {
	name string
	sig  string
	args []string
	want any
}{
	{name: "adder", sig: "f64(f64,f64)", args: []string{"5", "10"}, want: 15.0},
	{name: "add_i32", sig: "i32(i32,i32)", args: []string{"-2", "7"}, want: int64(5)},
	{name: "str_len", sig: "i32(str)", args: []string{"hello"}, want: int64(5)},
	{name: "greeting", sig: "str()", want: "hello"},
	{name: "increment", sig: "void()", want: nil},
}

func TestCall(t *testing.T) {
	lib := openFixture(t)
	for _, test := range callTests {
		t.Run(test.name, func(t *testing.T) {
			sig, err := ParseSignature(test.sig)
			if err != nil {
				t.Fatalf("unexpected error parsing signature: %v", err)
			}
			args := make([]reflect.Value, len(test.args))
			for i, a := range test.args {
				args[i], err = sig.Params[i].ParseValue(a)
				if err != nil {
					t.Fatalf("unexpected error parsing argument %d: %v", i, err)
				}
			}
			got, err := Call(lib, test.name, sig, args)
			if err != nil {
				t.Fatalf("unexpected error calling %s: %v", test.name, err)
			}
			if !cmp.Equal(test.want, Native(got)) {
				t.Errorf("unexpected result: got:%#v want:%#v", Native(got), test.want)
			}
		})
	}
}

func TestCallArgs(t *testing.T) {
	lib := openFixture(t)
	sig, _ := ParseSignature("f64(f64,f64)")
	_, err := Call(lib, "adder", sig, []reflect.Value{reflect.ValueOf(1.0)})
	if err == nil {
		t.Error("expected error for short argument list")
	}
	_, err = Call(lib, "adder", sig, []reflect.Value{reflect.ValueOf(1.0), reflect.ValueOf(int32(1))})
	if err == nil {
		t.Error("expected error for mistyped argument")
	}
	_, err = Call(lib, "unknown", sig, []reflect.Value{reflect.ValueOf(1.0), reflect.ValueOf(1.0)})
	var serr *dylib.SymbolError
	if !errors.As(err, &serr) {
		t.Errorf("unexpected error type for unknown function: got:%T want:%T", err, serr)
	}
}

func TestGetSet(t *testing.T) {
	lib := openFixture(t)

	pi, err := Get(lib, "pi_value", Float64)
	if err != nil {
		t.Fatalf("unexpected error getting pi_value: %v", err)
	}
	if got := Native(pi); got != 3.14159 {
		t.Errorf("unexpected pi_value: got:%v want:3.14159", got)
	}

	orig, err := Get(lib, "counter", Int32)
	if err != nil {
		t.Fatalf("unexpected error getting counter: %v", err)
	}
	defer Set(lib, "counter", Int32, orig)
	err = Set(lib, "counter", Int32, reflect.ValueOf(int32(41)))
	if err != nil {
		t.Fatalf("unexpected error setting counter: %v", err)
	}
	got, err := Get(lib, "counter", Int32)
	if err != nil {
		t.Fatalf("unexpected error getting counter: %v", err)
	}
	if Native(got) != int64(41) {
		t.Errorf("unexpected counter: got:%v want:41", Native(got))
	}

	err = Set(lib, "counter", Int32, reflect.ValueOf(int64(1)))
	if err == nil {
		t.Error("expected error setting with mistyped value")
	}
	_, err = Get(lib, "ptr", String)
	if !errors.Is(err, ErrVarKind) {
		t.Errorf("unexpected error for string variable: got:%v want:%v", err, ErrVarKind)
	}
}
