// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ctype provides a textual vocabulary of C scalar types and
// function signatures for binding dynamic library symbols at run time.
package ctype

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/kortschak/dylib"
)

// Kind is a C scalar type.
type Kind uint8

const (
	Invalid Kind = iota
	Void
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Pointer
	String
)

var kindNames = [...]string{
	Invalid: "invalid",
	Void:    "void",
	Bool:    "bool",
	Int8:    "i8",
	Int16:   "i16",
	Int32:   "i32",
	Int64:   "i64",
	Uint8:   "u8",
	Uint16:  "u16",
	Uint32:  "u32",
	Uint64:  "u64",
	Float32: "f32",
	Float64: "f64",
	Pointer: "ptr",
	String:  "str",
}

// aliases maps C spellings to kinds.
var aliases = map[string]Kind{
	"_Bool":    Bool,
	"char":     Int8,
	"short":    Int16,
	"int":      Int32,
	"unsigned": Uint32,
	"float":    Float32,
	"double":   Float64,
	"int8_t":   Int8,
	"int16_t":  Int16,
	"int32_t":  Int32,
	"int64_t":  Int64,
	"uint8_t":  Uint8,
	"uint16_t": Uint16,
	"uint32_t": Uint32,
	"uint64_t": Uint64,
	"void*":    Pointer,
	"char*":    String,
}

var kindTypes = [...]reflect.Type{
	Bool:    reflect.TypeFor[bool](),
	Int8:    reflect.TypeFor[int8](),
	Int16:   reflect.TypeFor[int16](),
	Int32:   reflect.TypeFor[int32](),
	Int64:   reflect.TypeFor[int64](),
	Uint8:   reflect.TypeFor[uint8](),
	Uint16:  reflect.TypeFor[uint16](),
	Uint32:  reflect.TypeFor[uint32](),
	Uint64:  reflect.TypeFor[uint64](),
	Float32: reflect.TypeFor[float32](),
	Float64: reflect.TypeFor[float64](),
	Pointer: reflect.TypeFor[uintptr](),
	String:  reflect.TypeFor[string](),
	Void:    nil,
	Invalid: nil,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Type returns the Go type corresponding to k. Void and Invalid have
// no type.
func (k Kind) Type() reflect.Type {
	if int(k) < len(kindTypes) {
		return kindTypes[k]
	}
	return nil
}

// ErrUnknownType is returned when a type name is not recognised.
var ErrUnknownType = errors.New("unknown type")

// Parse returns the Kind named by s. Names are the short forms used by
// Kind.String, or a C spelling such as "double" or "char*".
func Parse(s string) (Kind, error) {
	s = strings.Join(strings.Fields(s), "")
	for k, n := range kindNames {
		if n == s && Kind(k) != Invalid {
			return Kind(k), nil
		}
	}
	k, ok := aliases[s]
	if !ok {
		return Invalid, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return k, nil
}

// Signature is a C function signature.
type Signature struct {
	Result Kind
	Params []Kind
}

// ParseSignature parses a signature of the form "result(param, ...)".
// An empty parameter list may be written as "()" or "(void)".
func ParseSignature(s string) (Signature, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Signature{}, fmt.Errorf("invalid signature %q: want result(params)", s)
	}
	res, err := Parse(s[:open])
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature %q: result: %w", s, err)
	}
	sig := Signature{Result: res}
	list := strings.TrimSpace(s[open+1 : len(s)-1])
	if list == "" || list == "void" {
		return sig, nil
	}
	for i, p := range strings.Split(list, ",") {
		k, err := Parse(p)
		if err != nil {
			return Signature{}, fmt.Errorf("invalid signature %q: param %d: %w", s, i, err)
		}
		if k == Void {
			return Signature{}, fmt.Errorf("invalid signature %q: param %d: void parameter", s, i)
		}
		sig.Params = append(sig.Params, k)
	}
	return sig, nil
}

func (s Signature) String() string {
	var buf strings.Builder
	buf.WriteString(s.Result.String())
	buf.WriteByte('(')
	for i, p := range s.Params {
		if i != 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(p.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// FuncType returns the Go func type for the signature.
func (s Signature) FuncType() reflect.Type {
	in := make([]reflect.Type, len(s.Params))
	for i, p := range s.Params {
		in[i] = p.Type()
	}
	var out []reflect.Type
	if s.Result != Void {
		out = []reflect.Type{s.Result.Type()}
	}
	return reflect.FuncOf(in, out, false)
}

// ParseValue parses s as a value of kind k. Integers may be written with
// a base prefix as accepted by strconv.ParseInt with base zero.
func (k Kind) ParseValue(s string) (reflect.Value, error) {
	typ := k.Type()
	if typ == nil {
		return reflect.Value{}, fmt.Errorf("no value of type %s", k)
	}
	v := reflect.New(typ).Elem()
	switch typ.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 0, typ.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 0, typ.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, typ.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	case reflect.String:
		v.SetString(s)
	}
	return v, nil
}

// Convert converts a decoded configuration value, one of bool, int64,
// float64 or string, to a value of kind k. Numeric conversions must be
// exact.
func (k Kind) Convert(x any) (reflect.Value, error) {
	if s, ok := x.(string); ok && k != String {
		return k.ParseValue(s)
	}
	typ := k.Type()
	if typ == nil {
		return reflect.Value{}, fmt.Errorf("no value of type %s", k)
	}
	v := reflect.New(typ).Elem()
	switch x := x.(type) {
	case bool:
		if typ.Kind() != reflect.Bool {
			break
		}
		v.SetBool(x)
		return v, nil
	case string:
		v.SetString(x)
		return v, nil
	case int64:
		switch typ.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v.OverflowInt(x) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", x, k)
			}
			v.SetInt(x)
			return v, nil
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if x < 0 || v.OverflowUint(uint64(x)) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", x, k)
			}
			v.SetUint(uint64(x))
			return v, nil
		case reflect.Float32, reflect.Float64:
			v.SetFloat(float64(x))
			return v, nil
		}
	case float64:
		switch typ.Kind() {
		case reflect.Float32, reflect.Float64:
			if v.OverflowFloat(x) {
				return reflect.Value{}, fmt.Errorf("%v overflows %s", x, k)
			}
			v.SetFloat(x)
			return v, nil
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 || v.OverflowInt(int64(x)) {
				return reflect.Value{}, fmt.Errorf("%v is not representable as %s", x, k)
			}
			v.SetInt(int64(x))
			return v, nil
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if x != math.Trunc(x) || x < 0 || x >= math.MaxUint64 || v.OverflowUint(uint64(x)) {
				return reflect.Value{}, fmt.Errorf("%v is not representable as %s", x, k)
			}
			v.SetUint(uint64(x))
			return v, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %v (%T) as %s", x, x, k)
}

// Native returns the value held by v as an int64, uint64, float64, bool
// or string. An invalid v returns nil.
func Native(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Invalid:
		return nil
	default:
		return v.Interface()
	}
}

// Call calls the named function in l with the provided arguments. The
// result is invalid when sig has a void result.
func Call(l *dylib.Lib, name string, sig Signature, args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(sig.Params) {
		return reflect.Value{}, fmt.Errorf("%s: got %d arguments for %s", name, len(args), sig)
	}
	for i, a := range args {
		if a.Type() != sig.Params[i].Type() {
			return reflect.Value{}, fmt.Errorf("%s: argument %d: got %s want %s", name, i, a.Type(), sig.Params[i])
		}
	}
	fn, err := dylib.FuncOf(l, name, sig.FuncType())
	if err != nil {
		return reflect.Value{}, err
	}
	out := fn.Call(args)
	if len(out) == 0 {
		return reflect.Value{}, nil
	}
	return out[0], nil
}

// ErrVarKind is returned when a variable is accessed with a kind that
// cannot describe variable storage.
var ErrVarKind = errors.New("invalid variable type")

// Get returns the current value of the named variable in l.
func Get(l *dylib.Lib, name string, k Kind) (reflect.Value, error) {
	v, err := variable(l, name, k)
	if err != nil {
		return reflect.Value{}, err
	}
	// Copy out of library memory.
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c, nil
}

// Set sets the named variable in l to val.
func Set(l *dylib.Lib, name string, k Kind, val reflect.Value) error {
	v, err := variable(l, name, k)
	if err != nil {
		return err
	}
	if val.Type() != v.Type() {
		return fmt.Errorf("%s: cannot set %s variable with %s", name, k, val.Type())
	}
	v.Set(val)
	return nil
}

func variable(l *dylib.Lib, name string, k Kind) (reflect.Value, error) {
	switch k {
	case Void, String, Invalid:
		return reflect.Value{}, fmt.Errorf("%s: %w: %s", name, ErrVarKind, k)
	}
	return dylib.VarOf(l, name, k.Type())
}
