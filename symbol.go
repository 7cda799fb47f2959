// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dylib

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// Func resolves the named function in l and returns it as a value of
// the func type F. F must describe the C signature of the function; the
// correspondence between Go and C types is that of purego.RegisterFunc.
//
// The returned func must not be called after l has been closed, and l
// must be kept reachable while it is in use.
func Func[F any](l *Lib, name string) (F, error) {
	var fn F
	v, err := FuncOf(l, name, reflect.TypeFor[F]())
	if err != nil {
		return fn, err
	}
	return v.Interface().(F), nil
}

// FuncOf resolves the named function in l and returns it as a func
// value of type typ.
func FuncOf(l *Lib, name string, typ reflect.Type) (reflect.Value, error) {
	addr, err := l.Symbol(name)
	if err != nil {
		return reflect.Value{}, err
	}
	if typ == nil || typ.Kind() != reflect.Func {
		return reflect.Value{}, &SymbolError{Name: name, Path: l.Name(), Err: fmt.Errorf("%w: %v", ErrNotFunc, typ)}
	}
	fp := reflect.New(typ)
	err = bind(fp.Interface(), addr)
	if err != nil {
		return reflect.Value{}, &SymbolError{Name: name, Path: l.Name(), Err: err}
	}
	return fp.Elem(), nil
}

// Var resolves the named variable in l and returns a pointer to it.
// Writes through the pointer alter the library's copy of the variable.
//
// The pointer is valid only until l is closed, and l must be kept
// reachable while the pointer is in use.
func Var[T any](l *Lib, name string) (*T, error) {
	addr, err := l.Symbol(name)
	if err != nil {
		return nil, err
	}
	return (*T)(pointer(addr)), nil
}

// VarOf resolves the named variable in l and returns an addressable
// value of type typ referring to it. The value is subject to the same
// lifetime rules as the pointer returned by Var.
func VarOf(l *Lib, name string, typ reflect.Type) (reflect.Value, error) {
	addr, err := l.Symbol(name)
	if err != nil {
		return reflect.Value{}, err
	}
	if typ == nil {
		return reflect.Value{}, &SymbolError{Name: name, Path: l.Name(), Err: errors.New("nil variable type")}
	}
	return reflect.NewAt(typ, pointer(addr)).Elem(), nil
}

// pointer converts a symbol address to a pointer. The address refers to
// memory outside the Go heap.
func pointer(addr uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}
