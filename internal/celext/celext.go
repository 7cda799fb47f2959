// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package celext provides extensions to ease checking native values in
// CEL programs.
package celext

import (
	"context"
	"log/slog"
	"math"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"google.golang.org/protobuf/types/known/structpb"
)

// Lib returns a cel.EnvOption to configure extended functions to ease
// checking values obtained from native libraries.
//
// # Within
//
// Returns whether the receiver is within the given tolerance of the
// first parameter:
//
//	<double>.within(<double>, <double>) -> <bool>
//
// Examples:
//
//	(3.14159).within(3.14, 0.01)  // return true
//	(3.14159).within(3.0, 0.1)    // return false
//
// # Is Null
//
// Returns whether the receiver is a null pointer value:
//
//	<uint>.is_null() -> <bool>
//
// Examples:
//
//	0u.is_null()  // return true
//	1u.is_null()  // return false
//
// # Debug
//
// The second parameter is returned unaltered and the value is logged to the
// lib's logger:
//
//	debug(<string>, <dyn>) -> <dyn>
//
// Examples:
//
//	debug("tag", expr) // return expr even if it is an error and logs with "tag".
func Lib(log *slog.Logger) cel.EnvOption {
	return cel.Lib(lib{log: log})
}

type lib struct {
	log *slog.Logger
}

func (l lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("within",
			cel.MemberOverload(
				"double_within_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType, cel.DoubleType},
				cel.BoolType,
				cel.FunctionBinding(within),
			),
		),
		cel.Function("is_null",
			cel.MemberOverload(
				"uint_is_null",
				[]*cel.Type{cel.UintType},
				cel.BoolType,
				cel.UnaryBinding(isNull),
			),
		),
		cel.Function("debug",
			cel.Overload(
				"debug_string_dyn",
				[]*cel.Type{cel.StringType, cel.DynType},
				cel.DynType,
				cel.BinaryBinding(l.logDebug),
				cel.OverloadIsNonStrict(),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption { return nil }

func within(args ...ref.Val) ref.Val {
	if len(args) != 3 {
		return types.NewErr("no such overload")
	}
	var f [3]float64
	for i, a := range args {
		d, ok := a.(types.Double)
		if !ok {
			return types.ValOrErr(a, "no such overload")
		}
		f[i] = float64(d)
	}
	if f[2] < 0 {
		return types.NewErr("negative tolerance: %v", f[2])
	}
	return types.Bool(math.Abs(f[0]-f[1]) <= f[2])
}

func isNull(arg ref.Val) ref.Val {
	u, ok := arg.(types.Uint)
	if !ok {
		return types.ValOrErr(arg, "no such overload")
	}
	return types.Bool(u == 0)
}

func (l lib) logDebug(arg0, arg1 ref.Val) ref.Val {
	tag, ok := arg0.(types.String)
	if !ok {
		return types.ValOrErr(tag, "no such overload")
	}
	if l.log == nil {
		return arg1
	}
	val, err := arg1.ConvertToNative(reflect.TypeOf((*structpb.Value)(nil)))
	if err != nil {
		l.log.LogAttrs(context.Background(), slog.LevelError, "cel debug log error", slog.String("tag", string(tag)), slog.Any("error", err))
	} else {
		l.log.LogAttrs(context.Background(), slog.LevelDebug, "cel debug log", slog.String("tag", string(tag)), slog.Any("value", val.(*structpb.Value).AsInterface()))
	}
	return arg1
}
