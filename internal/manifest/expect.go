// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/kortschak/dylib/internal/celext"
)

// functionVars and variableVars are the declarations available to
// function and variable expectations. The celext library is
// also available.
var (
	functionVars = []cel.EnvOption{
		cel.Variable("result", cel.DynType),
		cel.Variable("args", cel.ListType(cel.DynType)),
	}
	variableVars = []cel.EnvOption{
		cel.Variable("value", cel.DynType),
	}
)

func compile(src string, log *slog.Logger, decls []cel.EnvOption) (cel.Program, error) {
	env, err := cel.NewEnv(append([]cel.EnvOption{celext.Lib(log)}, decls...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create env: %v", err)
	}

	ast, iss := env.Compile(src)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed compilation: %v", iss.Err())
	}
	if !ast.OutputType().IsAssignableType(cel.BoolType) {
		return nil, fmt.Errorf("expectation has type %s, want bool", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed program instantiation: %v", err)
	}
	return prg, nil
}

// expect evaluates the expectation src against the provided activation.
// An empty src is always satisfied. Calls to debug are logged to log.
func expect(src string, log *slog.Logger, decls []cel.EnvOption, act map[string]any) (bool, error) {
	if src == "" {
		return true, nil
	}
	prg, err := compile(src, log, decls)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(act)
	if err != nil {
		return false, fmt.Errorf("failed eval: %v", err)
	}
	ok, isBool := out.(types.Bool)
	if !isBool {
		return false, fmt.Errorf("expectation evaluated to %v, want bool", out.Type())
	}
	return bool(ok), nil
}
