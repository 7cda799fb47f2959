// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/cel-go/cel"

	"github.com/kortschak/dylib"
	"github.com/kortschak/dylib/internal/ctype"
)

// Report is the result of checking a manifest.
type Report struct {
	Library string
	Results []Result
}

// Failed returns the number of failed checks.
func (r Report) Failed() int {
	var n int
	for _, res := range r.Results {
		if !res.Pass {
			n++
		}
	}
	return n
}

// Result is the result of a single check.
type Result struct {
	Kind  string // "function" or "variable"
	Name  string
	Value any   // normalised by ctype.Native
	Pass  bool  // the check succeeded and the expectation held
	Err   error // reason for failure
}

func (r Result) String() string {
	status := "ok"
	if !r.Pass {
		status = "FAIL"
	}
	switch {
	case r.Err != nil && r.Value != nil:
		return fmt.Sprintf("%s\t%s %s = %v: %v", status, r.Kind, r.Name, r.Value, r.Err)
	case r.Err != nil:
		return fmt.Sprintf("%s\t%s %s: %v", status, r.Kind, r.Name, r.Err)
	}
	return fmt.Sprintf("%s\t%s %s = %v", status, r.Kind, r.Name, r.Value)
}

// ErrExpectation is the error reported for a check whose expectation
// evaluated to false.
var ErrExpectation = errors.New("expectation not met")

// LoaderMode returns the dylib loader mode for the manifest.
func (m *Manifest) LoaderMode() (dylib.Mode, error) {
	return ParseMode(m.Mode)
}

// ParseMode returns the dylib loader mode for the named symbol binding
// mode, "now" or "lazy". The empty string is treated as "now".
func ParseMode(mode string) (dylib.Mode, error) {
	switch mode {
	case "", "now":
		return dylib.Now | dylib.Local, nil
	case "lazy":
		return dylib.Lazy | dylib.Local, nil
	default:
		return 0, fmt.Errorf("invalid mode: %q", mode)
	}
}

// Path returns the path of the manifest's library.
func (m *Manifest) Path() string {
	if m.Extension {
		return m.Library + dylib.Extension
	}
	return m.Library
}

// Check opens the manifest's library and performs its checks in order,
// functions first. A failing check does not prevent later checks. Check
// returns an error if the library cannot be opened or closed, or ctx is
// cancelled; the report holds the results of checks completed so far.
// A nil log discards logging.
func Check(ctx context.Context, log *slog.Logger, m *Manifest) (rep Report, err error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	mode, err := m.LoaderMode()
	if err != nil {
		return Report{}, err
	}
	rep.Library = m.Path()
	lib, err := dylib.Open(rep.Library, dylib.WithMode(mode), dylib.WithLogger(log))
	if err != nil {
		return rep, err
	}
	defer func() {
		err = errors.Join(err, lib.Close())
	}()
	log.LogAttrs(ctx, slog.LevelDebug, "checking library", slog.Any("lib", lib))

	for _, fn := range m.Functions {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res := checkFunction(log, lib, fn)
		logResult(ctx, log, res)
		rep.Results = append(rep.Results, res)
	}
	for _, v := range m.Variables {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res := checkVariable(log, lib, v)
		logResult(ctx, log, res)
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

func checkFunction(log *slog.Logger, lib *dylib.Lib, fn Function) Result {
	res := Result{Kind: "function", Name: fn.Name}
	sig, err := ctype.ParseSignature(fn.Signature)
	if err != nil {
		res.Err = err
		return res
	}
	if len(fn.Args) != len(sig.Params) {
		res.Err = fmt.Errorf("got %d arguments for %s", len(fn.Args), sig)
		return res
	}
	args := make([]reflect.Value, len(fn.Args))
	native := make([]any, len(fn.Args))
	for i, a := range fn.Args {
		args[i], err = sig.Params[i].Convert(a)
		if err != nil {
			res.Err = fmt.Errorf("argument %d: %w", i, err)
			return res
		}
		native[i] = ctype.Native(args[i])
	}
	out, err := ctype.Call(lib, fn.Name, sig, args)
	if err != nil {
		res.Err = err
		return res
	}
	res.Value = ctype.Native(out)
	return evaluate(log, res, fn.Expect, functionVars, map[string]any{
		"result": res.Value,
		"args":   native,
	})
}

func checkVariable(log *slog.Logger, lib *dylib.Lib, v Variable) Result {
	res := Result{Kind: "variable", Name: v.Name}
	k, err := ctype.Parse(v.Type)
	if err != nil {
		res.Err = err
		return res
	}
	if v.Set != nil {
		val, err := k.Convert(v.Set)
		if err != nil {
			res.Err = fmt.Errorf("set: %w", err)
			return res
		}
		err = ctype.Set(lib, v.Name, k, val)
		if err != nil {
			res.Err = err
			return res
		}
	}
	val, err := ctype.Get(lib, v.Name, k)
	if err != nil {
		res.Err = err
		return res
	}
	res.Value = ctype.Native(val)
	return evaluate(log, res, v.Expect, variableVars, map[string]any{
		"value": res.Value,
	})
}

func evaluate(log *slog.Logger, res Result, src string, decls []cel.EnvOption, act map[string]any) Result {
	ok, err := expect(src, log, decls, act)
	switch {
	case err != nil:
		res.Err = err
	case !ok:
		res.Err = fmt.Errorf("%w: %s", ErrExpectation, src)
	default:
		res.Pass = true
	}
	return res
}

func logResult(ctx context.Context, log *slog.Logger, res Result) {
	if res.Pass {
		log.LogAttrs(ctx, slog.LevelDebug, "check passed", slog.String("kind", res.Kind), slog.String("name", res.Name), slog.Any("value", res.Value))
		return
	}
	log.LogAttrs(ctx, slog.LevelWarn, "check failed", slog.String("kind", res.Kind), slog.String("name", res.Name), slog.Any("error", res.Err))
}
