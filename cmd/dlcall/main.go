// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The dlcall executable calls functions and inspects variables in native
// dynamic libraries, and checks libraries against manifests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"reflect"
	"strings"

	"github.com/kortschak/dylib"
	"github.com/kortschak/dylib/internal/ctype"
	"github.com/kortschak/dylib/internal/manifest"
	"github.com/kortschak/dylib/internal/slogext"
	"github.com/kortschak/dylib/internal/version"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

func Main() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:

  %[1]s [options] -lib <library> call <name> <signature> [args...]
  %[1]s [options] -lib <library> get <name> <type>
  %[1]s [options] -lib <library> set <name> <type> <value>
  %[1]s [options] check <manifest.toml>

Signatures are written as result(param, ...), for example f64(f64,f64).
Types are void, bool, i8, i16, i32, i64, u8, u16, u32, u64, f32, f64,
ptr and str, or C spellings such as int, double and char*.

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	libPath := flag.String("lib", "", "path of the library to open")
	ext := flag.Bool("ext", false, "append the platform library extension to -lib")
	mode := flag.String("mode", "now", "symbol binding mode (now or lazy)")
	logging := flag.String("log", "warn", "logging level (debug, info, warn or error)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	v := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *v {
		err := version.Print(os.Stdout, "dlcall")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}

	var level slog.LevelVar
	err := level.UnmarshalText([]byte(*logging))
	if err != nil {
		flag.Usage()
		return invocationError
	}
	log := slogext.NewJSONLogger(os.Stderr, &level, *lines).With(
		slog.String("component", "dlcall"),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return invocationError
	}
	cmd, args := args[0], args[1:]
	if cmd == "check" {
		if len(args) != 1 {
			flag.Usage()
			return invocationError
		}
		return check(ctx, log, args[0])
	}

	var run func(context.Context, *slog.Logger, *dylib.Lib, []string) error
	switch cmd {
	case "call":
		if len(args) < 2 {
			flag.Usage()
			return invocationError
		}
		run = call
	case "get":
		if len(args) != 2 {
			flag.Usage()
			return invocationError
		}
		run = get
	case "set":
		if len(args) != 3 {
			flag.Usage()
			return invocationError
		}
		run = set
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %q\n", cmd)
		flag.Usage()
		return invocationError
	}
	if *libPath == "" {
		flag.Usage()
		return invocationError
	}
	loaderMode, err := manifest.ParseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}

	var lib dylib.Lib
	if *ext {
		err = lib.OpenExt(*libPath, dylib.Extension, dylib.WithMode(loaderMode), dylib.WithLogger(log))
	} else {
		err = lib.Open(*libPath, dylib.WithMode(loaderMode), dylib.WithLogger(log))
	}
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "open library", slog.Any("error", err))
		return internalError
	}
	defer func() {
		err := lib.Close()
		if err != nil {
			log.LogAttrs(ctx, slog.LevelError, "close library", slog.Any("error", err))
		}
	}()

	err = run(ctx, log, &lib, args)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, cmd, slog.Any("error", err))
		var invErr invocationErr
		if errors.As(err, &invErr) {
			return invocationError
		}
		return internalError
	}
	return success
}

// invocationErr is an error in the command's arguments.
type invocationErr struct {
	error
}

func call(ctx context.Context, log *slog.Logger, lib *dylib.Lib, args []string) error {
	name := args[0]
	sig, err := ctype.ParseSignature(args[1])
	if err != nil {
		return invocationErr{err}
	}
	args = args[2:]
	if len(args) != len(sig.Params) {
		return invocationErr{fmt.Errorf("got %d arguments for %s", len(args), sig)}
	}
	vals := make([]reflect.Value, len(args))
	for i, a := range args {
		vals[i], err = sig.Params[i].ParseValue(a)
		if err != nil {
			return invocationErr{fmt.Errorf("argument %d: %w", i, err)}
		}
	}
	log.LogAttrs(ctx, slog.LevelDebug, "call", slog.Any("lib", lib), slog.String("name", name), slog.String("signature", sig.String()), slog.String("args", strings.Join(args, " ")))
	res, err := ctype.Call(lib, name, sig, vals)
	if err != nil {
		return err
	}
	if sig.Result != ctype.Void {
		fmt.Println(ctype.Native(res))
	}
	return nil
}

func get(ctx context.Context, log *slog.Logger, lib *dylib.Lib, args []string) error {
	name := args[0]
	k, err := ctype.Parse(args[1])
	if err != nil {
		return invocationErr{err}
	}
	log.LogAttrs(ctx, slog.LevelDebug, "get", slog.Any("lib", lib), slog.String("name", name), slog.String("type", k.String()))
	val, err := ctype.Get(lib, name, k)
	if err != nil {
		return err
	}
	fmt.Println(ctype.Native(val))
	return nil
}

func set(ctx context.Context, log *slog.Logger, lib *dylib.Lib, args []string) error {
	name := args[0]
	k, err := ctype.Parse(args[1])
	if err != nil {
		return invocationErr{err}
	}
	val, err := k.ParseValue(args[2])
	if err != nil {
		return invocationErr{err}
	}
	log.LogAttrs(ctx, slog.LevelDebug, "set", slog.Any("lib", lib), slog.String("name", name), slog.String("type", k.String()), slog.String("value", args[2]))
	err = ctype.Set(lib, name, k, val)
	if err != nil {
		return err
	}
	return get(ctx, log, lib, args[:2])
}

func check(ctx context.Context, log *slog.Logger, path string) int {
	m, err := manifest.Load(path)
	if err != nil {
		var verr *manifest.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Paths {
				fmt.Fprintf(os.Stderr, "invalid: %s\n", strings.Join(p, "."))
			}
		}
		log.LogAttrs(ctx, slog.LevelError, "load manifest", slog.String("path", path), slog.Any("error", err))
		return invocationError
	}
	rep, err := manifest.Check(ctx, log, m)
	for _, res := range rep.Results {
		fmt.Println(res)
	}
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "check", slog.String("library", rep.Library), slog.Any("error", err))
		return internalError
	}
	if n := rep.Failed(); n != 0 {
		fmt.Printf("FAIL\t%s\t%d of %d checks failed\n", rep.Library, n, len(rep.Results))
		return internalError
	}
	fmt.Printf("ok\t%s\t%d checks\n", rep.Library, len(rep.Results))
	return success
}
