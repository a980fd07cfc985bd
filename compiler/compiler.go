package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/lower"
	"github.com/slowlang/tac/compiler/opt"
)

// Compile lowers and optimizes file with the default pipeline.
func Compile(ctx context.Context, file *ast.File) (*ir.Program, error) {
	return CompileWith(ctx, file, opt.Default())
}

// CompileWith lowers file and optimizes it with pl.
// Functions failing either stage are left out of the program;
// the returned error is ir.Errors listing them.
func CompileWith(ctx context.Context, file *ast.File, pl *opt.Pipeline) (p *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "funcs", len(file.Funcs))
	defer tr.Finish("err", &err)

	var errs ir.Errors

	p, err = lower.Program(ctx, file)
	errs, err = collect(errs, err)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	err = pl.Program(ctx, p)
	errs, err = collect(errs, err)
	if err != nil {
		return nil, errors.Wrap(err, "optimize")
	}

	tr.Printw("compiled", "funcs", len(p.Funcs), "failed", len(errs), "data", len(p.Data.Strings))

	return p, errs.Err()
}

// collect appends per function errors to errs and returns any other error as is.
func collect(errs ir.Errors, err error) (ir.Errors, error) {
	if err == nil {
		return errs, nil
	}

	if e, ok := err.(ir.Errors); ok {
		return append(errs, e...), nil
	}

	return errs, err
}
