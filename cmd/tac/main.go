package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler"
	"github.com/slowlang/tac/compiler/format"
	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/lower"
	"github.com/slowlang/tac/compiler/opt"
	"github.com/slowlang/tac/compiler/samples"
)

func main() {
	listCmd := &cli.Command{
		Name:   "list",
		Action: listAct,
	}

	lowerCmd := &cli.Command{
		Name:   "lower",
		Action: lowerAct,
		Args:   cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:   "compile",
		Action: compileAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("rounds", opt.DefaultMaxRounds, "max iterative optimization rounds"),
			cli.NewFlag("setup-only", false, "run only setup passes"),
		},
	}

	app := &cli.Command{
		Name:        "tac",
		Description: "tac lowers sample programs into three-address code and optimizes it",
		Commands: []*cli.Command{
			listCmd,
			lowerCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func listAct(c *cli.Command) error {
	for _, s := range samples.All() {
		fmt.Printf("%-10s %s\n", s.Name, s.Desc)
	}

	return nil
}

func lowerAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		s, ok := samples.Get(a)
		if !ok {
			return errors.New("no such sample: %v", a)
		}

		p, err := lower.Program(ctx, s.File)
		if err != nil {
			return errors.Wrap(err, "lower %v", a)
		}

		err = printProgram(ctx, p)
		if err != nil {
			return errors.Wrap(err, "print %v", a)
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	pl := opt.Default()
	pl.MaxRounds = c.Int("rounds")

	if c.Bool("setup-only") {
		pl.Iter = nil
	}

	for _, a := range c.Args {
		s, ok := samples.Get(a)
		if !ok {
			return errors.New("no such sample: %v", a)
		}

		p, err := compiler.CompileWith(ctx, s.File, pl)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		err = printProgram(ctx, p)
		if err != nil {
			return errors.Wrap(err, "print %v", a)
		}
	}

	return nil
}

func printProgram(ctx context.Context, p *ir.Program) error {
	b, err := format.Format(ctx, nil, p.Labels, p)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(b)

	return err
}
