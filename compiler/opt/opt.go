// Package opt simplifies lowered code with a fixed pipeline of local rewrites.
//
// Setup passes run once. Iterative passes run in order, round after round,
// until a round changes nothing.
package opt

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/ir"
)

type (
	Pass struct {
		Name string
		Run  func(f *ir.Func) (changed bool, err error)
	}

	Pipeline struct {
		Setup []Pass
		Iter  []Pass

		// MaxRounds bounds iterative rounds. Reaching it means passes fight each other.
		MaxRounds int
	}
)

const DefaultMaxRounds = 100

var (
	RemoveNops      = Pass{Name: "nops", Run: removeNops}
	FuseCompare     = Pass{Name: "fuse_compare", Run: fuseCompare}
	ForwardMovTest  = Pass{Name: "forward_mov_test", Run: forwardMovTest}
	Renumber        = Pass{Name: "renumber", Run: renumber}
	Flow            = Pass{Name: "flow", Run: flow}
	PassThrough     = Pass{Name: "pass_through", Run: passThrough}
	DropUnreachable = Pass{Name: "unreachable", Run: dropUnreachable}
)

func Default() *Pipeline {
	return &Pipeline{
		Setup: []Pass{
			RemoveNops,
			FuseCompare,
			ForwardMovTest,
		},
		Iter: []Pass{
			Renumber,
			Flow,
			PassThrough,
			DropUnreachable,
		},
		MaxRounds: DefaultMaxRounds,
	}
}

// Program optimizes every function of p.
// Functions failing to optimize are removed from p and reported as ir.Errors.
func (pl *Pipeline) Program(ctx context.Context, p *ir.Program) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "opt: program", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	var errs ir.Errors

	funcs := p.Funcs[:0]

	for _, f := range p.Funcs {
		err := pl.Func(ctx, f)
		if err != nil {
			errs = append(errs, &ir.FuncError{Func: f.Name, Err: err})
			continue
		}

		funcs = append(funcs, f)
	}

	p.Funcs = funcs

	return errs.Err()
}

func (pl *Pipeline) Func(ctx context.Context, f *ir.Func) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "opt func", "name", f.Name, "instrs", len(f.Code))
	defer tr.Finish("err", &err)

	for _, ps := range pl.Setup {
		_, err = pl.run(tr, ps, f, -1)
		if err != nil {
			return err
		}
	}

	limit := pl.MaxRounds
	if limit <= 0 {
		limit = DefaultMaxRounds
	}

	round := 0

	for ; round < limit; round++ {
		changed, err := pl.round(tr, f, round)
		if err != nil {
			return err
		}

		if !changed {
			break
		}
	}

	if round == limit {
		tr.Printw("no fixpoint reached", "func", f.Name, "rounds", round, "", tlog.Error)
	}

	tr.Printw("optimized", "rounds", round, "instrs", len(f.Code))

	if tr.If("dump_opt") {
		for i, x := range f.Code {
			tr.Printw("optimized", "i", i, "x", x)
		}
	}

	return nil
}

// Round runs iterative passes once and reports whether any of them changed f.
func (pl *Pipeline) Round(f *ir.Func) (bool, error) {
	return pl.round(tlog.Span{}, f, 0)
}

func (pl *Pipeline) round(tr tlog.Span, f *ir.Func, round int) (changed bool, err error) {
	for _, ps := range pl.Iter {
		c, err := pl.run(tr, ps, f, round)
		if err != nil {
			return false, err
		}

		changed = changed || c
	}

	return changed, nil
}

func (pl *Pipeline) run(tr tlog.Span, ps Pass, f *ir.Func, round int) (changed bool, err error) {
	changed, err = ps.Run(f)
	if err != nil {
		return false, errors.Wrap(err, "pass %v", ps.Name)
	}

	tr.V("opt_pass").Printw("pass", "name", ps.Name, "round", round, "changed", changed, "instrs", len(f.Code))

	return changed, nil
}

// Refs counts register occurrences in code, definitions and uses alike.
func Refs(code []ir.Instr) map[ir.RegKey]int {
	m := make(map[ir.RegKey]int)

	for _, x := range code {
		for _, a := range x.Args {
			if r, ok := a.(ir.Reg); ok {
				m[r.Key()]++
			}
		}
	}

	return m
}
