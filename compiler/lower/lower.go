// Package lower translates resolved syntax trees into three-address code.
//
// Lowering is destination passing: expr(b, x, dst) appends code that leaves
// the value of x in dst, or only performs its side effects if dst is nil.
package lower

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
)

type (
	// Lowerer holds per program lowering state.
	Lowerer struct {
		*ir.Program

		nextlabel int
	}

	funContext struct {
		*Lowerer

		fn *ir.Func

		nexttemp int
		vars     map[int]ir.Reg // ast.Var.ID -> named register
	}

	loopContext struct {
		brk, cont ir.Label
		ok        bool
	}
)

var (
	ErrUnsupportedNode = errors.New("unsupported node")
	ErrNoLoop          = errors.New("not in a loop")
)

// Program lowers every function of file.
// Functions failing to lower are left out and reported as ir.Errors.
func Program(ctx context.Context, file *ast.File) (_ *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower: program", "funcs", len(file.Funcs))
	defer tr.Finish("err", &err)

	l := New(ir.NewProgram())

	var errs ir.Errors

	for _, d := range file.Funcs {
		f, err := l.Func(ctx, d)
		if err != nil {
			errs = append(errs, &ir.FuncError{Func: d.Name, Err: err})
			continue
		}

		l.Funcs = append(l.Funcs, f)
	}

	return l.Program, errs.Err()
}

func New(p *ir.Program) *Lowerer {
	return &Lowerer{Program: p}
}

// Func lowers a single function. The result is not added to the program.
func (l *Lowerer) Func(ctx context.Context, d *ast.Func) (_ *ir.Func, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "lower func", "name", d.Name)
	defer tr.Finish("err", &err)

	f := &funContext{
		Lowerer: l,
		fn: &ir.Func{
			Name: d.Name,
			Ret:  d.Ret,
		},
		vars: make(map[int]ir.Reg),
	}

	for _, p := range d.Params {
		if _, ok := f.vars[p.ID]; ok {
			return nil, errors.New("param redefined: %v", p.Name)
		}

		f.fn.Params = append(f.fn.Params, ir.Param{Width: p.Type, Name: p.Name})
		f.reg(p)
	}

	var b []ir.Instr

	if d.Body != nil {
		b, err = f.stmt(b, d.Body, loopContext{})
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	}

	if !terminated(b) {
		b = append(b, ir.New(ir.Ret))
	}

	f.fn.Code = b

	if tr.If("dump_lowered") {
		for i, x := range b {
			tr.Printw("lowered", "i", i, "x", x)
		}
	}

	err = ir.Verify(f.fn)
	if err != nil {
		return nil, errors.Wrap(err, "verify")
	}

	return f.fn, nil
}

func (l *Lowerer) label(name string) ir.Label {
	n := l.nextlabel
	l.nextlabel++

	lab := l.Labels.Temp(fmt.Sprintf("%s.%d", name, n))

	tlog.V("label").Printw("new label", "label", lab, "name", l.Labels.Name(lab), "from", loc.Callers(1, 3))

	return lab
}

func (l *Lowerer) funcLabel(r *ast.FuncRef) ir.FuncLabel {
	return ir.FuncLabel{
		Label: l.Labels.Named(r.Name),
		Ret:   r.Ret,
	}
}

func (f *funContext) temp(w ir.Width) ir.Reg {
	r := ir.Reg{Index: f.nexttemp, Width: w, Temp: true}
	f.nexttemp++

	return r
}

func (f *funContext) reg(v *ast.Var) ir.Reg {
	if r, ok := f.vars[v.ID]; ok {
		return r
	}

	r := ir.Reg{Index: len(f.vars), Width: v.Type, Name: v.Name}
	f.vars[v.ID] = r

	return r
}

func (f *funContext) dst(dst ir.Operand, w ir.Width) ir.Operand {
	if dst != nil {
		return dst
	}

	return f.temp(w)
}

func (f *funContext) nop(b []ir.Instr, x any) []ir.Instr {
	return append(b, ir.New(ir.Nop, ir.Debug{Value: x, PC: loc.Caller(1)}))
}

func emit(b []ir.Instr, op ir.Op, args ...ir.Operand) ([]ir.Instr, error) {
	x := ir.New(op, args...)

	if err := ir.Check(x); err != nil {
		return nil, err
	}

	return append(b, x), nil
}

func label(b []ir.Instr, l ir.Label) []ir.Instr {
	return append(b, ir.New(ir.LabelOp, l))
}

func br(b []ir.Instr, l ir.Label) []ir.Instr {
	return append(b, ir.New(ir.Br, l))
}

func terminated(b []ir.Instr) bool {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Op == ir.Nop {
			continue
		}

		return b[i].Op.Terminator()
	}

	return false
}

func unsupported(x any) error {
	return errors.Wrap(ErrUnsupportedNode, "%T %+v", x, x)
}
