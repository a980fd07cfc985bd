package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/tac/compiler/ir"
)

// Format appends text form of x to b.
// x is one of *ir.Program, *ir.Func, []ir.Instr, ir.Instr or ir.Operand.
// ls names labels, it may be nil.
func Format(ctx context.Context, b []byte, ls *ir.Labels, x any) ([]byte, error) {
	switch x := x.(type) {
	case *ir.Program:
		return formatProgram(ctx, b, x)
	case *ir.Func:
		return formatFunc(ctx, b, ls, x, 0)
	case []ir.Instr:
		return formatCode(ctx, b, ls, x, 0)
	case ir.Instr:
		return formatInstr(b, ls, x, 0), nil
	case ir.Operand:
		return formatOperand(b, ls, x), nil
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

// String is Format to a string. Errors are rendered in place of the text.
func String(ls *ir.Labels, x any) string {
	b, err := Format(context.Background(), nil, ls, x)
	if err != nil {
		return "!" + err.Error()
	}

	return string(b)
}

func formatProgram(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	if p.Data != nil {
		for i, s := range p.Data.Strings {
			b = app(b, 0, "data %v %q\n", ir.Data{Section: ir.Strings, Index: i}, s)
		}

		if len(p.Data.Strings) != 0 && len(p.Funcs) != 0 {
			b = append(b, '\n')
		}
	}

	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatFunc(ctx, b, p.Labels, f, 0)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, ls *ir.Labels, f *ir.Func, d int) (_ []byte, err error) {
	b = app(b, d, "func %v(", f.Name)

	for i, p := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", p.Width, p.Name)
	}

	b = append(b, ")"...)

	if !f.Ret.IsVoid() {
		b = app(b, 0, " %v", f.Ret)
	}

	b = append(b, " {\n"...)

	b, err = formatCode(ctx, b, ls, f.Code, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatCode(ctx context.Context, b []byte, ls *ir.Labels, code []ir.Instr, d int) ([]byte, error) {
	for _, x := range code {
		b = formatInstr(b, ls, x, d)
		b = append(b, '\n')
	}

	return b, nil
}

func formatInstr(b []byte, ls *ir.Labels, x ir.Instr, d int) []byte {
	if x.Op == ir.LabelOp && len(x.Args) == 1 {
		if d > 0 {
			d--
		}

		b = app(b, d, "")
		b = formatOperand(b, ls, x.Args[0])

		return append(b, ':')
	}

	b = app(b, d, "%v", x.Op)

	for i, a := range x.Args {
		if i == 0 {
			b = append(b, ' ')
		} else {
			b = append(b, ", "...)
		}

		b = formatOperand(b, ls, a)
	}

	return b
}

func formatOperand(b []byte, ls *ir.Labels, x ir.Operand) []byte {
	switch x := x.(type) {
	case ir.Label:
		if ls == nil {
			return append(b, x.String()...)
		}

		return append(b, ls.Name(x)...)
	case ir.FuncLabel:
		b = append(b, '@')

		return formatOperand(b, ls, x.Label)
	case nil:
		return append(b, "<nil>"...)
	default:
		return append(b, x.String()...)
	}
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
