package lower

import (
	"tlog.app/go/errors"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
)

var (
	unaryOps = map[string]ir.Op{
		"!": ir.Not,
		"-": ir.Neg,
	}

	binaryOps = map[string]ir.Op{
		"+":  ir.Add,
		"-":  ir.Sub,
		"*":  ir.Mul,
		"/":  ir.Div,
		"%":  ir.Mod,
		"&":  ir.And,
		"|":  ir.Or,
		"^":  ir.Xor,
		"<<": ir.Shl,
		">>": ir.Shr,
		"==": ir.Eq,
		"!=": ir.Neq,
		"<":  ir.Lt,
		"<=": ir.Lte,
		">":  ir.Gt,
		">=": ir.Gte,
		"~|": ir.Nor,
	}

	chainOps = map[string]ir.Op{
		"+": ir.Add,
		"-": ir.Sub,
	}
)

// expr appends code computing x into dst. If dst is nil only side effects are kept.
func (f *funContext) expr(b []ir.Instr, x ast.Expr, dst ir.Operand) (_ []ir.Instr, err error) {
	if x == nil {
		return nil, errors.New("nil expression")
	}

	b = f.nop(b, x)

	if v, ok := f.atom(x); ok {
		if dst == nil {
			return b, nil
		}

		return emit(b, ir.Mov, dst, v)
	}

	switch x := x.(type) {
	case *ast.Unary:
		op, ok := unaryOps[x.Op]
		if !ok {
			return nil, unsupported(x)
		}

		var v ir.Operand

		b, v, err = f.operand(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "%v", x.Op)
		}

		return emit(b, op, f.dst(dst, x.Type), v)
	case *ast.Binary:
		op, ok := binaryOps[x.Op]
		if !ok {
			return nil, unsupported(x)
		}

		var l, r ir.Operand

		b, l, err = f.operand(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "%v x", x.Op)
		}

		b, r, err = f.operand(b, x.Y)
		if err != nil {
			return nil, errors.Wrap(err, "%v y", x.Op)
		}

		return emit(b, op, f.dst(dst, x.Type), l, r)
	case *ast.Chain:
		return f.chain(b, x, dst)
	case *ast.Logic:
		return f.logic(b, x, dst)
	case *ast.Cond:
		return f.cond(b, x, dst)
	case *ast.Call:
		return f.call(b, x, dst)
	case *ast.Assign:
		return f.assign(b, x, dst)
	case *ast.Load:
		var addr ir.Operand

		b, addr, err = f.operand(b, x.Addr)
		if err != nil {
			return nil, errors.Wrap(err, "load addr")
		}

		return emit(b, ir.Read, f.dst(dst, x.Type), addr)
	default:
		return nil, unsupported(x)
	}
}

// operand returns atoms as is and lowers anything else into a new temporary.
func (f *funContext) operand(b []ir.Instr, x ast.Expr) (_ []ir.Instr, v ir.Operand, err error) {
	if x == nil {
		return nil, nil, errors.New("nil expression")
	}

	if v, ok := f.atom(x); ok {
		return b, v, nil
	}

	t := f.temp(x.Width())

	b, err = f.expr(b, x, t)
	if err != nil {
		return nil, nil, err
	}

	return b, t, nil
}

func (f *funContext) atom(x ast.Expr) (ir.Operand, bool) {
	switch x := x.(type) {
	case *ast.Num:
		return ir.Num{Value: x.Value, Width: x.Type}, true
	case *ast.Var:
		return f.reg(x), true
	case *ast.Str:
		return ir.Data{Section: ir.Strings, Index: f.Data.Intern(x.Value)}, true
	case *ast.FuncRef:
		return f.funcLabel(x), true
	}

	return nil, false
}

func (f *funContext) chain(b []ir.Instr, x *ast.Chain, dst ir.Operand) (_ []ir.Instr, err error) {
	if len(x.Rest) == 0 {
		return f.expr(b, x.First, dst)
	}

	var acc ir.Operand

	b, acc, err = f.operand(b, x.First)
	if err != nil {
		return nil, errors.Wrap(err, "chain")
	}

	for i, t := range x.Rest {
		op, ok := chainOps[t.Op]
		if !ok {
			return nil, unsupported(x)
		}

		var v ir.Operand

		b, v, err = f.operand(b, t.X)
		if err != nil {
			return nil, errors.Wrap(err, "chain term %d", i)
		}

		var d ir.Operand

		if i == len(x.Rest)-1 {
			d = f.dst(dst, x.Type)
		} else {
			d = f.temp(x.Type)
		}

		b, err = emit(b, op, d, acc, v)
		if err != nil {
			return nil, err
		}

		acc = d
	}

	return b, nil
}

func (f *funContext) logic(b []ir.Instr, x *ast.Logic, dst ir.Operand) (_ []ir.Instr, err error) {
	d := f.dst(dst, x.Type)
	zero := ir.Num{Value: 0, Width: x.Type}
	one := ir.Num{Value: 1, Width: x.Type}

	test := func(b []ir.Instr, op ir.Op, to ir.Label) (_ []ir.Instr, err error) {
		for i, e := range x.List {
			var v ir.Operand

			b, v, err = f.operand(b, e)
			if err != nil {
				return nil, errors.Wrap(err, "%v operand %d", x.Op, i)
			}

			b, err = emit(b, op, to, v)
			if err != nil {
				return nil, err
			}
		}

		return b, nil
	}

	switch x.Op {
	case "&&":
		end := f.label("and.end")

		b, err = emit(b, ir.Mov, d, zero)
		if err != nil {
			return nil, err
		}

		b, err = test(b, ir.Brz, end)
		if err != nil {
			return nil, err
		}

		b, err = emit(b, ir.Mov, d, one)
		if err != nil {
			return nil, err
		}

		b = label(b, end)
	case "||":
		val := f.label("or.true")
		end := f.label("or.end")

		b, err = emit(b, ir.Mov, d, one)
		if err != nil {
			return nil, err
		}

		b, err = test(b, ir.Bnz, val)
		if err != nil {
			return nil, err
		}

		b, err = emit(b, ir.Mov, d, zero)
		if err != nil {
			return nil, err
		}

		b = br(b, end)
		b = label(b, val)
		b = label(b, end)
	default:
		return nil, unsupported(x)
	}

	return b, nil
}

func (f *funContext) cond(b []ir.Instr, x *ast.Cond, dst ir.Operand) (_ []ir.Instr, err error) {
	var c ir.Operand

	b, c, err = f.test(b, x.Cond)
	if err != nil {
		return nil, errors.Wrap(err, "cond")
	}

	els := f.label("cond.else")
	end := f.label("cond.end")

	b, err = emit(b, ir.Brz, els, c)
	if err != nil {
		return nil, err
	}

	b, err = f.expr(b, x.Then, dst)
	if err != nil {
		return nil, errors.Wrap(err, "then")
	}

	b = br(b, end)
	b = label(b, els)

	b, err = f.expr(b, x.Else, dst)
	if err != nil {
		return nil, errors.Wrap(err, "else")
	}

	b = label(b, end)

	return b, nil
}

func (f *funContext) call(b []ir.Instr, x *ast.Call, dst ir.Operand) (_ []ir.Instr, err error) {
	if x.Func == nil {
		return nil, unsupported(x)
	}

	if len(x.Args) != len(x.Func.Params) {
		return nil, errors.New("call %v: %d args, want %d", x.Func.Name, len(x.Args), len(x.Func.Params))
	}

	var d ir.Operand = ir.Nothing
	if dst != nil {
		d = dst
	}

	args := make([]ir.Operand, 0, 2+len(x.Args))
	args = append(args, d, f.funcLabel(x.Func))

	for i, a := range x.Args {
		t := f.temp(x.Func.Params[i])

		b, err = f.expr(b, a, t)
		if err != nil {
			return nil, errors.Wrap(err, "call %v: arg %d", x.Func.Name, i)
		}

		args = append(args, t)
	}

	return emit(b, ir.Call, args...)
}

func (f *funContext) assign(b []ir.Instr, x *ast.Assign, dst ir.Operand) (_ []ir.Instr, err error) {
	if x.Var == nil {
		return nil, unsupported(x)
	}

	r := f.reg(x.Var)

	if v, ok := f.atom(x.X); ok {
		b, err = emit(b, ir.Mov, r, v)
	} else {
		t := f.temp(x.Var.Type)

		b, err = f.expr(b, x.X, t)
		if err != nil {
			return nil, errors.Wrap(err, "assign %v", x.Var.Name)
		}

		b, err = emit(b, ir.Mov, r, t)
	}

	if err != nil {
		return nil, err
	}

	if dst == nil {
		return b, nil
	}

	return emit(b, ir.Mov, dst, r)
}

// test evaluates a condition into a new temporary.
func (f *funContext) test(b []ir.Instr, x ast.Expr) (_ []ir.Instr, t ir.Operand, err error) {
	if x == nil {
		return nil, nil, errors.New("nil condition")
	}

	t = f.temp(x.Width())

	b, err = f.expr(b, x, t)
	if err != nil {
		return nil, nil, err
	}

	return b, t, nil
}
