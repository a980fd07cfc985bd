package lower

import (
	"tlog.app/go/errors"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
)

func (f *funContext) stmt(b []ir.Instr, x ast.Stmt, loop loopContext) (_ []ir.Instr, err error) {
	if x == nil {
		return b, nil
	}

	b = f.nop(b, x)

	switch x := x.(type) {
	case *ast.Block:
		for i, s := range x.List {
			b, err = f.stmt(b, s, loop)
			if err != nil {
				return nil, errors.Wrap(err, "stmt %d", i)
			}
		}

		return b, nil
	case *ast.ExprStmt:
		return f.expr(b, x.X, nil)
	case *ast.Store:
		var addr, v ir.Operand

		b, addr, err = f.operand(b, x.Addr)
		if err != nil {
			return nil, errors.Wrap(err, "store addr")
		}

		b, v, err = f.operand(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "store value")
		}

		return emit(b, ir.Write, addr, v)
	case *ast.If:
		return f.ifStmt(b, x, loop)
	case *ast.While:
		return f.whileStmt(b, x)
	case *ast.For:
		return f.forStmt(b, x, loop)
	case *ast.Break:
		if !loop.ok {
			return nil, errors.Wrap(ErrNoLoop, "break")
		}

		return br(b, loop.brk), nil
	case *ast.Continue:
		if !loop.ok {
			return nil, errors.Wrap(ErrNoLoop, "continue")
		}

		return br(b, loop.cont), nil
	case *ast.Return:
		if x.X == nil {
			return emit(b, ir.Ret)
		}

		var v ir.Operand

		b, v, err = f.operand(b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		return emit(b, ir.Ret, v)
	default:
		return nil, unsupported(x)
	}
}

func (f *funContext) ifStmt(b []ir.Instr, x *ast.If, loop loopContext) (_ []ir.Instr, err error) {
	var t ir.Operand

	b, t, err = f.test(b, x.Cond)
	if err != nil {
		return nil, errors.Wrap(err, "if cond")
	}

	end := f.label("if.end")
	skip := end

	if x.Else != nil {
		skip = f.label("if.else")
	}

	b, err = emit(b, ir.Brz, skip, t)
	if err != nil {
		return nil, err
	}

	b, err = f.stmt(b, x.Then, loop)
	if err != nil {
		return nil, errors.Wrap(err, "then")
	}

	if x.Else != nil {
		b = br(b, end)
		b = label(b, skip)

		b, err = f.stmt(b, x.Else, loop)
		if err != nil {
			return nil, errors.Wrap(err, "else")
		}
	}

	b = label(b, end)

	return b, nil
}

func (f *funContext) whileStmt(b []ir.Instr, x *ast.While) (_ []ir.Instr, err error) {
	top := f.label("while.top")
	end := f.label("while.end")

	b = label(b, top)

	var t ir.Operand

	b, t, err = f.test(b, x.Cond)
	if err != nil {
		return nil, errors.Wrap(err, "while cond")
	}

	b, err = emit(b, ir.Brz, end, t)
	if err != nil {
		return nil, err
	}

	b, err = f.stmt(b, x.Body, loopContext{brk: end, cont: top, ok: true})
	if err != nil {
		return nil, errors.Wrap(err, "while body")
	}

	b = br(b, top)
	b = label(b, end)

	return b, nil
}

func (f *funContext) forStmt(b []ir.Instr, x *ast.For, loop loopContext) (_ []ir.Instr, err error) {
	b, err = f.stmt(b, x.Init, loop)
	if err != nil {
		return nil, errors.Wrap(err, "for init")
	}

	top := f.label("for.top")
	cont := f.label("for.cont")
	end := f.label("for.end")

	b = label(b, top)

	if x.Cond != nil {
		var t ir.Operand

		b, t, err = f.test(b, x.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "for cond")
		}

		b, err = emit(b, ir.Brz, end, t)
		if err != nil {
			return nil, err
		}
	}

	b, err = f.stmt(b, x.Body, loopContext{brk: end, cont: cont, ok: true})
	if err != nil {
		return nil, errors.Wrap(err, "for body")
	}

	b = label(b, cont)

	b, err = f.stmt(b, x.Post, loop)
	if err != nil {
		return nil, errors.Wrap(err, "for post")
	}

	b = br(b, top)
	b = label(b, end)

	return b, nil
}
