// Package samples holds small resolved programs for trying out the compiler.
package samples

import (
	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
)

type (
	Sample struct {
		Name string
		Desc string
		File *ast.File
	}
)

// All returns fresh copies of all samples in a stable order.
func All() []Sample {
	return []Sample{
		{Name: "arith", Desc: "a = 2 + 3 * 4; return a", File: Arith()},
		{Name: "if", Desc: "if x == 0 { y = 1 }; return y", File: IfZero()},
		{Name: "loop", Desc: "for loop with break and continue", File: Loop()},
		{Name: "forever", Desc: "while 1 { return x }; dead tail", File: Forever()},
		{Name: "logic", Desc: "short circuit && and ||", File: Logic()},
		{Name: "calls", Desc: "calls, discarded results, string data", File: Calls()},
		{Name: "abs", Desc: "ternary", File: Abs()},
		{Name: "memory", Desc: "load and store", File: Memory()},
	}
}

func Get(name string) (Sample, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}

	return Sample{}, false
}

func Arith() *ast.File {
	a := Var(0, "a")

	return File(&ast.Func{
		Name: "main",
		Ret:  ir.I32,
		Body: Block(
			Assign(a, Bin("+", Num(2), Bin("*", Num(3), Num(4)))),
			&ast.Return{X: a},
		),
	})
}

func IfZero() *ast.File {
	x := Var(0, "x")
	y := Var(1, "y")

	return File(&ast.Func{
		Name:   "f",
		Ret:    ir.I32,
		Params: []*ast.Var{x},
		Body: Block(
			Assign(y, Num(0)),
			&ast.If{
				Cond: Cmp("==", x, Num(0)),
				Then: Block(Assign(y, Num(1))),
			},
			&ast.Return{X: y},
		),
	})
}

func Loop() *ast.File {
	n := Var(0, "n")
	i := Var(1, "i")
	s := Var(2, "s")

	return File(&ast.Func{
		Name:   "sum",
		Ret:    ir.I32,
		Params: []*ast.Var{n},
		Body: Block(
			Assign(s, Num(0)),
			&ast.For{
				Init: Expr(Assign(i, Num(0))),
				Cond: Cmp("<", i, n),
				Post: Expr(Assign(i, Bin("+", i, Num(1)))),
				Body: Block(
					&ast.If{
						Cond: Cmp("==", Bin("%", i, Num(3)), Num(0)),
						Then: Block(&ast.Continue{}),
					},
					&ast.If{
						Cond: Cmp(">", s, Num(100)),
						Then: Block(&ast.Break{}),
					},
					Expr(Assign(s, &ast.Chain{First: s, Rest: []ast.Term{{Op: "+", X: i}, {Op: "-", X: Num(1)}}, Type: ir.I32})),
				),
			},
			&ast.Return{X: s},
		),
	})
}

func Forever() *ast.File {
	x := Var(0, "x")

	return File(&ast.Func{
		Name:   "forever",
		Ret:    ir.I32,
		Params: []*ast.Var{x},
		Body: Block(
			&ast.While{
				Cond: Num(1),
				Body: Block(&ast.Return{X: x}),
			},
			Assign(x, Bin("+", x, Num(1))),
			&ast.Return{X: x},
		),
	})
}

func Logic() *ast.File {
	a := Var(0, "a")
	b := Var(1, "b")
	c := Var(2, "c")

	return File(&ast.Func{
		Name:   "logic",
		Ret:    ir.Bool,
		Params: []*ast.Var{a, b, c},
		Body: Block(
			&ast.Return{X: &ast.Logic{
				Op: "||",
				List: []ast.Expr{
					&ast.Logic{Op: "&&", List: []ast.Expr{a, b}, Type: ir.Bool},
					c,
				},
				Type: ir.Bool,
			}},
		),
	})
}

func Calls() *ast.File {
	a := Var(0, "a")
	b := Var(1, "b")

	add := &ast.Func{
		Name:   "add",
		Ret:    ir.I32,
		Params: []*ast.Var{a, b},
		Body: Block(
			&ast.Return{X: Bin("+", a, b)},
		),
	}

	puts := &ast.FuncRef{Name: "puts", Params: []ir.Width{ir.Ptr}}

	main := &ast.Func{
		Name: "main",
		Ret:  ir.I32,
		Body: Block(
			Expr(&ast.Call{Func: puts, Args: []ast.Expr{&ast.Str{Value: "hello"}}}),
			Expr(&ast.Call{Func: add.Ref(), Args: []ast.Expr{Num(1), Num(2)}}),
			Expr(&ast.Call{Func: puts, Args: []ast.Expr{&ast.Str{Value: "hello"}}}),
			&ast.Return{X: &ast.Call{Func: add.Ref(), Args: []ast.Expr{Num(3), Bin("*", Num(4), Num(5))}}},
		),
	}

	return File(add, main)
}

func Abs() *ast.File {
	x := Var(0, "x")

	return File(&ast.Func{
		Name:   "abs",
		Ret:    ir.I32,
		Params: []*ast.Var{x},
		Body: Block(
			&ast.Return{X: &ast.Cond{
				Cond: Cmp(">", x, Num(0)),
				Then: x,
				Else: &ast.Unary{Op: "-", X: x, Type: ir.I32},
				Type: ir.I32,
			}},
		),
	})
}

func Memory() *ast.File {
	p := &ast.Var{ID: 0, Name: "p", Type: ir.Ptr}
	v := Var(1, "v")

	return File(&ast.Func{
		Name:   "inc",
		Params: []*ast.Var{p},
		Body: Block(
			Assign(v, &ast.Load{Addr: p, Type: ir.I32}),
			&ast.Store{Addr: p, X: Bin("+", v, Num(1))},
		),
	})
}

func File(fs ...*ast.Func) *ast.File {
	return &ast.File{Funcs: fs}
}

func Block(l ...ast.Stmt) *ast.Block {
	for i, s := range l {
		if x, ok := s.(ast.Expr); ok {
			l[i] = &ast.ExprStmt{X: x}
		}
	}

	return &ast.Block{List: l}
}

func Expr(x ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{X: x}
}

func Var(id int, name string) *ast.Var {
	return &ast.Var{ID: id, Name: name, Type: ir.I32}
}

func Num(v int64) *ast.Num {
	return &ast.Num{Value: v, Type: ir.I32}
}

func Bin(op string, x, y ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, X: x, Y: y, Type: ir.I32}
}

func Cmp(op string, x, y ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, X: x, Y: y, Type: ir.Bool}
}

func Assign(v *ast.Var, x ast.Expr) *ast.Assign {
	return &ast.Assign{Var: v, X: x}
}
