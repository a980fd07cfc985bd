package lower

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/format"
	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/samples"
)

func TestArith(t *testing.T) {
	p, err := Program(context.Background(), samples.Arith())
	require.NoError(t, err)
	require.Len(t, p.Funcs, 1)

	assert.Equal(t, `mul t1, 3, 4
add t0, 2, t1
mov a, t0
ret a
`, text(t, p, p.Funcs[0]))
}

func TestIf(t *testing.T) {
	p, err := Program(context.Background(), samples.IfZero())
	require.NoError(t, err)

	f := p.Funcs[0]

	assert.Equal(t, `mov y, 0
eq t0, x, 0
brz if.end.0, t0
mov y, 1
if.end.0:
ret y
`, text(t, p, f))

	assert.Equal(t, []ir.Param{{Width: ir.I32, Name: "x"}}, f.Params)
	assert.Equal(t, ir.I32, f.Ret)
}

func TestIfElse(t *testing.T) {
	x := samples.Var(0, "x")

	p, err := Program(context.Background(), samples.File(&ast.Func{
		Name:   "f",
		Params: []*ast.Var{x},
		Ret:    ir.I32,
		Body: samples.Block(
			&ast.If{
				Cond: x,
				Then: samples.Block(&ast.Return{X: samples.Num(1)}),
				Else: samples.Block(&ast.Return{X: samples.Num(2)}),
			},
		),
	}))
	require.NoError(t, err)

	assert.Equal(t, `mov t0, x
brz if.else.1, t0
ret 1
br if.end.0
if.else.1:
ret 2
if.end.0:
ret
`, text(t, p, p.Funcs[0]))
}

func TestWhileTrue(t *testing.T) {
	p, err := Program(context.Background(), samples.Forever())
	require.NoError(t, err)

	assert.Equal(t, `while.top.0:
mov t0, 1
brz while.end.1, t0
ret x
br while.top.0
while.end.1:
add t1, x, 1
mov x, t1
ret x
`, text(t, p, p.Funcs[0]))
}

func TestForBreakContinue(t *testing.T) {
	n := samples.Var(0, "n")
	i := samples.Var(1, "i")

	p, err := Program(context.Background(), samples.File(&ast.Func{
		Name:   "f",
		Params: []*ast.Var{n},
		Body: samples.Block(
			&ast.For{
				Init: samples.Expr(samples.Assign(i, samples.Num(0))),
				Cond: samples.Cmp("<", i, n),
				Post: samples.Expr(samples.Assign(i, samples.Bin("+", i, samples.Num(1)))),
				Body: samples.Block(
					&ast.If{
						Cond: samples.Cmp("==", i, samples.Num(5)),
						Then: samples.Block(&ast.Break{}),
					},
					&ast.Continue{},
				),
			},
		),
	}))
	require.NoError(t, err)

	assert.Equal(t, `mov i, 0
for.top.0:
lt t0, i, n
brz for.end.2, t0
eq t1, i, 5
brz if.end.3, t1
br for.end.2
if.end.3:
br for.cont.1
for.cont.1:
add t2, i, 1
mov i, t2
br for.top.0
for.end.2:
ret
`, text(t, p, p.Funcs[0]))
}

func TestNestedLoops(t *testing.T) {
	x := samples.Var(0, "x")

	p, err := Program(context.Background(), samples.File(&ast.Func{
		Name:   "f",
		Params: []*ast.Var{x},
		Body: samples.Block(
			&ast.For{
				Body: samples.Block(
					&ast.While{
						Cond: x,
						Body: samples.Block(&ast.Break{}),
					},
					&ast.Break{},
				),
			},
		),
	}))
	require.NoError(t, err)

	assert.Equal(t, `for.top.0:
while.top.3:
mov t0, x
brz while.end.4, t0
br while.end.4
br while.top.3
while.end.4:
br for.end.2
for.cont.1:
br for.top.0
for.end.2:
ret
`, text(t, p, p.Funcs[0]))
}

func TestLogic(t *testing.T) {
	p, err := Program(context.Background(), samples.Logic())
	require.NoError(t, err)

	assert.Equal(t, `mov t0, 1
mov t1, 0
brz and.end.2, a
brz and.end.2, b
mov t1, 1
and.end.2:
bnz or.true.0, t1
bnz or.true.0, c
mov t0, 0
br or.end.1
or.true.0:
or.end.1:
ret t0
`, text(t, p, p.Funcs[0]))
}

func TestCond(t *testing.T) {
	p, err := Program(context.Background(), samples.Abs())
	require.NoError(t, err)

	assert.Equal(t, `gt t1, x, 0
brz cond.else.0, t1
mov t0, x
br cond.end.1
cond.else.0:
neg t0, x
cond.end.1:
ret t0
`, text(t, p, p.Funcs[0]))
}

func TestCalls(t *testing.T) {
	p, err := Program(context.Background(), samples.Calls())
	require.NoError(t, err)
	require.Len(t, p.Funcs, 2)

	assert.Equal(t, `add t0, a, b
ret t0
`, text(t, p, p.Func("add")))

	assert.Equal(t, `mov t0, str[0]
call _, @puts, t0
mov t1, 1
mov t2, 2
call _, @add, t1, t2
mov t3, str[0]
call _, @puts, t3
mov t5, 3
mul t6, 4, 5
call t4, @add, t5, t6
ret t4
`, text(t, p, p.Func("main")))

	assert.Equal(t, []string{"hello"}, p.Data.Strings)

	for _, x := range p.Func("main").Code {
		if x.Op != ir.Call {
			continue
		}

		fl := x.Args[1].(ir.FuncLabel)

		switch p.Labels.Name(fl.Label) {
		case "puts":
			assert.Equal(t, ir.Void, fl.Ret)
		case "add":
			assert.Equal(t, ir.I32, fl.Ret)
		default:
			t.Errorf("unexpected callee: %v", x)
		}

		assert.False(t, p.Labels.IsTemp(fl.Label))
	}
}

func TestMemory(t *testing.T) {
	p, err := Program(context.Background(), samples.Memory())
	require.NoError(t, err)

	assert.Equal(t, `read t0, p
mov v, t0
add t1, v, 1
write p, t1
ret
`, text(t, p, p.Funcs[0]))
}

func TestAssignChain(t *testing.T) {
	x := samples.Var(0, "x")
	y := samples.Var(1, "y")
	s := samples.Var(2, "s")

	p, err := Program(context.Background(), samples.File(&ast.Func{
		Name: "f",
		Ret:  ir.I32,
		Body: samples.Block(
			samples.Assign(y, samples.Assign(x, samples.Num(3))),
			samples.Assign(s, &ast.Chain{
				First: y,
				Rest:  []ast.Term{{Op: "+", X: x}, {Op: "-", X: samples.Num(1)}},
				Type:  ir.I32,
			}),
			&ast.Return{X: &ast.Unary{Op: "!", X: samples.Bin("~|", s, x), Type: ir.Bool}},
		),
	}))
	require.NoError(t, err)

	assert.Equal(t, `mov x, 3
mov t0, x
mov y, t0
add t2, y, x
sub t1, t2, 1
mov s, t1
nor t4, s, x
not t3, t4
ret t3
`, text(t, p, p.Funcs[0]))
}

func TestNopsCarryProvenance(t *testing.T) {
	file := samples.Arith()

	p, err := Program(context.Background(), file)
	require.NoError(t, err)

	code := p.Funcs[0].Code
	require.NotEmpty(t, code)

	assert.Equal(t, ir.Nop, code[0].Op)

	d, ok := code[0].Args[0].(ir.Debug)
	require.True(t, ok)
	assert.Same(t, file.Funcs[0].Body, d.Value)
	assert.NotZero(t, d.PC)
}

func TestDeterministic(t *testing.T) {
	for _, s := range samples.All() {
		a, err := Program(context.Background(), s.File)
		require.NoError(t, err, s.Name)

		b, err := Program(context.Background(), s.File)
		require.NoError(t, err, s.Name)

		assert.Equal(t, format.String(nil, a), format.String(nil, b), s.Name)

		for _, f := range a.Funcs {
			assert.NoError(t, ir.Verify(f), "%v/%v", s.Name, f.Name)
		}
	}
}

func TestErrors(t *testing.T) {
	x := samples.Var(0, "x")

	for _, tc := range []struct {
		name string
		body *ast.Block
		err  error
	}{
		{name: "break", body: samples.Block(&ast.Break{}), err: ErrNoLoop},
		{name: "continue", body: samples.Block(&ast.If{Cond: x, Then: &ast.Continue{}}), err: ErrNoLoop},
		{name: "binary", body: samples.Block(samples.Bin("**", x, x)), err: ErrUnsupportedNode},
		{name: "unary", body: samples.Block(&ast.Unary{Op: "~", X: x, Type: ir.I32}), err: ErrUnsupportedNode},
		{name: "chain", body: samples.Block(&ast.Chain{First: x, Rest: []ast.Term{{Op: "*", X: x}}, Type: ir.I32}), err: ErrUnsupportedNode},
		{name: "logic", body: samples.Block(&ast.Logic{Op: "^^", List: []ast.Expr{x}, Type: ir.Bool}), err: ErrUnsupportedNode},
		{name: "stmt", body: &ast.Block{List: []ast.Stmt{samples.Num(1)}}, err: ErrUnsupportedNode},
		{name: "call", body: samples.Block(&ast.Call{}), err: ErrUnsupportedNode},
		{name: "return_call", body: samples.Block(&ast.Return{X: &ast.Call{}}), err: ErrUnsupportedNode},
		{name: "return_assign", body: samples.Block(&ast.Return{X: &ast.Assign{X: samples.Num(1)}}), err: ErrUnsupportedNode},
		{name: "if_call", body: samples.Block(&ast.If{Cond: &ast.Call{}, Then: samples.Block()}), err: ErrUnsupportedNode},
		{name: "arg_call", body: samples.Block(&ast.Call{Func: &ast.FuncRef{Name: "g", Params: []ir.Width{ir.I32}}, Args: []ast.Expr{&ast.Call{}}}), err: ErrUnsupportedNode},
		{name: "funcref", body: samples.Block(samples.Assign(x, &ast.FuncRef{Name: "g"})), err: ir.ErrMalformedOperand},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := New(ir.NewProgram())

			_, err := l.Func(context.Background(), &ast.Func{Name: "f", Params: []*ast.Var{x}, Body: tc.body})
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestBadCallArgs(t *testing.T) {
	g := &ast.FuncRef{Name: "g", Params: []ir.Width{ir.I32, ir.I32}}

	l := New(ir.NewProgram())

	_, err := l.Func(context.Background(), &ast.Func{Name: "f", Body: samples.Block(
		&ast.Call{Func: g, Args: []ast.Expr{samples.Num(1)}},
	)})
	assert.Error(t, err)
}

func TestParamRedefined(t *testing.T) {
	l := New(ir.NewProgram())

	_, err := l.Func(context.Background(), &ast.Func{Name: "f", Params: []*ast.Var{samples.Var(0, "a"), samples.Var(0, "b")}})
	assert.Error(t, err)
}

func TestProgramIsolatesFailures(t *testing.T) {
	x := samples.Var(0, "x")

	file := samples.File(
		&ast.Func{Name: "bad", Body: samples.Block(&ast.Break{})},
		&ast.Func{Name: "good", Params: []*ast.Var{x}, Ret: ir.I32, Body: samples.Block(&ast.Return{X: x})},
	)

	p, err := Program(context.Background(), file)
	require.Error(t, err)
	require.NotNil(t, p)

	var errs ir.Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "bad", errs[0].Func)
	assert.ErrorIs(t, err, ErrNoLoop)

	require.Len(t, p.Funcs, 1)
	assert.Equal(t, "good", p.Funcs[0].Name)
}

func TestEmptyFunc(t *testing.T) {
	p, err := Program(context.Background(), samples.File(&ast.Func{Name: "f"}))
	require.NoError(t, err)

	assert.Equal(t, "ret\n", text(t, p, p.Funcs[0]))
}

func text(t testing.TB, p *ir.Program, f *ir.Func) string {
	t.Helper()

	require.NotNil(t, f)

	var code []ir.Instr

	for _, x := range f.Code {
		if x.Op != ir.Nop {
			code = append(code, x)
		}
	}

	b, err := format.Format(context.Background(), nil, p.Labels, code)
	require.NoError(t, err)

	return string(b)
}
