package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/format"
	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/lower"
	"github.com/slowlang/tac/compiler/opt"
	"github.com/slowlang/tac/compiler/samples"
)

func TestCompileSamples(t *testing.T) {
	for _, s := range samples.All() {
		p, err := Compile(context.Background(), s.File)
		require.NoError(t, err, s.Name)
		require.Len(t, p.Funcs, len(s.File.Funcs), s.Name)

		for _, f := range p.Funcs {
			assert.NoError(t, ir.Verify(f), "%v/%v", s.Name, f.Name)
		}

		q, err := Compile(context.Background(), s.File)
		require.NoError(t, err, s.Name)

		assert.Equal(t, format.String(nil, p), format.String(nil, q), "%v: not deterministic", s.Name)
	}
}

func TestCompileArith(t *testing.T) {
	p, err := Compile(context.Background(), samples.Arith())
	require.NoError(t, err)

	assert.Equal(t, `func main() i32 {
	mul t0, 3, 4
	add a, 2, t0
	ret a
}
`, format.String(nil, p))
}

func TestCompileSetupOnly(t *testing.T) {
	pl := opt.Default()
	pl.Iter = nil

	p, err := CompileWith(context.Background(), samples.IfZero(), pl)
	require.NoError(t, err)

	assert.Equal(t, `func f(i32 x) i32 {
	mov y, 0
	bnz if.end.0, x
	mov y, 1
if.end.0:
	ret y
}
`, format.String(nil, p))
}

func TestCompileIsolatesFailures(t *testing.T) {
	file := samples.Calls()
	file.Funcs = append(file.Funcs, &ast.Func{
		Name: "broken",
		Body: samples.Block(&ast.Continue{}),
	})

	p, err := Compile(context.Background(), file)
	require.Error(t, err)
	require.NotNil(t, p)

	assert.ErrorIs(t, err, lower.ErrNoLoop)

	var errs ir.Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "broken", errs[0].Func)

	assert.NotNil(t, p.Func("add"))
	assert.NotNil(t, p.Func("main"))
	assert.Nil(t, p.Func("broken"))
}
