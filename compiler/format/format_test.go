package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tac/compiler/ir"
)

func TestFormatProgram(t *testing.T) {
	p := ir.NewProgram()

	s := p.Data.Intern("hi\n")
	puts := p.Labels.Named("puts")
	end := p.Labels.Temp("if.end.0")

	x := ir.Reg{Index: 0, Width: ir.I32, Name: "x"}
	t0 := ir.Reg{Index: 0, Width: ir.Ptr, Temp: true}

	p.Funcs = []*ir.Func{
		{
			Name:   "f",
			Ret:    ir.I32,
			Params: []ir.Param{{Width: ir.I32, Name: "x"}},
			Code: []ir.Instr{
				ir.New(ir.Bnz, end, x),
				ir.New(ir.Mov, t0, ir.Data{Index: s}),
				ir.New(ir.Call, ir.Nothing, ir.FuncLabel{Label: puts}, t0),
				ir.New(ir.LabelOp, end),
				ir.New(ir.Ret, x),
			},
		},
		{
			Name: "g",
			Code: []ir.Instr{ir.New(ir.Ret)},
		},
	}

	b, err := Format(context.Background(), nil, nil, p)
	require.NoError(t, err)

	assert.Equal(t, `data str[0] "hi\n"

func f(i32 x) i32 {
	bnz if.end.0, x
	mov t0, str[0]
	call _, @puts, t0
if.end.0:
	ret x
}

func g() {
	ret
}
`, string(b))
}

func TestFormatPieces(t *testing.T) {
	ls := ir.NewLabels()
	l := ls.Temp("loop")

	assert.Equal(t, "loop", String(ls, l))
	assert.Equal(t, "L0", String(nil, l))
	assert.Equal(t, "br loop", String(ls, ir.New(ir.Br, l)))
	assert.Equal(t, "loop:", String(ls, ir.New(ir.LabelOp, l)))
	assert.Equal(t, "add t1, 2, -3", String(ls, ir.New(ir.Add, ir.Reg{Index: 1, Temp: true}, ir.Num{Value: 2}, ir.Num{Value: -3})))

	assert.Equal(t, "L0:\nret\n", String(nil, []ir.Instr{ir.New(ir.LabelOp, l), ir.New(ir.Ret)}))

	_, err := Format(context.Background(), nil, ls, 5)
	assert.Error(t, err)
	assert.Contains(t, String(ls, 5), "unsupported")
}
