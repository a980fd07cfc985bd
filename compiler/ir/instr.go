package ir

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Op uint8

	Instr struct {
		Op   Op
		Args []Operand
	}
)

const (
	Nop Op = iota
	Mov
	Read
	Write
	Add
	Sub
	Mul
	Div
	Mod
	And
	Or
	Xor
	Shl
	Shr
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	Not
	Neg
	Nor
	Br
	Brz
	Bnz
	LabelOp
	Ret
	Call

	numOps
)

var opNames = [numOps]string{
	Nop:     "nop",
	Mov:     "mov",
	Read:    "read",
	Write:   "write",
	Add:     "add",
	Sub:     "sub",
	Mul:     "mul",
	Div:     "div",
	Mod:     "mod",
	And:     "and",
	Or:      "or",
	Xor:     "xor",
	Shl:     "shl",
	Shr:     "shr",
	Eq:      "eq",
	Neq:     "neq",
	Lt:      "lt",
	Lte:     "lte",
	Gt:      "gt",
	Gte:     "gte",
	Not:     "not",
	Neg:     "neg",
	Nor:     "nor",
	Br:      "br",
	Brz:     "brz",
	Bnz:     "bnz",
	LabelOp: "label",
	Ret:     "ret",
	Call:    "call",
}

func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}

	return fmt.Sprintf("op%d", int(op))
}

// Binary reports whether op is a three-address "op d, a, b" instruction.
func (op Op) Binary() bool {
	return op >= Add && op <= Gte || op == Nor
}

func (op Op) Unary() bool {
	return op == Not || op == Neg
}

// Branch reports br, brz and bnz.
func (op Op) Branch() bool {
	return op == Br || op == Brz || op == Bnz
}

// Terminator reports whether control never falls through op.
func (op Op) Terminator() bool {
	return op == Br || op == Ret
}

func (op Op) defines() bool {
	return op == Mov || op == Read || op == Call || op.Binary() || op.Unary()
}

func New(op Op, args ...Operand) Instr {
	return Instr{Op: op, Args: args}
}

// Width is the result width of x: the width of its first operand, or
// the callee return width for call. Branches and labels have none.
func (x Instr) Width() (Width, bool) {
	switch x.Op {
	case Br, Brz, Bnz, LabelOp:
		return Void, false
	case Call:
		if len(x.Args) < 2 {
			return Void, false
		}

		f, ok := x.Args[1].(FuncLabel)
		if !ok {
			return Void, false
		}

		return f.Ret, true
	}

	if len(x.Args) == 0 {
		return Void, false
	}

	switch a := x.Args[0].(type) {
	case Reg:
		return a.Width, true
	case Num:
		return a.Width, true
	case Data:
		return Ptr, true
	}

	return Void, false
}

// Dst returns the register x defines.
func (x Instr) Dst() (Reg, bool) {
	if !x.Op.defines() || len(x.Args) == 0 {
		return Reg{}, false
	}

	r, ok := x.Args[0].(Reg)

	return r, ok
}

// Target returns the label a branch jumps to or a label instruction defines.
func (x Instr) Target() (Label, bool) {
	if !x.Op.Branch() && x.Op != LabelOp || len(x.Args) == 0 {
		return 0, false
	}

	l, ok := x.Args[0].(Label)

	return l, ok
}

// Cond returns the operand tested by brz and bnz.
func (x Instr) Cond() (Operand, bool) {
	if x.Op != Brz && x.Op != Bnz || len(x.Args) < 2 {
		return nil, false
	}

	return x.Args[1], true
}

func (x Instr) Clone() Instr {
	args := make([]Operand, len(x.Args))
	copy(args, x.Args)

	return Instr{Op: x.Op, Args: args}
}

func (x Instr) String() string {
	b := []byte(x.Op.String())

	for i, a := range x.Args {
		if i == 0 {
			b = append(b, ' ')
		} else {
			b = append(b, ", "...)
		}

		b = append(b, a.String()...)
	}

	return string(b)
}

func (x Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyValue(b, "op", x.Op.String())
	b = e.AppendKey(b, "args")
	b = e.AppendArray(b, len(x.Args))

	for _, a := range x.Args {
		b = e.AppendFormat(b, "%v", a)
	}

	return b
}
