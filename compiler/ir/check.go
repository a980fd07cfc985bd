package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/set"
)

// Check validates operand variants of x against its opcode.
func Check(x Instr) error {
	want := func(n int) error {
		if len(x.Args) != n {
			return errors.Wrap(ErrMalformedOperand, "%v: %d operands, want %d", x.Op, len(x.Args), n)
		}

		return nil
	}

	bad := func(i int) error {
		return errors.Wrap(ErrMalformedOperand, "%v: operand %d: %v (%T)", x.Op, i, x.Args[i], x.Args[i])
	}

	values := func(st int) error {
		for i := st; i < len(x.Args); i++ {
			if !isValue(x.Args[i]) {
				return bad(i)
			}
		}

		return nil
	}

	switch op := x.Op; {
	case op == Nop:
		if err := want(1); err != nil {
			return err
		}

		if _, ok := x.Args[0].(Debug); !ok {
			return bad(0)
		}

		return nil
	case op == Mov, op == Read, op.Unary():
		if err := want(2); err != nil {
			return err
		}
	case op.Binary():
		if err := want(3); err != nil {
			return err
		}
	case op == Write:
		if err := want(2); err != nil {
			return err
		}

		return values(0)
	case op == Br, op == LabelOp:
		if err := want(1); err != nil {
			return err
		}

		if _, ok := x.Args[0].(Label); !ok {
			return bad(0)
		}

		return nil
	case op == Brz, op == Bnz:
		if err := want(2); err != nil {
			return err
		}

		if _, ok := x.Args[0].(Label); !ok {
			return bad(0)
		}

		return values(1)
	case op == Ret:
		if len(x.Args) > 1 {
			return errors.Wrap(ErrMalformedOperand, "ret: %d operands", len(x.Args))
		}

		return values(0)
	case op == Call:
		if len(x.Args) < 2 {
			return errors.Wrap(ErrMalformedOperand, "call: %d operands", len(x.Args))
		}

		switch x.Args[0].(type) {
		case Reg, None:
		default:
			return bad(0)
		}

		if _, ok := x.Args[1].(FuncLabel); !ok {
			return bad(1)
		}

		return values(2)
	default:
		return errors.Wrap(ErrMalformedOperand, "unknown opcode: %v", op)
	}

	if _, ok := x.Args[0].(Reg); !ok {
		return bad(0)
	}

	return values(1)
}

// Verify checks every instruction of f and label integrity:
// each label is defined once and each branch target is defined in f.
func Verify(f *Func) error {
	defined := set.MakeBitmap(len(f.Code))

	for i, x := range f.Code {
		if err := Check(x); err != nil {
			return errors.Wrap(err, "instr %d", i)
		}

		if x.Op != LabelOp {
			continue
		}

		l, _ := x.Target()

		if defined.IsSet(int(l)) {
			return errors.New("label %v defined twice", l)
		}

		defined.Set(int(l))
	}

	tlog.V("verify").Printw("labels defined", "func", f.Name, "labels", defined, "n", defined.Size())

	for i, x := range f.Code {
		if !x.Op.Branch() {
			continue
		}

		l, _ := x.Target()

		if !defined.IsSet(int(l)) {
			return errors.Wrap(ErrUnresolvedLabel, "instr %d: %v", i, x)
		}
	}

	return nil
}

func isValue(x Operand) bool {
	switch x.(type) {
	case Num, Reg, Data:
		return true
	}

	return false
}
