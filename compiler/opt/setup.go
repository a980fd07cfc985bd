package opt

import (
	"github.com/slowlang/tac/compiler/ir"
)

// fusion maps a boolean producer followed by a branch on its result
// to the branch testing the producer's operand directly.
var fusion = map[[2]ir.Op]ir.Op{
	{ir.Eq, ir.Brz}:  ir.Bnz,
	{ir.Eq, ir.Bnz}:  ir.Brz,
	{ir.Neq, ir.Brz}: ir.Brz,
	{ir.Neq, ir.Bnz}: ir.Bnz,
	{ir.Not, ir.Brz}: ir.Bnz,
	{ir.Not, ir.Bnz}: ir.Brz,
}

func removeNops(f *ir.Func) (bool, error) {
	code := make([]ir.Instr, 0, len(f.Code))

	for _, x := range f.Code {
		if x.Op == ir.Nop {
			continue
		}

		code = append(code, x)
	}

	changed := len(code) != len(f.Code)
	f.Code = code

	return changed, nil
}

// fuseCompare turns "eq t, a, 0; brz L, t" into "bnz L, a" and alike.
// eq and neq are kept if t is used by anything besides the branch.
func fuseCompare(f *ir.Func) (changed bool, _ error) {
	refs := Refs(f.Code)
	code := make([]ir.Instr, 0, len(f.Code))

	for i := 0; i < len(f.Code); i++ {
		x := f.Code[i]

		if i+1 < len(f.Code) {
			if b, keep, ok := fuse(x, f.Code[i+1], refs); ok {
				if keep {
					code = append(code, x)
				}

				code = append(code, b)
				changed = true
				i++

				continue
			}
		}

		code = append(code, x)
	}

	f.Code = code

	return changed, nil
}

func fuse(x, next ir.Instr, refs map[ir.RegKey]int) (b ir.Instr, keep, ok bool) {
	op, ok := fusion[[2]ir.Op{x.Op, next.Op}]
	if !ok {
		return b, false, false
	}

	d, ok := x.Dst()
	if !ok {
		return b, false, false
	}

	c, ok := next.Cond()
	if !ok || !ir.SameReg(d, c) {
		return b, false, false
	}

	switch x.Op {
	case ir.Eq, ir.Neq:
		if !ir.IsZero(x.Args[2]) {
			return b, false, false
		}

		keep = refs[d.Key()] >= 3
	}

	return ir.New(op, next.Args[0], x.Args[1]), keep, true
}

// forwardMovTest makes "mov t, a; brz L, t" test a directly.
// The mov is left for dead code elimination.
func forwardMovTest(f *ir.Func) (changed bool, _ error) {
	code := make([]ir.Instr, len(f.Code))
	copy(code, f.Code)

	for i := 0; i+1 < len(code); i++ {
		x, next := code[i], code[i+1]

		if x.Op != ir.Mov || next.Op != ir.Brz {
			continue
		}

		c, _ := next.Cond()

		if !ir.SameReg(x.Args[0], c) || ir.SameReg(x.Args[1], c) {
			continue
		}

		next = next.Clone()
		next.Args[1] = x.Args[1]
		code[i+1] = next

		changed = true
	}

	f.Code = code

	return changed, nil
}
