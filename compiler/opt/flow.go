package opt

import (
	"github.com/slowlang/tac/compiler/ir"
)

// renumber makes temporary register indexes dense, in order of first appearance.
func renumber(f *ir.Func) (changed bool, _ error) {
	m := make(map[int]int)
	code := make([]ir.Instr, len(f.Code))

	for i, x := range f.Code {
		cloned := false

		for j, a := range x.Args {
			r, ok := a.(ir.Reg)
			if !ok || !r.Temp {
				continue
			}

			idx, ok := m[r.Index]
			if !ok {
				idx = len(m)
				m[r.Index] = idx
			}

			if idx == r.Index {
				continue
			}

			if !cloned {
				x = x.Clone()
				cloned = true
			}

			r.Index = idx
			x.Args[j] = r
			changed = true
		}

		code[i] = x
	}

	f.Code = code

	return changed, nil
}

// flow runs result forwarding and dead definition removal until neither applies.
func flow(f *ir.Func) (changed bool, _ error) {
	for {
		fwd := forwardResult(f)
		dead := removeDeadDefs(f)

		if !fwd && !dead {
			return changed, nil
		}

		changed = true
	}
}

// forwardResult turns "op r, ...; mov z, r" into "op z, ..." if r is used only there.
func forwardResult(f *ir.Func) (changed bool) {
	refs := Refs(f.Code)
	code := make([]ir.Instr, 0, len(f.Code))

	for i := 0; i < len(f.Code); i++ {
		x := f.Code[i]

		if i+1 < len(f.Code) {
			next := f.Code[i+1]

			if r, ok := x.Dst(); ok && next.Op == ir.Mov && ir.SameReg(next.Args[1], r) && refs[r.Key()] == 2 {
				x = x.Clone()
				x.Args[0] = next.Args[0]

				code = append(code, x)
				changed = true
				i++

				continue
			}
		}

		code = append(code, x)
	}

	f.Code = code

	return changed
}

// removeDeadDefs drops definitions nobody reads. Calls are kept for their effects.
func removeDeadDefs(f *ir.Func) (changed bool) {
	refs := Refs(f.Code)
	code := make([]ir.Instr, 0, len(f.Code))

	for _, x := range f.Code {
		if r, ok := x.Dst(); ok && x.Op != ir.Call && refs[r.Key()] < 2 {
			changed = true
			continue
		}

		code = append(code, x)
	}

	f.Code = code

	return changed
}
