package opt

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/set"
)

// passThrough drops jumps to the next instruction and
// redirects branches landing on another jump or label.
func passThrough(f *ir.Func) (changed bool, err error) {
	pos, err := f.Labels()
	if err != nil {
		return false, err
	}

	visited := set.MakeBitmap(len(pos))

	code := make([]ir.Instr, 0, len(f.Code))

	for i, x := range f.Code {
		if !x.Op.Branch() {
			code = append(code, x)
			continue
		}

		l, _ := x.Target()

		p, ok := pos[l]
		if !ok {
			return false, errors.Wrap(ir.ErrUnresolvedLabel, "instr %d: %v", i, l)
		}

		if x.Op == ir.Br && p == i+1 {
			changed = true
			continue
		}

		to := resolve(f.Code, pos, l, &visited)

		if to != l {
			x = x.Clone()
			x.Args[0] = to
			changed = true
		}

		code = append(code, x)
	}

	f.Code = code

	return changed, nil
}

// resolve follows l through labels and unconditional jumps.
// A cycle leaves l as is.
func resolve(code []ir.Instr, pos map[ir.Label]int, l ir.Label, visited *set.Bitmap) ir.Label {
	visited.Reset()
	visited.Set(int(l))

	to := l

	for {
		p, ok := pos[to]
		if !ok || p+1 >= len(code) {
			return to
		}

		next := code[p+1]
		if next.Op != ir.Br && next.Op != ir.LabelOp {
			return to
		}

		t, ok := next.Target()
		if !ok {
			return to
		}

		if !visited.Enter(int(t)) {
			tlog.V("label").Printw("label cycle", "label", l, "visited", *visited, "len", visited.Size())

			return l
		}

		to = t
	}
}

// dropUnreachable removes code following ret or br up to the next label.
func dropUnreachable(f *ir.Func) (changed bool, _ error) {
	code := make([]ir.Instr, 0, len(f.Code))
	dead := false

	for _, x := range f.Code {
		if x.Op == ir.LabelOp {
			dead = false
		}

		if dead {
			changed = true
			continue
		}

		code = append(code, x)

		if x.Op.Terminator() {
			dead = true
		}
	}

	f.Code = code

	return changed, nil
}
