package ir

import (
	"tlog.app/go/errors"
)

type (
	Param struct {
		Width Width
		Name  string
	}

	// Func is a routine: its parameters are the named registers 0..len(Params)-1.
	Func struct {
		Name   string
		Ret    Width
		Params []Param

		Code []Instr
	}

	Program struct {
		Funcs []*Func

		Data   *Pool
		Labels *Labels
	}

	// Pool is the constant data shared by all functions of a program.
	// Data operands index into it.
	Pool struct {
		Strings []string

		index map[string]int
	}

	// Labels is the label arena of a program.
	// Named labels are interned by name, temporary ones are always fresh.
	Labels struct {
		names []string
		temp  []bool

		named map[string]Label
	}
)

func NewProgram() *Program {
	return &Program{
		Data:   NewPool(),
		Labels: NewLabels(),
	}
}

func (p *Program) Func(name string) *Func {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}

	return nil
}

func NewPool() *Pool {
	return &Pool{
		index: make(map[string]int),
	}
}

// Intern adds s to the pool unless it is already there and returns its index.
func (d *Pool) Intern(s string) int {
	if i, ok := d.index[s]; ok {
		return i
	}

	i := len(d.Strings)
	d.Strings = append(d.Strings, s)
	d.index[s] = i

	return i
}

func NewLabels() *Labels {
	return &Labels{
		named: make(map[string]Label),
	}
}

func (ls *Labels) Named(name string) Label {
	if l, ok := ls.named[name]; ok {
		return l
	}

	l := ls.alloc(name, false)
	ls.named[name] = l

	return l
}

// Temp allocates a new temporary label. Uniqueness of name is up to the caller.
func (ls *Labels) Temp(name string) Label {
	return ls.alloc(name, true)
}

func (ls *Labels) Name(l Label) string {
	if l < 0 || int(l) >= len(ls.names) {
		return l.String()
	}

	return ls.names[l]
}

func (ls *Labels) IsTemp(l Label) bool {
	return l >= 0 && int(l) < len(ls.temp) && ls.temp[l]
}

func (ls *Labels) Len() int {
	return len(ls.names)
}

func (ls *Labels) alloc(name string, temp bool) Label {
	l := Label(len(ls.names))

	ls.names = append(ls.names, name)
	ls.temp = append(ls.temp, temp)

	return l
}

// Labels maps every label defined in f to its position.
func (f *Func) Labels() (map[Label]int, error) {
	m := make(map[Label]int)

	for i, x := range f.Code {
		if x.Op != LabelOp {
			continue
		}

		l, ok := x.Target()
		if !ok {
			return nil, errors.Wrap(ErrMalformedOperand, "label at %d", i)
		}

		if j, ok := m[l]; ok {
			return nil, errors.New("label %v defined twice: at %d and %d", l, j, i)
		}

		m[l] = i
	}

	return m, nil
}

// Find returns the position of the label instruction defining l.
func (f *Func) Find(l Label) (int, error) {
	for i, x := range f.Code {
		if x.Op != LabelOp {
			continue
		}

		if t, ok := x.Target(); ok && t == l {
			return i, nil
		}
	}

	return -1, errors.Wrap(ErrUnresolvedLabel, "%v in %v", l, f.Name)
}
