package ir

import (
	"fmt"

	"tlog.app/go/loc"
)

type (
	// Operand is one of Num, Reg, Data, Label, FuncLabel, Debug or None.
	Operand interface {
		operand()
		String() string
	}

	Num struct {
		Value int64
		Width Width
	}

	// Reg is a temporary (compiler generated) or named (variable, parameter) register.
	// Identity is Key(): named and temporary registers live in different index spaces.
	Reg struct {
		Index int
		Width Width
		Temp  bool
		Name  string
	}

	RegKey struct {
		Temp  bool
		Index int
	}

	Section uint8

	Data struct {
		Section Section
		Index   int
	}

	// Label is a handle into Labels.
	Label int

	FuncLabel struct {
		Label Label
		Ret   Width
	}

	// Debug is a provenance payload carried by nop.
	Debug struct {
		Value any
		PC    loc.PC
	}

	None struct{}
)

const (
	Strings Section = iota
)

var Nothing = None{}

func (Num) operand()       {}
func (Reg) operand()       {}
func (Data) operand()      {}
func (Label) operand()     {}
func (FuncLabel) operand() {}
func (Debug) operand()     {}
func (None) operand()      {}

func (r Reg) Key() RegKey {
	return RegKey{Temp: r.Temp, Index: r.Index}
}

func (x Num) String() string {
	return fmt.Sprintf("%d", x.Value)
}

func (r Reg) String() string {
	switch {
	case r.Temp:
		return fmt.Sprintf("t%d", r.Index)
	case r.Name != "":
		return r.Name
	default:
		return fmt.Sprintf("v%d", r.Index)
	}
}

func (d Data) String() string {
	return fmt.Sprintf("%v[%d]", d.Section, d.Index)
}

func (s Section) String() string {
	switch s {
	case Strings:
		return "str"
	default:
		return fmt.Sprintf("section%d", int(s))
	}
}

func (l Label) String() string {
	return fmt.Sprintf("L%d", int(l))
}

func (f FuncLabel) String() string {
	return "@" + f.Label.String()
}

func (d Debug) String() string {
	if d.PC == 0 {
		return fmt.Sprintf("#%T", d.Value)
	}

	name, _, line := d.PC.NameFileLine()

	return fmt.Sprintf("#%T@%s:%d", d.Value, name, line)
}

func (None) String() string { return "_" }

// IsZero reports whether x is the literal zero.
func IsZero(x Operand) bool {
	n, ok := x.(Num)

	return ok && n.Value == 0
}

// SameReg reports whether x and y are both registers with the same identity.
func SameReg(x, y Operand) bool {
	a, ok := x.(Reg)
	if !ok {
		return false
	}

	b, ok := y.(Reg)

	return ok && a.Key() == b.Key()
}
