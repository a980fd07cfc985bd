package ir

import "fmt"

type (
	Width struct {
		Bits   int16
		Signed bool
	}
)

var (
	Void = Width{}

	I8  = Width{Bits: 8, Signed: true}
	I16 = Width{Bits: 16, Signed: true}
	I32 = Width{Bits: 32, Signed: true}
	I64 = Width{Bits: 64, Signed: true}

	U8  = Width{Bits: 8}
	U16 = Width{Bits: 16}
	U32 = Width{Bits: 32}
	U64 = Width{Bits: 64}

	Bool = U8
	Ptr  = U64
)

func (w Width) Size() int {
	return int(w.Bits) / 8
}

func (w Width) IsVoid() bool {
	return w.Bits == 0
}

func (w Width) String() string {
	switch {
	case w.IsVoid():
		return "void"
	case w.Signed:
		return fmt.Sprintf("i%d", w.Bits)
	default:
		return fmt.Sprintf("u%d", w.Bits)
	}
}
