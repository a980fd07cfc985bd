// Package ast is the resolved syntax tree handed over by the front end.
// Names are already bound: variables carry their ID, calls carry the callee signature.
package ast

import "github.com/slowlang/tac/compiler/ir"

type (
	Node interface{}

	Expr interface {
		Width() ir.Width
	}

	Stmt interface{}

	Num struct {
		Value int64
		Type  ir.Width
	}

	Str struct {
		Value string
	}

	// Var is a resolved variable or parameter. ID is unique within its Func.
	Var struct {
		ID   int
		Name string
		Type ir.Width
	}

	FuncRef struct {
		Name   string
		Ret    ir.Width
		Params []ir.Width
	}

	Unary struct {
		Op   string
		X    Expr
		Type ir.Width
	}

	Binary struct {
		Op   string
		X, Y Expr
		Type ir.Width
	}

	// Chain is a left associative run of additions and subtractions.
	Chain struct {
		First Expr
		Rest  []Term
		Type  ir.Width
	}

	Term struct {
		Op string
		X  Expr
	}

	Logic struct {
		Op   string
		List []Expr
		Type ir.Width
	}

	Cond struct {
		Cond Expr
		Then Expr
		Else Expr
		Type ir.Width
	}

	Call struct {
		Func *FuncRef
		Args []Expr
	}

	Assign struct {
		Var *Var
		X   Expr
	}

	Load struct {
		Addr Expr
		Type ir.Width
	}

	Block struct {
		List []Stmt
	}

	ExprStmt struct {
		X Expr
	}

	Store struct {
		Addr Expr
		X    Expr
	}

	If struct {
		Cond Expr
		Then Stmt
		Else Stmt
	}

	While struct {
		Cond Expr
		Body Stmt
	}

	For struct {
		Init Stmt
		Cond Expr
		Post Stmt
		Body Stmt
	}

	Break struct{}

	Continue struct{}

	Return struct {
		X Expr
	}

	Func struct {
		Name   string
		Ret    ir.Width
		Params []*Var
		Body   *Block
	}

	File struct {
		Funcs []*Func
	}
)

func (x *Num) Width() ir.Width     { return x.Type }
func (x *Str) Width() ir.Width     { return ir.Ptr }
func (x *Var) Width() ir.Width     { return x.Type }
func (x *FuncRef) Width() ir.Width { return ir.Ptr }
func (x *Unary) Width() ir.Width   { return x.Type }
func (x *Binary) Width() ir.Width  { return x.Type }
func (x *Chain) Width() ir.Width   { return x.Type }
func (x *Logic) Width() ir.Width   { return x.Type }
func (x *Cond) Width() ir.Width    { return x.Type }
func (x *Load) Width() ir.Width    { return x.Type }

// Width is Void for an unresolved callee.
func (x *Call) Width() ir.Width {
	if x.Func == nil {
		return ir.Void
	}

	return x.Func.Ret
}

func (x *Assign) Width() ir.Width {
	if x.Var == nil {
		return ir.Void
	}

	return x.Var.Type
}

func (f *Func) Ref() *FuncRef {
	r := &FuncRef{
		Name: f.Name,
		Ret:  f.Ret,
	}

	for _, p := range f.Params {
		r.Params = append(r.Params, p.Type)
	}

	return r
}
