package ir

import (
	"strings"

	"tlog.app/go/errors"
)

type (
	FuncError struct {
		Func string
		Err  error
	}

	// Errors collects failures of independently compiled functions.
	Errors []*FuncError
)

var (
	ErrMalformedOperand = errors.New("malformed operand")
	ErrUnresolvedLabel  = errors.New("unresolved label")
)

func (e *FuncError) Error() string {
	return "func " + e.Func + ": " + e.Err.Error()
}

func (e *FuncError) Unwrap() error { return e.Err }

func (e Errors) Error() string {
	var b strings.Builder

	for i, x := range e {
		if i != 0 {
			b.WriteString("; ")
		}

		b.WriteString(x.Error())
	}

	return b.String()
}

func (e Errors) Unwrap() []error {
	l := make([]error, len(e))

	for i, x := range e {
		l[i] = x
	}

	return l
}

// Err returns e as an error or nil if it's empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}
