/*
Package compiler is the middle end of the slow compiler.

Process of compilation

Resolved Syntax Tree (ast) ->
	lower ->
Three-Address Code (ir) ->
	opt ->
Simplified Three-Address Code (ir) ->
	backend (machine code or bytecode)

Each function is lowered and optimized independently.
A function failing any stage is reported and left out; the rest still compile.
Functions share the program's label arena and constant data pool.
*/
package compiler
