// Package ast defines the syntax tree produced by internal/parser and
// consumed by internal/bytecode's compiler.
//
// Every node implements Node; expression nodes additionally implement
// Expression and statement nodes additionally implement Statement. The
// node set is intentionally small and mirrors the variant table of the
// language's statement/expression grammar rather than a general-purpose
// ECMAScript tree: there are no class, import/export, arrow-function, or
// generator nodes because the compiler does not lower them.
package ast
