// Package grammar holds diwa's surface grammar as a checked EBNF document
// (the canonical productions, transcribed here rather than left as prose).
// There is no parser generator to drive here (the compiler is hand-written
// and single-pass), so grammar.ebnf exists purely as checked documentation:
// the package test parses and verifies it with golang.org/x/exp/ebnf, so a
// typo that makes the documented grammar unparsable, or a production
// unreachable from the start symbol, fails the build instead of silently
// rotting out of sync with the compiler.
package grammar
