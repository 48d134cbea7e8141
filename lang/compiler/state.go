package compiler

import (
	"github.com/mna/diwa/lang/token"
	"github.com/mna/diwa/lang/value"
)

// functionType distinguishes the four contexts a funcState can compile, each
// of which needs slightly different local-slot-0 and return semantics.
type functionType uint8

const (
	typeScript functionType = iota
	typeFunction
	typeMethod
	typeInitializer
)

const maxLocals = 256

// local is a resolved local-variable slot, identified by the lexeme of the
// token that declared it.
type local struct {
	name       string
	depth      int // -1 while being declared, before its initializer runs
	isCaptured bool
}

// upvalue records how a captured variable should be found when the closure
// is created: from the enclosing function's locals (isLocal) or from its
// own upvalue list.
type upvalue struct {
	index   uint8
	isLocal bool
}

// funcState holds the compiler state for a single function body: name
// binding, scoping and the function's own emitted Chunk are all resolved in
// a single pass, with no separate resolver stage. funcStates form a stack
// via enclosing, one per lexically nested function/method being compiled.
type funcState struct {
	enclosing *funcState
	kind      functionType
	function  *value.Function

	locals     []local
	upvalues   []upvalue
	scopeDepth int
}

// newFuncState starts a fresh function frame. The Function's Name is left
// nil; the caller interns and assigns it once the shared string table is
// reachable (newFuncState itself has no access to it).
func newFuncState(enclosing *funcState, kind functionType) *funcState {
	fn := &value.Function{}
	fs := &funcState{enclosing: enclosing, kind: kind, function: fn}
	// Slot 0 is reserved: `ito` for methods/initializers, an unnamed
	// placeholder for plain functions and the script.
	slotName := ""
	if kind == typeMethod || kind == typeInitializer {
		slotName = "ito"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})
	return fs
}

// classState tracks the uri declaration currently being compiled, so that
// `ito` and `mula` resolve correctly inside its methods, and so nested
// classes restore their enclosing context on exit.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// loopState tracks the innermost habang/kada/gawin-habang loop so that
// itigil/ituloy can be compiled as forward/backward jumps without a
// resolver pass.
type loopState struct {
	enclosing      *loopState
	continueTarget int // LOOP target for ituloy
	scopeDepth     int
	breakJumps     []int // JUMP placeholders to patch to the loop's exit
}

// Precedence orders diwa's operators from loosest to tightest binding.
type precedence uint8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // o
	precAnd                   // at
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * / %
	precUnary                 // ! -
	precPostIncDec            // ++ --
	precCall                  // . () []
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules = map[token.Kind]rule{}

func init() {
	set := func(k token.Kind, prefix, infix parseFn, prec precedence) {
		rules[k] = rule{prefix: prefix, infix: infix, precedence: prec}
	}

	set(token.LPAREN, (*Compiler).grouping, (*Compiler).call, precCall)
	set(token.DOT, nil, (*Compiler).dot, precCall)
	set(token.LBRACK, (*Compiler).arrayLiteral, (*Compiler).index, precCall)
	set(token.MINUS, (*Compiler).unary, (*Compiler).binary, precTerm)
	set(token.PLUS, nil, (*Compiler).binary, precTerm)
	set(token.SLASH, nil, (*Compiler).binary, precFactor)
	set(token.STAR, nil, (*Compiler).binary, precFactor)
	set(token.PERCENT, nil, (*Compiler).binary, precFactor)
	set(token.BANG, (*Compiler).unary, nil, precNone)
	set(token.BANGEQ, nil, (*Compiler).binary, precEquality)
	set(token.EQEQ, nil, (*Compiler).binary, precEquality)
	set(token.GT, nil, (*Compiler).binary, precComparison)
	set(token.GE, nil, (*Compiler).binary, precComparison)
	set(token.LT, nil, (*Compiler).binary, precComparison)
	set(token.LE, nil, (*Compiler).binary, precComparison)
	set(token.PLUSPLUS, (*Compiler).prefixIncDec, nil, precNone)
	set(token.MINUSMINUS, (*Compiler).prefixIncDec, nil, precNone)
	set(token.IDENT, (*Compiler).variable, nil, precNone)
	set(token.STRING, (*Compiler).stringLiteral, nil, precNone)
	set(token.NUMBER, (*Compiler).number, nil, precNone)
	set(token.AND, nil, (*Compiler).and, precAnd)
	set(token.OR, nil, (*Compiler).or, precOr)
	set(token.FALSE, (*Compiler).literal, nil, precNone)
	set(token.TRUE, (*Compiler).literal, nil, precNone)
	set(token.NULL, (*Compiler).literal, nil, precNone)
	set(token.THIS, (*Compiler).this, nil, precNone)
	set(token.SUPER, (*Compiler).super, nil, precNone)
}

func getRule(k token.Kind) rule { return rules[k] }
