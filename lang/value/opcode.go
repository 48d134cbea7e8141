package value

import "fmt"

// Opcode is a single bytecode instruction. The set below is the closure of
// every instruction the compiler emits and the machine interprets (spec
// §4.3's opcode table).
type Opcode uint8

//nolint:revive
const (
	OpConstant     Opcode = iota // k:   push constant k (one byte operand)
	OpLongConstant               // K:   push constant K (24-bit big-endian operand)
	OpNull
	OpTrue
	OpFalse
	OpPop
	OpDup
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpCloseUpvalue
	OpReturn
	OpClass
	OpInherit
	OpMethod
	OpDefineArray
	OpDeclareArray
	OpMultiArray
	OpGetElement
	OpSetElement

	opcodeCount
)

var opcodeNames = [...]string{
	OpConstant:     "CONSTANT",
	OpLongConstant: "LONG_CONSTANT",
	OpNull:         "NULL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpPop:          "POP",
	OpDup:          "DUP",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetGlobal:    "GET_GLOBAL",
	OpDefineGlobal: "DEFINE_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpGetUpvalue:   "GET_UPVALUE",
	OpSetUpvalue:   "SET_UPVALUE",
	OpGetProperty:  "GET_PROPERTY",
	OpSetProperty:  "SET_PROPERTY",
	OpGetSuper:     "GET_SUPER",
	OpEqual:        "EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpAdd:          "ADD",
	OpSubtract:     "SUBTRACT",
	OpMultiply:     "MULTIPLY",
	OpDivide:       "DIVIDE",
	OpModulo:       "MODULO",
	OpNot:          "NOT",
	OpNegate:       "NEGATE",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpLoop:         "LOOP",
	OpCall:         "CALL",
	OpInvoke:       "INVOKE",
	OpSuperInvoke:  "SUPER_INVOKE",
	OpClosure:      "CLOSURE",
	OpCloseUpvalue: "CLOSE_UPVALUE",
	OpReturn:       "RETURN",
	OpClass:        "CLASS",
	OpInherit:      "INHERIT",
	OpMethod:       "METHOD",
	OpDefineArray:  "DEFINE_ARRAY",
	OpDeclareArray: "DECLARE_ARRAY",
	OpMultiArray:   "MULTI_ARRAY",
	OpGetElement:   "GET_ELEMENT",
	OpSetElement:   "SET_ELEMENT",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
