package disasm_test

import (
	"strings"
	"testing"

	"github.com/mna/diwa/lang/compiler"
	"github.com/mna/diwa/lang/disasm"
	"github.com/mna/diwa/lang/value"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *value.Function {
	t.Helper()
	var objs value.HeapObject
	c := compiler.New(value.NewStrings(), &objs)
	fn, errs := c.Compile(src)
	require.Empty(t, errs)
	require.NotNil(t, fn)
	return fn
}

func TestFunctionSimple(t *testing.T) {
	fn := compile(t, `ipakita 1 + 2;`)
	out := disasm.Function(fn)
	require.Contains(t, out, "== <skrip>")
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "ADD")
	require.Contains(t, out, "PRINT")
	require.Contains(t, out, "RETURN")
}

func TestFunctionJumpsResolveTargets(t *testing.T) {
	fn := compile(t, `
		kilalanin x = 1;
		kung (x > 0) {
			ipakita x;
		} kundiman {
			ipakita 0;
		}
	`)
	out := disasm.Function(fn)
	require.Contains(t, out, "JUMP_IF_FALSE")
	require.Contains(t, out, "->")
}

func TestFunctionNestedListedAfterEnclosing(t *testing.T) {
	fn := compile(t, `
		gawain labas() {
			ibalik 1;
		}
	`)
	out := disasm.Function(fn)
	idxTop := strings.Index(out, "== <skrip>")
	idxNested := strings.Index(out, "== labas")
	require.GreaterOrEqual(t, idxTop, 0)
	require.Greater(t, idxNested, idxTop)
}

func TestInstructionSingleStep(t *testing.T) {
	fn := compile(t, `ipakita tama;`)
	text, next := disasm.Instruction(&fn.Chunk, 0)
	fields := strings.Fields(text)
	require.Equal(t, "TRUE", fields[len(fields)-1])
	require.Equal(t, 1, next)
}
