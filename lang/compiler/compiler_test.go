package compiler_test

import (
	"strings"
	"testing"

	"github.com/mna/diwa/lang/compiler"
	"github.com/mna/diwa/lang/value"
	"github.com/stretchr/testify/require"
)

func newCompiler() *compiler.Compiler {
	var objs value.HeapObject
	return compiler.New(value.NewStrings(), &objs)
}

func TestCompileEmptySource(t *testing.T) {
	c := newCompiler()
	fn, errs := c.Compile("")
	require.Empty(t, errs)
	require.NotNil(t, fn)
	require.Nil(t, fn.Name)
	// ends in NULL RETURN
	require.Equal(t, []byte{byte(value.OpNull), byte(value.OpReturn)}, fn.Chunk.Code)
}

func TestCompileSimpleExpression(t *testing.T) {
	c := newCompiler()
	fn, errs := c.Compile(`ipakita 1 + 2 * 3;`)
	require.Empty(t, errs)
	require.Contains(t, string(fn.Chunk.Code), "")
	require.Equal(t, 3, len(fn.Chunk.Constants))
}

func TestSyntaxErrorReportsLineAndLexeme(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile("kilalanin x = ;")
	require.NotEmpty(t, errs)
	require.Equal(t, 1, errs[0].Line)
	require.Equal(t, ";", errs[0].Where)
}

func TestPanicModeSuppressesCascadingErrors(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile("kilalanin = ; kilalanin y = 1;")
	// only the first malformed declaration should report; synchronize()
	// resumes cleanly at the next 'kilalanin'.
	require.Len(t, errs, 1)
}

func TestTooManyLocalsIsCompileError(t *testing.T) {
	var b strings.Builder
	b.WriteString("gawain f() {\n")
	for i := 0; i < 256; i++ {
		b.WriteString("kilalanin v")
		b.WriteString(itoa(i))
		b.WriteString(" = 0;\n")
	}
	b.WriteString("}\n")

	c := newCompiler()
	_, errs := c.Compile(b.String())
	require.NotEmpty(t, errs)
}

func TestTooManyArgumentsIsCompileError(t *testing.T) {
	var b strings.Builder
	b.WriteString("gawain f() { ibalik 0; }\nf(")
	for i := 0; i < 256; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("1")
	}
	b.WriteString(");\n")

	c := newCompiler()
	_, errs := c.Compile(b.String())
	require.NotEmpty(t, errs)
}

func TestReadVariableInOwnInitializerIsError(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile(`{ kilalanin a = a; }`)
	require.NotEmpty(t, errs)
}

func TestThisOutsideClassIsError(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile(`ipakita ito;`)
	require.NotEmpty(t, errs)
}

func TestSuperOutsideClassIsError(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile(`ipakita mula.halaga();`)
	require.NotEmpty(t, errs)
}

func TestReturnValueFromInitializerIsError(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile(`uri A { sim() { ibalik 1; } }`)
	require.NotEmpty(t, errs)
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile(`itigil;`)
	require.NotEmpty(t, errs)
}

func TestClassCannotInheritFromItself(t *testing.T) {
	c := newCompiler()
	_, errs := c.Compile(`uri A < A {}`)
	require.NotEmpty(t, errs)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
