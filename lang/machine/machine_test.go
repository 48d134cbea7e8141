package machine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/diwa/lang/compiler"
	"github.com/mna/diwa/lang/machine"
	"github.com/mna/diwa/lang/value"
	"github.com/stretchr/testify/require"
)

// run compiles and interprets src against a fresh Machine, returning
// everything written to stdout and any RuntimeError produced.
func run(t *testing.T, src string, opts machine.Options) (string, error) {
	t.Helper()
	var objs value.HeapObject
	strs := value.NewStrings()

	c := compiler.New(strs, &objs)
	fn, errs := c.Compile(src)
	require.Empty(t, errs, "unexpected compile errors")

	var out bytes.Buffer
	opts.Stdout = &out
	m := machine.New(opts, strs, &objs)
	err := m.Interpret(fn)
	return out.String(), err
}

func runOK(t *testing.T, src string) string {
	t.Helper()
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	return out
}

// Concrete end-to-end scenarios exercising the major language features
// together.

func TestArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "7\n", runOK(t, `ipakita 1 + 2 * 3;`))
}

func TestStringConcatenation(t *testing.T) {
	require.Equal(t, "hello\n", runOK(t, `kilalanin a = "hel"; kilalanin b = "lo"; ipakita a + b;`))
}

func TestRecursiveFibonacci(t *testing.T) {
	src := `gawain f(n) { kung (n < 2) ibalik n; ibalik f(n-1) + f(n-2); } ipakita f(10);`
	require.Equal(t, "55\n", runOK(t, src))
}

func TestClosureCapturesAndMutatesUpvalue(t *testing.T) {
	src := `
		gawain mkcounter() {
			kilalanin c = 0;
			gawain inc() { c = c + 1; ibalik c; }
			ibalik inc;
		}
		kilalanin k = mkcounter();
		ipakita k();
		ipakita k();
		ipakita k();
	`
	require.Equal(t, "1\n2\n3\n", runOK(t, src))
}

func TestInheritanceAndSuperCall(t *testing.T) {
	src := `
		uri A {
			sim() { ito.x = 1; }
			halaga() { ibalik ito.x; }
		}
		uri B < A {
			halaga() { ibalik mula.halaga() + 10; }
		}
		ipakita B().halaga();
	`
	require.Equal(t, "11\n", runOK(t, src))
}

func TestArrayLiteralAndForLoopIndexing(t *testing.T) {
	src := `
		kilalanin xs = [10, 20, 30];
		kada (kilalanin i = 0; i < 3; i = i + 1) ipakita xs[i];
	`
	require.Equal(t, "10\n20\n30\n", runOK(t, src))
}

// Additional coverage beyond the six canonical scenarios.

func TestEmptyProgramProducesNoOutput(t *testing.T) {
	require.Equal(t, "", runOK(t, ""))
}

func TestPrintCanonicalForms(t *testing.T) {
	out := runOK(t, `ipakita tama; ipakita mali; ipakita null; ipakita 3.5;`)
	require.Equal(t, "tama\nmali\nnull\n3.5\n", out)
}

func TestDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	out := runOK(t, `kilalanin i = 0; gawin { ipakita i; i = i + 1; } habang (i < 3);`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestSwitchRunsDefaultWhenNoCaseMatches(t *testing.T) {
	out := runOK(t, `
		kilalanin x = 5;
		suriin (x) {
			kapag 1: ipakita "one"; itigil;
			kapag 2: ipakita "two"; itigil;
			palya: ipakita "other";
		}
	`)
	require.Equal(t, "other\n", out)
}

func TestBreakExitsLoop(t *testing.T) {
	out := runOK(t, `
		kada (kilalanin i = 0; i < 10; i = i + 1) {
			kung (i == 3) itigil;
			ipakita i;
		}
	`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestContinueSkipsRestOfBody(t *testing.T) {
	out := runOK(t, `
		kada (kilalanin i = 0; i < 4; i = i + 1) {
			kung (i == 1) ituloy;
			ipakita i;
		}
	`)
	require.Equal(t, "0\n2\n3\n", out)
}

func TestPostfixAndPrefixIncrementDecrement(t *testing.T) {
	out := runOK(t, `
		kilalanin a = 1;
		ipakita a++;
		ipakita a;
		ipakita ++a;
		ipakita --a;
	`)
	require.Equal(t, "1\n2\n3\n2\n", out)
}

func TestMultiDimensionalArrayHasDistinctInnerArrays(t *testing.T) {
	out := runOK(t, `
		kilalanin grid[2][2];
		grid[0][0] = 1;
		ipakita grid[0][0];
		ipakita grid[1][0];
	`)
	require.Equal(t, "1\nnull\n", out)
}

func TestNegativeArrayIndexCountsFromEnd(t *testing.T) {
	require.Equal(t, "30\n", runOK(t, `kilalanin xs = [10, 20, 30]; ipakita xs[-1];`))
}

func TestHasFieldNative(t *testing.T) {
	out := runOK(t, `
		uri A { sim() { ito.x = 1; } }
		kilalanin a = A();
		ipakita mayKatangian(a, "x");
		ipakita mayKatangian(a, "y");
	`)
	require.Equal(t, "tama\nmali\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, `ipakita wala;`, machine.Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Hindi kilala ang lagayan")
}

func TestAddingNumberAndStringCoerces(t *testing.T) {
	require.Equal(t, "bilang: 5\n", runOK(t, `ipakita "bilang: " + 5;`))
}

func TestDivisionByZeroModuloIsRuntimeError(t *testing.T) {
	_, err := run(t, `ipakita 5 % 0;`, machine.Options{})
	require.Error(t, err)
}

func TestStackOverflowOnUnboundedRecursionIsRuntimeError(t *testing.T) {
	src := `gawain f() { ibalik f(); } f();`
	_, err := run(t, src, machine.Options{MaxFrames: 8})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Umaapaw ang salansan")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	src := `
		gawain panloob() { ibalik 1 / null; }
		gawain labas() { ibalik panloob(); }
		labas();
	`
	_, err := run(t, src, machine.Options{})
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	require.True(t, len(lines) >= 3)
	require.Contains(t, err.Error(), "sa panloob()")
	require.Contains(t, err.Error(), "sa labas()")
	require.Contains(t, err.Error(), "sa skrip")
}

func TestStringsWithEqualBytesAreInterned(t *testing.T) {
	var objs value.HeapObject
	strs := value.NewStrings()

	c := compiler.New(strs, &objs)
	fn, errs := c.Compile(`kilalanin a = "hi" + ""; kilalanin b = "h" + "i"; ipakita a == b;`)
	require.Empty(t, errs)

	var out bytes.Buffer
	m := machine.New(machine.Options{Stdout: &out}, strs, &objs)
	require.NoError(t, m.Interpret(fn))
	require.Equal(t, "tama\n", out.String())
}

func TestGarbageCollectionDoesNotFreeReachableObjects(t *testing.T) {
	// Allocate enough distinct short-lived arrays (20000 at a 64-byte weight)
	// to cross the default GC threshold (1 MiB / 64-byte weight ~= 16384
	// allocations), forcing at least one mark-sweep cycle mid-loop. The counter
	// closure and its captured upvalue stay reachable from the global slot
	// `k` throughout; if the collector ever freed a reachable object, the
	// two calls below would panic on a nil dereference instead of printing.
	src := `
		gawain mkcounter() {
			kilalanin c = 0;
			gawain inc() { c = c + 1; ibalik c; }
			ibalik inc;
		}
		kilalanin k = mkcounter();
		kada (kilalanin i = 0; i < 20000; i = i + 1) {
			kilalanin garbage = [i, i + 1];
		}
		ipakita k();
		ipakita k();
	`
	out := runOK(t, src)
	require.Equal(t, "1\n2\n", out)
}

func TestExplicitCollectDoesNotCrashOnNormalProgram(t *testing.T) {
	var objs value.HeapObject
	strs := value.NewStrings()
	c := compiler.New(strs, &objs)
	fn, errs := c.Compile(`kilalanin xs = [1, 2, 3]; ipakita xs[1];`)
	require.Empty(t, errs)

	var out bytes.Buffer
	m := machine.New(machine.Options{Stdout: &out, DisableGC: true}, strs, &objs)
	require.NoError(t, m.Interpret(fn))
	m.Collect()
	require.Equal(t, "2\n", out.String())
}
