package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/diwa/lang/compiler"
	"github.com/mna/diwa/lang/disasm"
	"github.com/mna/diwa/lang/value"
)

// Disasm compiles the source file named in args[0] and prints the
// disassembled bytecode of its top-level script and every nested function,
// or, if --func was given, of only the named function.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	strs := value.NewStrings()
	var objs value.HeapObject
	comp := compiler.New(strs, &objs)
	fn, errs := comp.Compile(string(src))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(stdio.Stderr, e.Error())
		}
		return errs[0]
	}

	if c.Func == "" {
		fmt.Fprint(stdio.Stdout, disasm.Function(fn))
		return nil
	}
	target := findFunction(fn, c.Func)
	if target == nil {
		return printError(stdio, fmt.Errorf("disasm: no function named %q", c.Func))
	}
	fmt.Fprint(stdio.Stdout, disasm.Function(target))
	return nil
}

// findFunction searches fn and, recursively, the Function constants nested
// in its own constant pool for one named name.
func findFunction(fn *value.Function, name string) *value.Function {
	if fn.Name != nil && fn.Name.Chars == name {
		return fn
	}
	for _, cst := range fn.Chunk.Constants {
		if !cst.IsObj() {
			continue
		}
		nested, ok := cst.AsObj().(*value.Function)
		if !ok {
			continue
		}
		if found := findFunction(nested, name); found != nil {
			return found
		}
	}
	return nil
}
