package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/diwa/lang/compiler"
	"github.com/mna/diwa/lang/machine"
	"github.com/mna/diwa/lang/value"
)

// Run compiles and executes the single source file named in args[0] as one
// process-lifetime call: a fresh intern table and heap-object list are
// created, the compiler shares them with the machine, and the machine is
// discarded (and with it every heap object) once Interpret returns.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}
	return printError(stdio, c.runSource(stdio, string(src)))
}

func (c *Cmd) runSource(stdio mainer.Stdio, src string) error {
	strs := value.NewStrings()
	var objs value.HeapObject

	comp := compiler.New(strs, &objs)
	fn, errs := comp.Compile(src)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(stdio.Stderr, e.Error())
		}
		return errs[0]
	}

	m := machine.New(c.machineOptions(stdio), strs, &objs)
	if err := m.Interpret(fn); err != nil {
		fmt.Fprint(stdio.Stderr, err.Error())
		return err
	}
	return nil
}

// machineOptions builds a machine.Options from the flags/env-backed Cmd
// fields, falling back to the machine package's own defaults for any field
// left at its zero value.
func (c *Cmd) machineOptions(stdio mainer.Stdio) machine.Options {
	return machine.Options{
		Stdout:    stdio.Stdout,
		Stderr:    stdio.Stderr,
		Stdin:     stdio.Stdin,
		MaxStack:  c.MaxStack,
		MaxFrames: c.MaxFrames,
		DisableGC: c.DisableGC,
	}
}
