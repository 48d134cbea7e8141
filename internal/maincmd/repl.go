package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/diwa/lang/compiler"
	"github.com/mna/diwa/lang/machine"
	"github.com/mna/diwa/lang/value"
)

// Repl reads lines from standard input, compiling and executing each as an
// independent top-level script against one shared Machine: globals and the
// string intern table persist for the life of the session, but a
// compile or runtime error on one line never terminates the process.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	strs := value.NewStrings()
	m := machine.New(c.machineOptions(stdio), strs, nil)

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		comp := compiler.New(strs, m.Objects())
		fn, errs := comp.Compile(line)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(stdio.Stderr, e.Error())
			}
			continue
		}
		if err := m.Interpret(fn); err != nil {
			fmt.Fprint(stdio.Stderr, err.Error())
		}
	}
}
