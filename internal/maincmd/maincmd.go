// Package maincmd implements the diwa CLI driver: the host-side collaborator
// responsible only for reading a source file, compiling it, handing the
// result to the machine, and mapping the outcome to a process exit code.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "diwa"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s scripting language.

The <command> can be one of:
       run                       Compile and execute a source file.
       tokenize                  Print the token stream of a source file.
       disasm                    Compile a source file and print the
                                 disassembled bytecode of one of its
                                 functions.
       repl                      Read lines from standard input, compiling
                                 and executing each as it arrives, sharing
                                 one machine across the whole session.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <disasm> command are:
       --func <name>             Disassemble only the named function
                                 (default: the whole script, including
                                 every nested function).

Environment variables (all optional, DIWA_ prefixed) override the
machine's tunables before flags are parsed:
       DIWA_MAX_STACK            Value stack capacity, in slots.
       DIWA_MAX_FRAMES           Call-frame stack capacity.
       DIWA_DISABLE_GC           Disable automatic garbage collection.
`, binName)
)

// Cmd is the CLI entry point. Its exported fields double as flags (via the
// `flag` struct tag mainer.Parser reads) and as environment-variable
// overrides (via the `env` struct tag github.com/caarlos0/env/v6 reads),
// covering the machine's tunables alongside the usual help/version flags.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Func string `flag:"func"`

	MaxStack  int  `env:"DIWA_MAX_STACK"`
	MaxFrames int  `env:"DIWA_MAX_FRAMES"`
	DisableGC bool `env:"DIWA_DISABLE_GC"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if cmdName != "repl" && len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: a source file must be provided", cmdName)
	}
	if c.flags["func"] && cmdName != "disasm" {
		return fmt.Errorf("%s: invalid flag 'func'", cmdName)
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

// Main parses os.Args-like arguments and flags, loading DIWA_-prefixed
// environment overrides first so that explicit flags still win, then
// dispatches to the requested subcommand.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	if err := env.Parse(c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment: %s\n", err)
		return mainer.InvalidArgs
	}

	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds reflects over v's methods to find those matching the
// (context.Context, mainer.Stdio, []string) error shape, registering each
// under its lower-cased method name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
