package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/diwa/lang/lexer"
	"github.com/mna/diwa/lang/token"
)

// Tokenize scans the source file named in args[0] and prints its token
// stream, one token per line, exercising the lexer's public interface the
// same way the compiler's advance() loop does.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	var l lexer.Lexer
	l.Init(string(src))
	for {
		tok := l.Scan()
		fmt.Fprintf(stdio.Stdout, "[linya %4d] %-10s %q\n", tok.Line, tok.Kind, tok.Lexeme)
		if tok.Kind == token.DONE || tok.Kind == token.PROBLEM {
			if tok.Kind == token.PROBLEM {
				return printError(stdio, fmt.Errorf("[linya %d] %s", tok.Line, tok.Lexeme))
			}
			return nil
		}
	}
}
