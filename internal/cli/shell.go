package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskmgr/internal/exitcode"
)

const (
	shellCommand = "shell"
	shellPrompt  = "taskmgr> "
)

// runShell reads commands line by line and runs them against one App, so the
// session and the task list stay loaded between commands.
// Returns the exit code of the last command.
func (d *Dispatcher) runShell(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(shellCommand, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return reportFlagError(errOut, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", fs.Arg(0))
		return exitcode.UserError
	}

	_, a, code := d.setup(ctx, common, errOut)
	if a == nil {
		return code
	}

	if err := a.Mount(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	if user, ok := a.Session.User(); ok {
		if !a.Config.Quiet {
			fmt.Fprintf(out, "logged in as %s\n", user.Username)
		}
	} else {
		fmt.Fprintln(errOut, "not logged in (run: login)")
	}

	if a.Prompt.Interactive() {
		fmt.Fprintln(errOut, "type help for commands, exit to leave")
	}

	code = exitcode.Success
	for ctx.Err() == nil {
		// Failures are reported by the command; what is left was not.
		if msg := a.Notices.Current(); msg != "" {
			fmt.Fprintf(errOut, "! %s\n", msg)
			a.Notices.Dismiss()
		}

		line, err := a.Prompt.Line(shellPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return code
		}
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}

		words, err := splitLine(line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			code = exitcode.UserError
			continue
		}
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "exit", "quit":
			return code
		case shellCommand:
			fmt.Fprintln(errOut, "error: already in the shell")
			code = exitcode.UserError
			continue
		}
		if strings.HasPrefix(words[0], "-") {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", words[0])
			code = exitcode.UserError
			continue
		}

		code = d.dispatch(ctx, words[0], words[1:], out, errOut, a)
	}
	return code
}

// splitLine splits a shell line into words. Single quotes keep everything
// literally, double quotes allow backslash escapes, and a backslash outside
// quotes escapes the next character.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inWord = true
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash")
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
