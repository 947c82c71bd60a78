// Package prompt reads interactive answers: form fields, passwords and
// yes/no confirmations.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer is read.
var ErrNoInput = errors.New("no input")

// Prompter writes questions to out and reads answers from in.
// Passwords are read without echo when in is a terminal.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.isTerm = true
	}
	return p
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool { return p.isTerm }

// Line prints label and reads one line, without its line ending.
// A final line without a newline is returned; io.EOF is returned only
// when nothing was read.
func (p *Prompter) Line(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.out, label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Field asks for a required value. Empty answers are returned as-is so the
// caller can report the missing field.
func (p *Prompter) Field(label string) (string, error) {
	v, err := p.Line(label + ": ")
	if errors.Is(err, io.EOF) {
		return "", ErrNoInput
	}
	return strings.TrimSpace(v), err
}

// Password asks for a secret. On a terminal the answer is not echoed.
func (p *Prompter) Password(label string) (string, error) {
	if !p.isTerm {
		v, err := p.Line(label + ": ")
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return v, err
	}
	fmt.Fprint(p.out, label+": ")
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm asks a yes/no question. Only "y" or "yes" (any case) confirm;
// end of input declines.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question + " [y/N]: ")
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
