// Package prompt provides interactive console prompts behind a testable interface.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Service defines the interface for operator prompts. All interactive
// reads in supadb go through it so tests can inject scripted input.
type Service interface {
	// Password reads a secret without echoing it back.
	Password(label string) (string, error)
	// Line reads one trimmed line; an empty answer yields def.
	Line(label, def string) (string, error)
	// Confirm reads one line and reports whether it matches accept,
	// ignoring case and surrounding whitespace.
	Confirm(label, accept string) (bool, error)
}

// Impl implements the prompt Service by reading from an io.Reader.
type Impl struct {
	in  *bufio.Reader
	out io.Writer

	// readSecret reads a password without echo; nil when the input is
	// not a terminal, in which case a plain line read is used.
	readSecret func() ([]byte, error)
}

// New creates a prompt service bound to stdin/stderr. Secrets are read
// without echo when stdin is a terminal.
func New() *Impl {
	p := &Impl{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// NewWithReader creates a prompt service with custom input/output (for testing).
func NewWithReader(in io.Reader, out io.Writer) *Impl {
	return &Impl{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Password reads a secret, without echo when possible.
func (p *Impl) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.readSecret != nil {
		b, err := p.readSecret()
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.readLine()
}

// Line prompts with a default suggestion and reads one line.
func (p *Impl) Line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s (default: %s): ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm prompts and matches the answer against accept, case-insensitively.
func (p *Impl) Confirm(label, accept string) (bool, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, accept), nil
}

func (p *Impl) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
