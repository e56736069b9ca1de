package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrPassphraseMismatch is returned when a confirmation does not match.
var ErrPassphraseMismatch = errors.New("passphrases do not match")

// Prompter reads passphrases. On a terminal input is not echoed; otherwise
// one line is read from the input, which lets scripts pipe a passphrase in.
type Prompter struct {
	in  *os.File
	out io.Writer
	r   *bufio.Reader
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in *os.File, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Passphrase prints prompt and reads a passphrase.
func (p *Prompter) Passphrase(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	if p.r == nil {
		p.r = bufio.NewReader(p.in)
	}
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NewPassphrase asks for a passphrase twice and returns it if both match.
func (p *Prompter) NewPassphrase() (string, error) {
	first, err := p.Passphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	second, err := p.Passphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPassphraseMismatch
	}
	return first, nil
}
