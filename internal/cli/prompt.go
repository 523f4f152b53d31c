package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"farmdash/internal/inventory"
)

// linePrompter asks questions on out and reads one answer per line from in.
// EOF counts as a "no".
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) readLine() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (p *linePrompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	ans, ok := p.readLine()
	if !ok {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes":
		return true
	}
	return false
}

func (p *linePrompter) Prompt(label, current string) (string, bool) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	ans, ok := p.readLine()
	if !ok {
		return "", false
	}
	if strings.TrimSpace(ans) == "" {
		return current, true
	}
	return ans, true
}

// prompter returns the confirmer for a destructive command: --yes answers
// every question up front.
func prompter(yes bool, in io.Reader, out io.Writer) inventory.Prompter {
	if yes {
		return inventory.Answers{Confirmed: true}
	}
	return newLinePrompter(in, out)
}
