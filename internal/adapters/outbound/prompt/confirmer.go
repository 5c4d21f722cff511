// Package prompt asks the user on a terminal whether a pending fix may run.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/tui"
	"github.com/abdidvp/automigrate/internal/domain"
)

// ErrNoAnswer is returned when input ends before a valid answer was given.
var ErrNoAnswer = errors.New("no answer: input closed")

// maxAttempts bounds how often an unrecognised answer is asked again.
const maxAttempts = 3

// TerminalConfirmer renders each pending fix and reads a y/N/a answer.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a confirmer reading answers from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(f.Fd())
}

// Confirm implements domain.Confirmer. An empty answer declines.
func (c *TerminalConfirmer) Confirm(ctx context.Context, fix domain.FixInfo, p domain.PromptDescriptor, res domain.CheckResult) (domain.Decision, error) {
	fmt.Fprint(c.out, tui.RenderPrompt(fix, p, res))

	question := "Apply this change?"
	if res.Kind == domain.CheckNeedsManualAction {
		question = "Mark as done and continue?"
	}

	for range maxAttempts {
		fmt.Fprintf(c.out, "  %s [y/N/a(bort)] ", question)

		line, err := c.readLine(ctx)
		if err != nil {
			return domain.DecisionNo, err
		}
		if d, ok := parseAnswer(line); ok {
			return d, nil
		}
		fmt.Fprintf(c.out, "  Please answer y, n or a.\n")
	}
	return domain.DecisionNo, fmt.Errorf("no valid answer after %d attempts", maxAttempts)
}

type readResult struct {
	line string
	err  error
}

// readLine blocks on input but gives up as soon as ctx is done.
func (c *TerminalConfirmer) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- readResult{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && strings.TrimSpace(r.line) != "" {
				return r.line, nil
			}
			if errors.Is(r.err, io.EOF) {
				return "", ErrNoAnswer
			}
			return "", fmt.Errorf("reading answer: %w", r.err)
		}
		return r.line, nil
	}
}

func parseAnswer(line string) (domain.Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return domain.DecisionYes, true
	case "", "n", "no":
		return domain.DecisionNo, true
	case "a", "abort", "q", "quit":
		return domain.DecisionAbort, true
	default:
		return domain.DecisionNo, false
	}
}
