package fixes

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is how many unchanged lines are kept around each change.
const contextLines = 1

// renderDiff renders a line diff per changed file.
func renderDiff(changes []change) string {
	dmp := diffmatchpatch.New()
	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "--- %s\n+++ %s\n", c.rel, c.rel)

		a, bb, lines := dmp.DiffLinesToChars(string(c.before), string(c.after))
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, bb, false), lines)
		for i, d := range diffs {
			text := splitLines(d.Text)
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				writeLines(&b, "+ ", text)
			case diffmatchpatch.DiffDelete:
				writeLines(&b, "- ", text)
			case diffmatchpatch.DiffEqual:
				writeContext(&b, text, i > 0, i < len(diffs)-1)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeContext keeps the lines adjacent to the surrounding changes and
// elides the rest.
func writeContext(b *strings.Builder, lines []string, afterChange, beforeChange bool) {
	var head, tail []string
	if afterChange {
		head = lines[:min(contextLines, len(lines))]
		lines = lines[len(head):]
	}
	if beforeChange {
		tail = lines[len(lines)-min(contextLines, len(lines)):]
		lines = lines[:len(lines)-len(tail)]
	}
	writeLines(b, "  ", head)
	if len(lines) > 0 {
		b.WriteString("  ...\n")
	}
	writeLines(b, "  ", tail)
}

func writeLines(b *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		b.WriteString(prefix)
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
