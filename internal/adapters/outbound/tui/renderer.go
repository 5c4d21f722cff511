package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/abdidvp/automigrate/internal/domain"
)

// ── Storybook-inspired palette ──
var (
	accent    = lipgloss.Color("#FF4785") // storybook pink
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	statusColors = map[domain.RunStatus]lipgloss.Color{
		domain.StatusClean:                       success,
		domain.StatusPartialManualActionRequired: warning,
		domain.StatusFailed:                      danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	addStyle      = lipgloss.NewStyle().Foreground(success)
	delStyle      = lipgloss.NewStyle().Foreground(danger)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// DisplayName turns a camelCase fix id into words, e.g. "sbBinary" → "Sb binary".
func DisplayName(id string) string {
	words := camelcase.Split(id)
	if len(words) == 0 || words[0] == "" {
		return id
	}
	for i := range words {
		if i > 0 && !isAcronym(words[i]) {
			words[i] = strings.ToLower(words[i])
		}
	}
	r := []rune(words[0])
	r[0] = unicode.ToUpper(r[0])
	words[0] = string(r)
	return strings.Join(words, " ")
}

func isAcronym(w string) bool {
	return len(w) > 1 && strings.ToUpper(w) == w
}

// RenderPrompt formats a pending fix for the confirmation prompt.
func RenderPrompt(fix domain.FixInfo, p domain.PromptDescriptor, res domain.CheckResult) string {
	var b strings.Builder

	title := p.Title
	if title == "" {
		title = DisplayName(fix.ID)
	}
	header := headerStyle.Render(title) + "  " + dimStyle.Render(fix.ID)
	if fix.Versions.From != "" || fix.Versions.To != "" {
		header += "  " + faintStyle.Render(fix.Versions.From+" → "+fix.Versions.To)
	}
	b.WriteString("\n" + boxStyle.Render(header) + "\n\n")

	if res.Kind == domain.CheckNeedsManualAction {
		b.WriteString("  " + warnStyle.Render("Manual action required") + "\n")
	}
	if p.Body != "" {
		for _, line := range strings.Split(strings.TrimRight(p.Body, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	if p.Diff != "" {
		b.WriteString("\n")
		renderDiff(&b, p.Diff)
	}
	b.WriteString("\n")
	return b.String()
}

func renderDiff(b *strings.Builder, diff string) {
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			b.WriteString("    " + titleStyle.Render(line) + "\n")
		case strings.HasPrefix(line, "+"):
			b.WriteString("    " + addStyle.Render(line) + "\n")
		case strings.HasPrefix(line, "-"):
			b.WriteString("    " + delStyle.Render(line) + "\n")
		default:
			b.WriteString("    " + dimStyle.Render(line) + "\n")
		}
	}
}

// RenderSummary formats the result of a run for terminal output.
func RenderSummary(s *domain.RunSummary) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("automigrate")
	sub := dimStyle.Render(s.Catalog + " catalog")
	if s.DryRun {
		sub += "  " + warnStyle.Render("dry run")
	}
	b.WriteString("\n" + boxStyle.Render(title+"  "+sub) + "\n\n")

	// ── Outcomes ──
	width := 0
	for _, e := range s.Entries {
		width = max(width, len(e.FixID))
	}
	for _, e := range s.Entries {
		icon, label := outcomeLabel(e.Outcome)
		line := fmt.Sprintf("  %s %s  %s", icon, padRight(e.FixID, width), label)
		if e.Outcome.Reason != "" && e.Outcome.Kind != domain.OutcomeSucceeded {
			line += "  " + faintStyle.Render(e.Outcome.Reason)
		}
		b.WriteString(line + "\n")
	}

	if nothingToDo(s) {
		banner := "Nothing to migrate. The project is up to date."
		if excluded(s) > 0 {
			banner = "Nothing to migrate apart from the fixes excluded by the skip list."
		}
		b.WriteString("\n  " + passStyle.Render(banner) + "\n")
	}

	// ── Follow-up ──
	var manual, failed, declined []domain.OutcomeEntry
	for _, e := range s.Entries {
		switch e.Outcome.Kind {
		case domain.OutcomeSucceededManually:
			manual = append(manual, e)
		case domain.OutcomeFailed:
			failed = append(failed, e)
		case domain.OutcomeDeclined:
			declined = append(declined, e)
		}
	}

	if len(manual) > 0 {
		b.WriteString("\n  " + sectionStyle.Render("Follow-up") + " " + dimStyle.Render(fmt.Sprintf("(%d)", len(manual))) + "\n")
		for _, e := range manual {
			b.WriteString(fmt.Sprintf("    %s %s\n", warnStyle.Render("●"), titleStyle.Render(e.FixID)))
			for _, line := range strings.Split(e.Outcome.Instructions, "\n") {
				b.WriteString("      " + line + "\n")
			}
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n  " + sectionStyle.Render("Failures") + " " + dimStyle.Render(fmt.Sprintf("(%d)", len(failed))) + "\n")
		for _, e := range failed {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", failStyle.Render("●"), titleStyle.Render(e.FixID), e.Outcome.Cause))
		}
	}
	if len(declined) > 0 {
		ids := make([]string, len(declined))
		for i, e := range declined {
			ids[i] = e.FixID
		}
		b.WriteString("\n  " + sectionStyle.Render("Declined") + "  " + strings.Join(ids, ", ") + "\n")
		b.WriteString("  " + hintStyle.Render("Run automigrate again to revisit declined fixes.") + "\n")
	}

	renderHalt(&b, s)

	b.WriteString("\n  " + separatorLine + "\n")
	status := "  " + titleStyle.Render("Status") + "  " + statusText(s.Status)
	if n := len(s.NotAttempted); n > 0 {
		status += "  " + warnStyle.Render(fmt.Sprintf("(%d not attempted)", n))
	}
	b.WriteString(status + "\n")
	return b.String()
}

func renderHalt(b *strings.Builder, s *domain.RunSummary) {
	if s.HaltReason == domain.HaltNone {
		return
	}
	reason := "Run stopped"
	switch s.HaltReason {
	case domain.HaltFailure:
		reason = "Run stopped after " + s.HaltedAt + " failed"
	case domain.HaltAborted:
		reason = "Run aborted at " + s.HaltedAt
	case domain.HaltInterrupted:
		reason = "Run interrupted"
	}
	b.WriteString("\n  " + failStyle.Render(reason) + "\n")
	if len(s.NotAttempted) > 0 {
		b.WriteString("  " + dimStyle.Render("Not attempted: "+strings.Join(s.NotAttempted, ", ")) + "\n")
	}
}

// A run with nothing to do never reached a prompt or a write.
func nothingToDo(s *domain.RunSummary) bool {
	if s.HaltReason != domain.HaltNone {
		return false
	}
	for _, e := range s.Entries {
		if e.Outcome.Kind != domain.OutcomeUnnecessary && e.Outcome.Kind != domain.OutcomeSkipped {
			return false
		}
	}
	return true
}

func excluded(s *domain.RunSummary) int {
	n := 0
	for _, e := range s.Entries {
		if e.Outcome.Kind == domain.OutcomeSkipped && e.Outcome.Reason == domain.ReasonSkippedByConfig {
			n++
		}
	}
	return n
}

func outcomeLabel(o domain.Outcome) (string, string) {
	switch o.Kind {
	case domain.OutcomeSucceeded:
		if o.WouldApply {
			return infoTagStyle.Render("◌"), infoTagStyle.Render("would apply")
		}
		return passStyle.Render("✔"), passStyle.Render("applied")
	case domain.OutcomeSucceededManually:
		return warnStyle.Render("✔"), warnStyle.Render("manual follow-up")
	case domain.OutcomeFailed:
		return failStyle.Render("✘"), failStyle.Render("failed")
	case domain.OutcomeDeclined:
		return warnStyle.Render("–"), warnStyle.Render("declined")
	case domain.OutcomeSkipped:
		return skipStyle.Render("○"), skipStyle.Render("skipped")
	default:
		return skipStyle.Render("○"), skipStyle.Render("not needed")
	}
}

func statusText(status domain.RunStatus) string {
	c, ok := statusColors[status]
	if !ok {
		c = fg
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(strings.ReplaceAll(string(status), "_", " "))
}

// RenderCatalog lists the fixes of a catalog in execution order.
func RenderCatalog(c domain.Catalog) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(c.Name+" catalog") + " " + dimStyle.Render(fmt.Sprintf("(%d fixes)", len(c.Fixes))) + "\n")
	b.WriteString("  " + separatorLine + "\n")

	width := 0
	for _, id := range c.IDs() {
		width = max(width, len(id))
	}
	for i, f := range c.Fixes {
		fi := f.Info()
		b.WriteString(fmt.Sprintf("  %s %s  %s\n",
			faintStyle.Render(fmt.Sprintf("%2d", i+1)),
			sectionStyle.Render(padRight(fi.ID, width)),
			fi.Title,
		))
		if fi.Description != "" {
			b.WriteString("     " + strings.Repeat(" ", width) + "  " + dimStyle.Render(fi.Description) + "\n")
		}
	}
	return b.String()
}

// RenderHistory formats recorded runs for terminal output.
func RenderHistory(records []domain.RunRecord) string {
	if len(records) == 0 {
		return "  " + dimStyle.Render("No migration history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Migration History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, r := range records {
		hash := r.Commit
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := r.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		applied, failed := 0, 0
		for _, o := range r.Outcomes {
			switch o.Kind {
			case domain.OutcomeSucceeded, domain.OutcomeSucceededManually:
				applied++
			case domain.OutcomeFailed:
				failed++
			}
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			padRight(r.Catalog, 4),
			statusText(r.Status),
			dimStyle.Render(fmt.Sprintf("%d applied", applied)),
		)
		if failed > 0 {
			line += "  " + failStyle.Render(fmt.Sprintf("%d failed", failed))
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
