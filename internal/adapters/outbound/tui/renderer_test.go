package tui_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/tui"
	"github.com/abdidvp/automigrate/internal/domain"
)

func sampleSummary() *domain.RunSummary {
	s := domain.NewRunSummary(domain.CatalogFull, false)
	s.Record(domain.OutcomeEntry{FixID: "newFrameworks", Outcome: domain.Outcome{Kind: domain.OutcomeSucceeded}})
	s.Record(domain.OutcomeEntry{FixID: "eslintPlugin", Outcome: domain.Outcome{Kind: domain.OutcomeUnnecessary, Reason: "ESLint is not used"}})
	s.Record(domain.OutcomeEntry{FixID: "mdxgfm", Outcome: domain.Outcome{Kind: domain.OutcomeSucceededManually, Instructions: "Rename the MDX file."}})
	s.Record(domain.OutcomeEntry{FixID: "sbScripts", Outcome: domain.Outcome{Kind: domain.OutcomeDeclined}})
	s.Record(domain.OutcomeEntry{FixID: "sbBinary", Outcome: domain.Failed(assert.AnError)})
	s.Halt(domain.HaltFailure, "sbBinary", []string{"autodocsTrue", "reactDocgen"})
	s.Finalize()
	return s
}

func TestRenderSummary_ListsEveryOutcome(t *testing.T) {
	out := tui.RenderSummary(sampleSummary())
	for _, id := range []string{"newFrameworks", "eslintPlugin", "mdxgfm", "sbScripts", "sbBinary"} {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, "not needed")
	assert.Contains(t, out, "ESLint is not used")
	assert.Contains(t, out, "declined")
}

func TestRenderSummary_Sections(t *testing.T) {
	out := tui.RenderSummary(sampleSummary())
	assert.Contains(t, out, "Follow-up")
	assert.Contains(t, out, "Rename the MDX file.")
	assert.Contains(t, out, "Failures")
	assert.Contains(t, out, assert.AnError.Error())
	assert.Contains(t, out, "Declined")
	assert.Contains(t, out, "revisit declined fixes")
}

func TestRenderSummary_HaltAndNotAttempted(t *testing.T) {
	out := tui.RenderSummary(sampleSummary())
	assert.Contains(t, out, "Run stopped after sbBinary failed")
	assert.Contains(t, out, "Not attempted: autodocsTrue, reactDocgen")
	assert.Contains(t, out, "failed")
}

func TestRenderSummary_FollowUpBeforeFailures(t *testing.T) {
	out := tui.RenderSummary(sampleSummary())
	assert.Less(t, strings.Index(out, "Follow-up"), strings.Index(out, "Failures"))
}

func TestRenderSummary_NothingToDo(t *testing.T) {
	s := domain.NewRunSummary(domain.CatalogInit, false)
	s.Record(domain.OutcomeEntry{FixID: "eslintPlugin", Outcome: domain.Outcome{Kind: domain.OutcomeUnnecessary}})
	s.Finalize()

	out := tui.RenderSummary(s)
	assert.Contains(t, out, "Nothing to migrate. The project is up to date.")
	assert.Contains(t, out, "eslintPlugin")
	assert.Contains(t, out, "not needed")
	assert.NotContains(t, out, "Follow-up")
	assert.Contains(t, out, "init catalog")
}

func TestRenderSummary_NothingToDoListsEveryFix(t *testing.T) {
	s := domain.NewRunSummary(domain.CatalogFull, false)
	s.Record(domain.OutcomeEntry{FixID: "eslintPlugin", Outcome: domain.Outcome{Kind: domain.OutcomeSkipped, Reason: domain.ReasonSkippedByConfig}})
	s.Record(domain.OutcomeEntry{FixID: "autodocsTrue", Outcome: domain.Outcome{Kind: domain.OutcomeUnnecessary, Reason: "docs.autodocs is set"}})
	s.Finalize()

	out := tui.RenderSummary(s)
	assert.Contains(t, out, "eslintPlugin")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, domain.ReasonSkippedByConfig)
	assert.Contains(t, out, "autodocsTrue")
	assert.Contains(t, out, "docs.autodocs is set")
	assert.Contains(t, out, "excluded by the skip list")
	assert.NotContains(t, out, "up to date", "excluded fixes were never checked")
	assert.Less(t, strings.Index(out, "autodocsTrue"), strings.Index(out, "Nothing to migrate"))
}

func TestRenderSummary_DryRun(t *testing.T) {
	s := domain.NewRunSummary(domain.CatalogFull, true)
	s.Record(domain.OutcomeEntry{FixID: "sbBinary", Outcome: domain.Outcome{Kind: domain.OutcomeSucceeded, WouldApply: true}})
	s.Finalize()

	out := tui.RenderSummary(s)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "would apply")
	assert.Contains(t, out, "clean")
}

func TestRenderSummary_Aborted(t *testing.T) {
	s := domain.NewRunSummary(domain.CatalogFull, false)
	s.Record(domain.OutcomeEntry{FixID: "sbBinary", Outcome: domain.Outcome{Kind: domain.OutcomeDeclined}})
	s.Halt(domain.HaltAborted, "sbBinary", []string{"sbScripts"})
	s.Finalize()

	out := tui.RenderSummary(s)
	assert.Contains(t, out, "Run aborted at sbBinary")
	assert.Contains(t, out, "Not attempted: sbScripts")
}

func TestRenderSummary_CleanButIncomplete(t *testing.T) {
	s := domain.NewRunSummary(domain.CatalogFull, false)
	s.Record(domain.OutcomeEntry{FixID: "sbBinary", Outcome: domain.Outcome{Kind: domain.OutcomeSucceeded}})
	s.Halt(domain.HaltInterrupted, "", []string{"sbScripts", "mdxgfm"})
	s.Finalize()

	out := tui.RenderSummary(s)
	assert.Equal(t, domain.StatusClean, s.Status)
	assert.Contains(t, out, "Run interrupted")
	assert.Contains(t, out, "clean")
	assert.Contains(t, out, "(2 not attempted)")
}

func TestRenderPrompt(t *testing.T) {
	info := domain.FixInfo{ID: "sbBinary", Versions: domain.VersionRange{From: "<7", To: ">=7"}}
	p := domain.PromptDescriptor{
		Title: "Replace the sb binary",
		Body:  "Remove @storybook/cli.\nAdd storybook.",
		Diff:  "--- package.json\n+++ package.json\n-   \"sb\": \"6.5.0\",\n+   \"storybook\": \"^7.6.17\",\n",
	}

	out := tui.RenderPrompt(info, p, domain.ReadyToApply(nil))
	assert.Contains(t, out, "Replace the sb binary")
	assert.Contains(t, out, "sbBinary")
	assert.Contains(t, out, "<7 → >=7")
	assert.Contains(t, out, "Remove @storybook/cli.")
	assert.Contains(t, out, "Add storybook.")
	assert.Contains(t, out, `+   "storybook": "^7.6.17",`)
	assert.NotContains(t, out, "Manual action required")
}

func TestRenderPrompt_ManualUsesDisplayName(t *testing.T) {
	out := tui.RenderPrompt(domain.FixInfo{ID: "storyshotsMigration"}, domain.PromptDescriptor{Body: "Remove Storyshots."},
		domain.NeedsManualAction("Remove Storyshots.", nil))
	assert.Contains(t, out, "Storyshots migration")
	assert.Contains(t, out, "Manual action required")
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"sbBinary":                 "Sb binary",
		"removeJestTestingLibrary": "Remove jest testing library",
		"mdxgfm":                   "Mdxgfm",
		"webpack5CompilerSetup":    "Webpack 5 compiler setup",
		"":                         "",
	}
	for id, want := range cases {
		assert.Equal(t, want, tui.DisplayName(id), id)
	}
}

type namedFix struct{ info domain.FixInfo }

func (f namedFix) Info() domain.FixInfo { return f.info }
func (namedFix) Check(context.Context, *domain.ProjectSnapshot, domain.RunOptions) (domain.CheckResult, error) {
	return domain.Inapplicable(""), nil
}
func (namedFix) Describe(domain.CheckResult) domain.PromptDescriptor { return domain.PromptDescriptor{} }
func (namedFix) Apply(context.Context, domain.CheckResult, *domain.ProjectSnapshot, domain.RunOptions) (*domain.ManualStep, error) {
	return nil, nil
}

func TestRenderCatalog(t *testing.T) {
	c := domain.NewCatalog(domain.CatalogFull,
		namedFix{domain.FixInfo{ID: "sbBinary", Title: "Replace the sb binary", Description: "sb is gone."}},
		namedFix{domain.FixInfo{ID: "sbScripts", Title: "Migrate scripts"}},
	)

	out := tui.RenderCatalog(c)
	assert.Contains(t, out, "full catalog")
	assert.Contains(t, out, "(2 fixes)")
	assert.Contains(t, out, "sb is gone.")
	assert.Less(t, strings.Index(out, "sbBinary"), strings.Index(out, "sbScripts"))
}

func TestRenderHistory(t *testing.T) {
	records := []domain.RunRecord{
		{
			Catalog: "full", Timestamp: "2026-03-01T10:00:00Z", Status: domain.StatusFailed,
			Commit: "0123456789abcdef",
			Outcomes: []domain.RecordedResult{
				{FixID: "sbBinary", Kind: domain.OutcomeSucceeded},
				{FixID: "sbScripts", Kind: domain.OutcomeFailed},
			},
		},
		{Catalog: "init", Timestamp: "2026-03-02T10:00:00Z", Status: domain.StatusClean},
	}

	out := tui.RenderHistory(records)
	assert.Contains(t, out, "Migration History")
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "0123456")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "1 applied")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "·······")
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderHistory(nil), "No migration history found.")
}
