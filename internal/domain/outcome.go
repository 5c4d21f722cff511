package domain

import "time"

// OutcomeKind is the terminal state a fix reached during a run.
type OutcomeKind string

const (
	OutcomeSkipped           OutcomeKind = "skipped"
	OutcomeUnnecessary       OutcomeKind = "unnecessary"
	OutcomeSucceeded         OutcomeKind = "succeeded"
	OutcomeSucceededManually OutcomeKind = "succeeded_manually"
	OutcomeFailed            OutcomeKind = "failed"
	OutcomeDeclined          OutcomeKind = "declined"
)

// ReasonSkippedByConfig is the Skipped reason for fixes excluded by the skip
// list rather than by their own check.
const ReasonSkippedByConfig = "skipped by configuration"

// Outcome is the result of running one fix once.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	// Reason explains Skipped and Unnecessary outcomes.
	Reason string `json:"reason,omitempty"`
	// Instructions are the residual steps for SucceededManually outcomes.
	Instructions string `json:"instructions,omitempty"`
	// WouldApply marks synthetic successes recorded by a dry run.
	WouldApply bool              `json:"would_apply,omitempty"`
	Prompt     *PromptDescriptor `json:"prompt,omitempty"`
	Err        error             `json:"-"`
	Cause      string            `json:"cause,omitempty"`
}

// Failed builds a Failed outcome preserving the original cause.
func Failed(err error) Outcome {
	o := Outcome{Kind: OutcomeFailed, Err: err}
	if err != nil {
		o.Cause = err.Error()
	}
	return o
}

// OutcomeEntry pairs a fix id with its outcome.
type OutcomeEntry struct {
	FixID    string        `json:"fix_id"`
	Title    string        `json:"title,omitempty"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration_ns"`
}

// RunStatus is the derived overall status of a run.
type RunStatus string

const (
	StatusClean                       RunStatus = "clean"
	StatusPartialManualActionRequired RunStatus = "partial_manual_action_required"
	StatusFailed                      RunStatus = "failed"
)

// Process exit codes. Usage and structural errors exit with ExitUsage.
const (
	ExitClean          = 0
	ExitFailed         = 1
	ExitUsage          = 2
	ExitManualRequired = 3
)

// ExitCode maps a status to the process exit code.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusClean:
		return ExitClean
	case StatusPartialManualActionRequired:
		return ExitManualRequired
	default:
		return ExitFailed
	}
}

// HaltReason records why a run stopped before the end of its catalog.
type HaltReason string

const (
	HaltNone        HaltReason = ""
	HaltFailure     HaltReason = "failure"
	HaltAborted     HaltReason = "aborted"
	HaltInterrupted HaltReason = "interrupted"
)

// RunSummary is the ordered record of one run. It is built by the runner and
// must not be modified after Finalize.
type RunSummary struct {
	Catalog      string         `json:"catalog"`
	DryRun       bool           `json:"dry_run"`
	Entries      []OutcomeEntry `json:"entries"`
	Status       RunStatus      `json:"status"`
	HaltReason   HaltReason     `json:"halt_reason,omitempty"`
	HaltedAt     string         `json:"halted_at,omitempty"`
	NotAttempted []string       `json:"not_attempted,omitempty"`
	finalized    bool
}

// NewRunSummary starts an empty summary for the named catalog.
func NewRunSummary(catalog string, dryRun bool) *RunSummary {
	return &RunSummary{Catalog: catalog, DryRun: dryRun}
}

// Record appends an outcome. It panics when called after Finalize.
func (s *RunSummary) Record(entry OutcomeEntry) {
	if s.finalized {
		panic("domain: record on finalized run summary")
	}
	s.Entries = append(s.Entries, entry)
}

// Halt marks the run as stopped at fixID; remaining are the ids never reached.
func (s *RunSummary) Halt(reason HaltReason, fixID string, remaining []string) {
	s.HaltReason = reason
	s.HaltedAt = fixID
	s.NotAttempted = append([]string(nil), remaining...)
}

// Finalize derives the overall status. Calling it twice is harmless.
func (s *RunSummary) Finalize() {
	if s.finalized {
		return
	}
	s.Status = DeriveStatus(s.Entries)
	s.finalized = true
}

// Outcome returns the outcome recorded for fixID, if any.
func (s *RunSummary) Outcome(fixID string) (Outcome, bool) {
	for _, e := range s.Entries {
		if e.FixID == fixID {
			return e.Outcome, true
		}
	}
	return Outcome{}, false
}

// Count returns how many entries ended in the given kind.
func (s *RunSummary) Count(kind OutcomeKind) int {
	n := 0
	for _, e := range s.Entries {
		if e.Outcome.Kind == kind {
			n++
		}
	}
	return n
}

// DeriveStatus applies the finalization rule: any failure wins, then any
// manual follow-up, otherwise clean.
func DeriveStatus(entries []OutcomeEntry) RunStatus {
	manual := false
	for _, e := range entries {
		switch e.Outcome.Kind {
		case OutcomeFailed:
			return StatusFailed
		case OutcomeSucceededManually:
			manual = true
		}
	}
	if manual {
		return StatusPartialManualActionRequired
	}
	return StatusClean
}
