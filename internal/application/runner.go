package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/abdidvp/automigrate/internal/domain"
)

// Runner drives a catalog of fixes through the check → confirm → apply state
// machine, one fix at a time in catalog order. It keeps no state between
// runs and is safe to reuse.
type Runner struct {
	confirmer domain.Confirmer
	logger    *slog.Logger
}

// NewRunner creates a runner. confirmer may be nil when every run uses
// AssumeYes; logger may be nil to discard runner logs.
func NewRunner(confirmer domain.Confirmer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{confirmer: confirmer, logger: logger}
}

// Run executes catalog against snap. Per-fix failures are recorded in the
// returned summary; an error is only returned when the catalog, snapshot or
// options are structurally invalid, in which case no fix has run.
func (r *Runner) Run(ctx context.Context, catalog domain.Catalog, snap *domain.ProjectSnapshot, opts domain.RunOptions) (*domain.RunSummary, error) {
	if err := r.validate(catalog, snap, opts); err != nil {
		return nil, err
	}

	summary := domain.NewRunSummary(catalog.Name, opts.DryRun)
	ids := catalog.IDs()

	for i, fix := range catalog.Fixes {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run interrupted", "before", ids[i], "err", err)
			summary.Halt(domain.HaltInterrupted, "", ids[i:])
			break
		}

		entry, halt, err := r.runFix(ctx, fix, snap, opts)
		if err != nil {
			return nil, err
		}
		summary.Record(entry)

		if halt != domain.HaltNone {
			summary.Halt(halt, entry.FixID, ids[i+1:])
			r.logger.Info("run halted", "fix", entry.FixID, "reason", string(halt), "not_attempted", len(ids)-i-1)
			break
		}
	}

	summary.Finalize()
	return summary, nil
}

func (r *Runner) validate(catalog domain.Catalog, snap *domain.ProjectSnapshot, opts domain.RunOptions) error {
	if err := catalog.Validate(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	if opts.Interactive() && r.confirmer == nil {
		return fmt.Errorf("%w: interactive run requires a confirmer", domain.ErrInvalidOptions)
	}
	if id, ok := catalog.Contains(opts.Skip); !ok {
		return fmt.Errorf("%w: skipped fix %q is not in catalog %q", domain.ErrInvalidOptions, id, catalog.Name)
	}
	return nil
}

// runFix moves one fix from Pending to a terminal state and reports whether
// the run must stop after it. The returned error is reserved for runner bugs.
func (r *Runner) runFix(ctx context.Context, fix domain.Fix, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.OutcomeEntry, domain.HaltReason, error) {
	info := fix.Info()
	run := newFixRun(info.ID)
	start := time.Now()

	outcome, halt := r.drive(ctx, run, fix, info, snap, opts)

	if err := r.advance(run, terminalState(outcome.Kind)); err != nil {
		return domain.OutcomeEntry{}, domain.HaltNone, err
	}
	if outcome.Kind == domain.OutcomeFailed && !opts.ContinueOnFailure {
		halt = domain.HaltFailure
	}

	r.logger.Debug("fix finished", "fix", info.ID, "outcome", string(outcome.Kind), "cause", outcome.Cause)
	return domain.OutcomeEntry{
		FixID:    info.ID,
		Title:    info.Title,
		Outcome:  outcome,
		Duration: time.Since(start),
	}, halt, nil
}

// drive walks the non-terminal part of the state machine and returns the
// outcome the fix ends in. Intermediate transitions are recorded on run.
func (r *Runner) drive(ctx context.Context, run *fixRun, fix domain.Fix, info domain.FixInfo, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.Outcome, domain.HaltReason) {
	if opts.IsSkipped(info.ID) {
		return domain.Outcome{Kind: domain.OutcomeSkipped, Reason: domain.ReasonSkippedByConfig}, domain.HaltNone
	}

	res, err := safeCheck(ctx, fix, snap, opts)
	if err != nil {
		return domain.Failed(asCheckError(info.ID, err)), domain.HaltNone
	}
	r.mustAdvance(run, StateChecked)

	switch res.Kind {
	case domain.CheckInapplicable:
		return domain.Outcome{Kind: domain.OutcomeSkipped, Reason: res.Reason}, domain.HaltNone
	case domain.CheckAlreadySatisfied:
		return domain.Outcome{Kind: domain.OutcomeUnnecessary, Reason: res.Reason}, domain.HaltNone
	case domain.CheckReadyToApply, domain.CheckNeedsManualAction:
	default:
		return domain.Failed(&domain.CheckError{FixID: info.ID, Err: fmt.Errorf("unknown check result %q", res.Kind)}), domain.HaltNone
	}

	prompt, err := safeDescribe(fix, res)
	if err != nil {
		return domain.Failed(&domain.PromptError{FixID: info.ID, Err: err}), domain.HaltNone
	}

	if opts.Interactive() {
		decision, err := r.confirmer.Confirm(ctx, info, prompt, res)
		if err != nil {
			return domain.Failed(&domain.PromptError{FixID: info.ID, Err: err}), domain.HaltNone
		}
		r.logger.Debug("fix confirmation", "fix", info.ID, "decision", decision.String())
		switch decision {
		case domain.DecisionYes:
		case domain.DecisionAbort:
			return domain.Outcome{Kind: domain.OutcomeDeclined, Reason: "run aborted by user", Prompt: &prompt}, domain.HaltAborted
		default:
			return domain.Outcome{Kind: domain.OutcomeDeclined, Reason: "declined by user", Prompt: &prompt}, domain.HaltNone
		}
	}
	r.mustAdvance(run, StateAwaitingApply)

	if res.Kind == domain.CheckNeedsManualAction {
		if ack, ok := fix.(domain.Acknowledger); ok && !opts.DryRun {
			if err := safeAcknowledge(ctx, ack, res, snap, opts); err != nil {
				return domain.Failed(asApplyError(info.ID, err)), domain.HaltNone
			}
		}
		return domain.Outcome{
			Kind:         domain.OutcomeSucceededManually,
			Instructions: manualInstructions(res, prompt),
			Prompt:       &prompt,
		}, domain.HaltNone
	}

	if opts.DryRun {
		return domain.Outcome{Kind: domain.OutcomeSucceeded, WouldApply: true, Prompt: &prompt}, domain.HaltNone
	}

	manual, err := safeApply(ctx, fix, res, snap, opts)
	if err != nil {
		return domain.Failed(asApplyError(info.ID, err)), domain.HaltNone
	}
	if manual != nil {
		return domain.Outcome{
			Kind:         domain.OutcomeSucceededManually,
			Instructions: manual.Instructions,
			Prompt:       &prompt,
		}, domain.HaltNone
	}
	return domain.Outcome{Kind: domain.OutcomeSucceeded, Prompt: &prompt}, domain.HaltNone
}

func (r *Runner) advance(run *fixRun, to FixState) error {
	from := run.state
	if err := run.advance(to); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	r.logger.Debug("fix transition", "fix", run.id, "from", string(from), "to", string(to))
	return nil
}

// mustAdvance is used for the intermediate transitions whose legality follows
// from the code path itself.
func (r *Runner) mustAdvance(run *fixRun, to FixState) {
	if err := r.advance(run, to); err != nil {
		panic(err)
	}
}

func manualInstructions(res domain.CheckResult, prompt domain.PromptDescriptor) string {
	if prompt.Body != "" {
		return prompt.Body
	}
	return res.Reason
}

func asCheckError(id string, err error) error {
	var ce *domain.CheckError
	if errors.As(err, &ce) {
		return err
	}
	return &domain.CheckError{FixID: id, Err: err}
}

func asApplyError(id string, err error) error {
	var ae *domain.ApplyError
	if errors.As(err, &ae) {
		return err
	}
	return &domain.ApplyError{FixID: id, Err: err}
}

// The safe* wrappers turn a panicking fix into an ordinary error so one bad
// fix cannot take down the whole run.

func safeCheck(ctx context.Context, fix domain.Fix, snap *domain.ProjectSnapshot, opts domain.RunOptions) (res domain.CheckResult, err error) {
	defer recoverInto(&err)
	return fix.Check(ctx, snap, opts)
}

func safeDescribe(fix domain.Fix, res domain.CheckResult) (prompt domain.PromptDescriptor, err error) {
	defer recoverInto(&err)
	return fix.Describe(res), nil
}

func safeApply(ctx context.Context, fix domain.Fix, res domain.CheckResult, snap *domain.ProjectSnapshot, opts domain.RunOptions) (manual *domain.ManualStep, err error) {
	defer recoverInto(&err)
	return fix.Apply(ctx, res, snap, opts)
}

func safeAcknowledge(ctx context.Context, ack domain.Acknowledger, res domain.CheckResult, snap *domain.ProjectSnapshot, opts domain.RunOptions) (err error) {
	defer recoverInto(&err)
	return ack.Acknowledge(ctx, res, snap, opts)
}

func recoverInto(err *error) {
	if v := recover(); v != nil {
		*err = &domain.PanicError{Value: v}
	}
}
