package domain

import "context"

// Fix is a single self-contained migration step. Implementations must be
// idempotent: once Apply has succeeded, a later Check against the resulting
// project returns Inapplicable or AlreadySatisfied.
type Fix interface {
	Info() FixInfo

	// Check inspects the project without writing to it. A returned error means
	// applicability could not be determined; it is distinct from Inapplicable.
	Check(ctx context.Context, snap *ProjectSnapshot, opts RunOptions) (CheckResult, error)

	// Describe renders the pending change for the user. It must be pure.
	Describe(res CheckResult) PromptDescriptor

	// Apply performs the mutation. It is only called after Check returned
	// ReadyToApply in the same run, and at most once. A non-nil ManualStep means
	// automation stopped short and the user has residual work.
	Apply(ctx context.Context, res CheckResult, snap *ProjectSnapshot, opts RunOptions) (*ManualStep, error)
}

// Acknowledger is implemented by fixes that record a confirmed manual step in
// the project, so that their next Check reports AlreadySatisfied. The runner
// calls Acknowledge instead of Apply once a NeedsManualAction result has been
// confirmed outside a dry run.
type Acknowledger interface {
	Acknowledge(ctx context.Context, res CheckResult, snap *ProjectSnapshot, opts RunOptions) error
}

// FixInfo identifies a fix and the version transition it belongs to.
type FixInfo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Versions    VersionRange `json:"versions"`
}

// VersionRange records the version transition a fix targets, e.g. "<7" to ">=7".
type VersionRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CheckKind enumerates the possible check verdicts.
type CheckKind string

const (
	CheckInapplicable      CheckKind = "inapplicable"
	CheckAlreadySatisfied  CheckKind = "already_satisfied"
	CheckNeedsManualAction CheckKind = "needs_manual_action"
	CheckReadyToApply      CheckKind = "ready_to_apply"
)

// CheckResult is the verdict of a fix's check. Payload is opaque to the runner
// and is handed back to Describe and Apply unchanged.
type CheckResult struct {
	Kind    CheckKind
	Reason  string
	Payload any
}

// Inapplicable reports that the fix does not concern this project.
func Inapplicable(reason string) CheckResult {
	return CheckResult{Kind: CheckInapplicable, Reason: reason}
}

// AlreadySatisfied reports that the project is already in the desired state.
func AlreadySatisfied(reason string) CheckResult {
	return CheckResult{Kind: CheckAlreadySatisfied, Reason: reason}
}

// NeedsManualAction reports a problem that can only be resolved by hand.
func NeedsManualAction(reason string, payload any) CheckResult {
	return CheckResult{Kind: CheckNeedsManualAction, Reason: reason, Payload: payload}
}

// ReadyToApply reports a problem the fix can correct automatically.
func ReadyToApply(payload any) CheckResult {
	return CheckResult{Kind: CheckReadyToApply, Payload: payload}
}

// Actionable reports whether the result requires confirmation.
func (r CheckResult) Actionable() bool {
	return r.Kind == CheckReadyToApply || r.Kind == CheckNeedsManualAction
}

// PromptDescriptor is the human-readable description of a pending change.
type PromptDescriptor struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Diff  string `json:"diff,omitempty"`
}

// ManualStep carries residual instructions when a fix cannot finish on its own.
type ManualStep struct {
	Instructions string `json:"instructions"`
}

// Decision is the answer to a confirmation prompt.
type Decision int

const (
	DecisionYes Decision = iota
	DecisionNo
	DecisionAbort
)

func (d Decision) String() string {
	switch d {
	case DecisionYes:
		return "yes"
	case DecisionNo:
		return "no"
	case DecisionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// RunOptions are the runtime flags a run is executed with.
type RunOptions struct {
	AssumeYes         bool     `json:"assume_yes"`
	DryRun            bool     `json:"dry_run"`
	ContinueOnFailure bool     `json:"continue_on_failure"`
	Skip              []string `json:"skip,omitempty"`
	ConfigDir         string   `json:"config_dir"`
	TargetVersion     string   `json:"target_version"`
}

// Interactive reports whether fixes must be confirmed by a user.
func (o RunOptions) Interactive() bool {
	return !o.AssumeYes
}

// IsSkipped reports whether the fix id was excluded for this run.
func (o RunOptions) IsSkipped(id string) bool {
	for _, s := range o.Skip {
		if s == id {
			return true
		}
	}
	return false
}
