package domain

import "context"

// SnapshotLoader builds the project snapshot a run works from.
type SnapshotLoader interface {
	Load(projectPath, configDir string) (*ProjectSnapshot, error)
}

// ConfigLoader reads the project-level .automigrate.yaml.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// Confirmer asks the user whether a pending fix should proceed.
type Confirmer interface {
	Confirm(ctx context.Context, fix FixInfo, prompt PromptDescriptor, res CheckResult) (Decision, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, fix FixInfo, prompt PromptDescriptor, res CheckResult) (Decision, error)

func (f ConfirmFunc) Confirm(ctx context.Context, fix FixInfo, prompt PromptDescriptor, res CheckResult) (Decision, error) {
	return f(ctx, fix, prompt, res)
}

// RunHistory persists a record of completed runs.
type RunHistory interface {
	Save(projectPath string, record RunRecord) error
	Load(projectPath string) ([]RunRecord, error)
}

// GitInfo reads repository state for the snapshot.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	IsClean(projectPath string) (bool, error)
}
