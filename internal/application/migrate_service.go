package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abdidvp/automigrate/internal/domain"
)

// MigrateService orchestrates a migration run:
// load config → load snapshot → run catalog → record history.
type MigrateService struct {
	config  domain.ConfigLoader
	loader  domain.SnapshotLoader
	history domain.RunHistory
	runner  *Runner
	logger  *slog.Logger
	now     func() time.Time
}

// NewMigrateService wires a service. history may be nil to disable run records.
func NewMigrateService(cfg domain.ConfigLoader, loader domain.SnapshotLoader, history domain.RunHistory, runner *Runner, logger *slog.Logger) *MigrateService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &MigrateService{
		config:  cfg,
		loader:  loader,
		history: history,
		runner:  runner,
		logger:  logger,
		now:     time.Now,
	}
}

// Prepare resolves the effective options and builds the snapshot without
// running anything.
func (s *MigrateService) Prepare(projectPath string, opts domain.RunOptions) (*domain.ProjectSnapshot, domain.RunOptions, error) {
	cfg, err := s.config.Load(projectPath)
	if err != nil {
		return nil, opts, fmt.Errorf("loading config: %w", err)
	}
	opts = cfg.WithDefaults().ApplyTo(opts)

	snap, err := s.loader.Load(projectPath, opts.ConfigDir)
	if err != nil {
		return nil, opts, fmt.Errorf("loading project: %w", err)
	}
	return snap, opts, nil
}

// Migrate runs catalog against the project at projectPath.
func (s *MigrateService) Migrate(ctx context.Context, projectPath string, catalog domain.Catalog, opts domain.RunOptions) (*domain.RunSummary, error) {
	snap, opts, err := s.Prepare(projectPath, opts)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, snap, catalog, opts)
}

// Run executes catalog against an already loaded snapshot. opts must already
// carry the config overlay; see Prepare.
func (s *MigrateService) Run(ctx context.Context, snap *domain.ProjectSnapshot, catalog domain.Catalog, opts domain.RunOptions) (*domain.RunSummary, error) {
	s.logger.Debug("starting run",
		"catalog", catalog.Name,
		"project", snap.Root,
		"fixes", len(catalog.Fixes),
		"dry_run", opts.DryRun,
		"assume_yes", opts.AssumeYes,
		"continue", opts.ContinueOnFailure,
	)

	summary, err := s.runner.Run(ctx, catalog, snap, opts)
	if err != nil {
		return nil, err
	}

	// Dry runs must leave the project untouched, history included.
	if !opts.DryRun && s.history != nil {
		rec := domain.RecordFromSummary(uuid.NewString(), s.now().UTC().Format(time.RFC3339), snap.Git.Head, summary)
		if err := s.history.Save(snap.Root, rec); err != nil {
			s.logger.Warn("could not record run history", "err", err)
		}
	}

	return summary, nil
}

// History returns previously recorded runs, oldest first.
func (s *MigrateService) History(projectPath string) ([]domain.RunRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Load(projectPath)
}
