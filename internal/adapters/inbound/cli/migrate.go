package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/config"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/fixes"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/history"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/logging"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/prompt"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/snapshot"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/tui"
	"github.com/abdidvp/automigrate/internal/application"
	"github.com/abdidvp/automigrate/internal/domain"
)

// runFlags are shared by every command that runs a catalog.
type runFlags struct {
	yes       bool
	dryRun    bool
	cont      bool
	jsonOut   bool
	verbose   bool
	skip      []string
	configDir string
	to        string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVarP(&f.yes, "yes", "y", false, "Apply every fix without asking")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Show what would change without writing anything")
	fl.BoolVar(&f.cont, "continue", false, "Keep running later fixes after one fails")
	fl.StringSliceVar(&f.skip, "skip", nil, "Fix ids to skip (comma separated)")
	fl.StringVar(&f.configDir, "config-dir", "", "Storybook config directory (default .storybook)")
	fl.StringVar(&f.to, "to", "", "Version range written into packages added by fixes")
	fl.BoolVar(&f.jsonOut, "json", false, "Print the run summary as JSON")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Log every fix state transition to stderr")
}

func newMigrateCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "migrate [path]",
		Short: "Run the full migration catalog against a project",
		Long: "Check every fix of the full catalog in order. Fixes that apply are shown with a diff " +
			"and run once you confirm them. Exit status: 0 clean, 1 failed, 2 usage error, 3 manual follow-up required.\n\n" +
			"An aborted or interrupted run still exits 0 when nothing failed; the fixes it never reached are " +
			"listed as not attempted (not_attempted in --json output).",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, args, domain.CatalogFull, f)
		},
	}
	f.bind(cmd)
	return cmd
}

func projectPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return absPath, nil
}

// hasTerminal reports whether answers can be read from in. Input that is not
// a file was supplied by the caller and is trusted to carry answers.
func hasTerminal(in io.Reader) bool {
	if f, ok := in.(*os.File); ok {
		return prompt.IsInteractive(f)
	}
	return in != nil
}

func runCatalog(cmd *cobra.Command, args []string, catalogName string, f runFlags) error {
	absPath, err := projectPath(args)
	if err != nil {
		return err
	}

	catalog, err := fixes.ByName(catalogName)
	if err != nil {
		return usageError(err)
	}

	in := cmd.InOrStdin()
	interactive := hasTerminal(in)
	if !f.yes && !f.dryRun && !interactive {
		return usageErrorf("stdin is not a terminal: pass --yes to apply fixes or --dry-run to preview them")
	}

	opts := domain.RunOptions{
		AssumeYes:         f.yes || !interactive,
		DryRun:            f.dryRun,
		ContinueOnFailure: f.cont,
		Skip:              f.skip,
		ConfigDir:         f.configDir,
		TargetVersion:     f.to,
	}

	stderr := cmd.ErrOrStderr()
	logger := logging.New(stderr, f.verbose)

	var confirmer domain.Confirmer
	if !opts.AssumeYes {
		confirmer = prompt.New(in, stderr)
	}

	svc := application.NewMigrateService(
		config.New(),
		snapshot.New(gitinfo.New()),
		history.New(),
		application.NewRunner(confirmer, logger),
		logger,
	)

	snap, opts, err := svc.Prepare(absPath, opts)
	if err != nil {
		return err
	}
	if snap.Git.IsRepo && !snap.Git.Clean && !opts.DryRun {
		fmt.Fprintln(stderr, "warning: the git worktree has uncommitted changes; commit or stash them so fixes are easy to review and revert")
	}

	summary, err := svc.Run(cmd.Context(), snap, catalog, opts)
	if err != nil {
		return err
	}

	if f.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(summary))
	}

	if code := summary.Status.ExitCode(); code != domain.ExitClean {
		return &ExitError{Code: code, Err: fmt.Errorf("run finished with status %s", summary.Status)}
	}
	return nil
}
