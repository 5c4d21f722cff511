// Package fixes holds the built-in migration fixes and the catalogs they are
// grouped into.
//
// Every fix follows the same shape: Check inspects the snapshot (reading
// files when it needs their exact bytes) and, when there is work to do,
// returns a plan listing per-file edits. Apply re-reads the files and runs the
// plan again, so edits made by earlier fixes in the same run are preserved.
package fixes

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fsutil"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/abdidvp/automigrate/internal/domain"
)

type checkFunc func(ctx context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error)

// fix implements domain.Fix around a check function. The mutation is carried
// by the *plan payload, so Describe and Apply are shared.
type fix struct {
	info  domain.FixInfo
	check checkFunc
}

func (f *fix) Info() domain.FixInfo { return f.info }

// Check runs the fix's own check. A manual verdict the user already confirmed
// in an earlier run is reported as satisfied, and plans that leave manual work
// behind also record the fix as acknowledged once applied.
func (f *fix) Check(ctx context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error) {
	res, err := f.check(ctx, snap, opts)
	if err != nil {
		return res, err
	}
	if res.Kind == domain.CheckNeedsManualAction && snap.Manifest.Acknowledged(f.info.ID) {
		return domain.AlreadySatisfied("manual follow-up was confirmed in an earlier run"), nil
	}
	if p, ok := res.Payload.(*plan); ok && p.residual != "" {
		p.edits = append(p.edits, acknowledgeEdit(snap, f.info.ID))
		if _, err := p.render(); err != nil {
			return domain.CheckResult{}, err
		}
	}
	return res, nil
}

// Acknowledge records in package.json that the user confirmed the fix's
// manual follow-up.
func (f *fix) Acknowledge(ctx context.Context, _ domain.CheckResult, snap *domain.ProjectSnapshot, _ domain.RunOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := manifest.Edit(snap.ManifestPath, func(doc *manifest.Document) error {
		return doc.Acknowledge(f.info.ID)
	})
	return err
}

func (f *fix) Describe(res domain.CheckResult) domain.PromptDescriptor {
	d := domain.PromptDescriptor{Title: f.info.Title}
	if p, ok := res.Payload.(*plan); ok {
		d.Body = p.body()
		d.Diff = p.preview
		return d
	}
	d.Body = res.Reason
	return d
}

func (f *fix) Apply(ctx context.Context, res domain.CheckResult, _ *domain.ProjectSnapshot, _ domain.RunOptions) (*domain.ManualStep, error) {
	p, ok := res.Payload.(*plan)
	if !ok {
		return nil, fmt.Errorf("unexpected check payload %T", res.Payload)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.apply(); err != nil {
		return nil, err
	}
	if p.residual != "" {
		return &domain.ManualStep{Instructions: p.residual}, nil
	}
	return nil, nil
}

// fileEdit transforms the content of one file.
type fileEdit struct {
	path string
	rel  string
	edit func([]byte) ([]byte, error)
}

// plan is the payload of a ReadyToApply result.
type plan struct {
	summary  string
	edits    []fileEdit
	residual string
	preview  string
}

func (p *plan) body() string {
	if p.residual == "" {
		return p.summary
	}
	return p.summary + "\n\nStill to do by hand: " + p.residual
}

type change struct {
	path   string
	rel    string
	before []byte
	after  []byte
}

// changes runs every edit against the current file contents. Several edits
// may target the same file; they are chained in order.
func (p *plan) changes() ([]change, error) {
	var order []string
	byPath := map[string]*change{}
	for _, e := range p.edits {
		c, ok := byPath[e.path]
		if !ok {
			data, err := os.ReadFile(e.path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", e.rel, err)
			}
			c = &change{path: e.path, rel: e.rel, before: data, after: data}
			byPath[e.path] = c
			order = append(order, e.path)
		}
		out, err := e.edit(c.after)
		if err != nil {
			return nil, fmt.Errorf("editing %s: %w", e.rel, err)
		}
		c.after = out
	}

	var out []change
	for _, path := range order {
		if c := byPath[path]; !bytes.Equal(c.before, c.after) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// apply writes every changed file. When a write fails, files already written
// are put back.
func (p *plan) apply() error {
	changes, err := p.changes()
	if err != nil {
		return err
	}
	for i, c := range changes {
		if err := fsutil.WriteFileAtomic(c.path, c.after, 0o644); err != nil {
			for _, done := range changes[:i] {
				_ = fsutil.WriteFileAtomic(done.path, done.before, 0o644)
			}
			return fmt.Errorf("writing %s: %w", c.rel, err)
		}
	}
	return nil
}

// propose turns edits into a check result: ReadyToApply with a preview when
// something would change, NeedsManualAction when only residual work remains,
// AlreadySatisfied otherwise.
func propose(summary, residual string, edits ...fileEdit) (domain.CheckResult, error) {
	p := &plan{summary: summary, edits: edits, residual: residual}
	n, err := p.render()
	if err != nil {
		return domain.CheckResult{}, err
	}
	if n == 0 {
		if residual != "" {
			return domain.NeedsManualAction(residual, nil), nil
		}
		return domain.AlreadySatisfied("project files already up to date"), nil
	}
	return domain.ReadyToApply(p), nil
}

// render refreshes the diff preview and returns how many files would change.
func (p *plan) render() (int, error) {
	changes, err := p.changes()
	if err != nil {
		return 0, err
	}
	p.preview = renderDiff(changes)
	return len(changes), nil
}

func acknowledgeEdit(snap *domain.ProjectSnapshot, fixID string) fileEdit {
	return manifestEdit(snap, func(doc *manifest.Document) error {
		return doc.Acknowledge(fixID)
	})
}

func relPath(snap *domain.ProjectSnapshot, path string) string {
	rel, err := filepath.Rel(snap.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func manifestEdit(snap *domain.ProjectSnapshot, fn func(*manifest.Document) error) fileEdit {
	return jsonEdit(snap, snap.ManifestPath, fn)
}

func jsonEdit(snap *domain.ProjectSnapshot, path string, fn func(*manifest.Document) error) fileEdit {
	return fileEdit{
		path: path,
		rel:  relPath(snap, path),
		edit: func(data []byte) ([]byte, error) {
			return manifest.Transform(data, fn)
		},
	}
}

func mainConfigEdit(snap *domain.ProjectSnapshot, fn func(string) string) fileEdit {
	return fileEdit{
		path: snap.MainConfigPath,
		rel:  relPath(snap, snap.MainConfigPath),
		edit: func(data []byte) ([]byte, error) {
			return []byte(fn(string(data))), nil
		},
	}
}

// targetVersion is the range written for packages added by a fix.
func targetVersion(opts domain.RunOptions) string {
	if opts.TargetVersion == "" {
		return domain.DefaultTargetVersion
	}
	return opts.TargetVersion
}
