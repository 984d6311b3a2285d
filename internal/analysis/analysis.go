// Package analysis runs the full descriptor-to-proposal pipeline.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"monosplit/internal/classify"
	"monosplit/internal/config"
	"monosplit/internal/cycles"
	"monosplit/internal/declaration"
	"monosplit/internal/depgraph"
	"monosplit/internal/descriptor"
	"monosplit/internal/discovery"
	"monosplit/internal/errors"
	"monosplit/internal/overlap"
	"monosplit/internal/paths"
	"monosplit/internal/resolve"
)

// Options configures Run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
}

// Result is everything one analysis run produced. Nothing in it has been
// written anywhere yet.
type Result struct {
	RunID     string
	Root      string
	StartedAt time.Time
	Duration  time.Duration

	// Found lists every discovered descriptor, sorted.
	Found []string
	// Failed lists descriptors that could not be parsed.
	Failed []string
	// Ignored lists descriptors dropped by the declaration file.
	Ignored []string

	Resolution  *resolve.Result
	Records     descriptor.Set
	Graph       *depgraph.Graph
	Cycles      *cycles.Report
	Proposal    *classify.Proposal
	Declaration *declaration.File

	// SourceScanned is false when the overlap scan was disabled.
	SourceScanned bool
	Overlap       []overlap.Row
	OverlapStats  overlap.Stats

	// MaxCycles bounds the cycle listing in summaries.
	MaxCycles int

	// Warnings aggregates every non-fatal problem of the run.
	Warnings *multierror.Error
}

// CycleSummary renders the bounded cycle report.
func (r *Result) CycleSummary() string {
	return r.Cycles.Summary(r.MaxCycles)
}

// Run analyzes the descriptor tree under root. It returns a fatal
// NO_DESCRIPTORS or NO_PARSABLE_DESCRIPTORS error when there is nothing to
// analyze; every other problem is logged and collected in Result.Warnings.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to resolve root", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	res := &Result{
		RunID:     uuid.New().String(),
		Root:      abs,
		StartedAt: time.Now().UTC(),
		MaxCycles: cfg.Report.MaxCycles,
	}
	logger = logger.With("run", res.RunID[:8])

	if !paths.DirExists(abs) {
		return nil, errors.Newf(errors.NoDescriptors, "No %s found under %s: not a directory",
			cfg.Discovery.DescriptorName, abs).WithDetails(map[string]string{"root": abs})
	}

	decl, err := declaration.Load(abs, cfg.Classification.DeclarationFile)
	if err != nil {
		logger.Warn("Ignoring invalid declaration file", "error", err)
		res.Warnings = multierror.Append(res.Warnings, err)
	}
	res.Declaration = decl

	found, err := discovery.Find(abs, discovery.Options{
		DescriptorName: cfg.Discovery.DescriptorName,
		ExcludeDirs:    cfg.Discovery.ExcludeDirs,
		Logger:         logger,
	})
	if err != nil {
		return nil, errors.New(errors.InternalError, "descriptor discovery failed", err)
	}
	if len(found) == 0 {
		return nil, errors.Newf(errors.NoDescriptors, "No %s found under %s",
			cfg.Discovery.DescriptorName, abs).WithDetails(map[string]string{"root": abs})
	}
	res.Found = found
	logger.Info("Discovered descriptors", "count", len(found), "root", abs)

	parsed, err := descriptor.ParseAll(ctx, found, descriptor.Options{
		Parallelism: cfg.Discovery.Parallelism,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	res.Failed = parsed.Failed
	if parsed.Warnings != nil {
		res.Warnings = multierror.Append(res.Warnings, parsed.Warnings.Errors...)
	}
	if len(parsed.Records) == 0 {
		return nil, errors.Newf(errors.NoParsableDescriptors,
			"No valid %s files could be parsed under %s (%d found)",
			cfg.Discovery.DescriptorName, abs, len(found)).WithDetails(map[string]any{
			"root":   abs,
			"failed": parsed.Failed,
		})
	}

	res.Resolution = resolve.Resolve(parsed.Records, resolve.Options{Logger: logger})
	for _, p := range res.Resolution.MissingParents {
		res.Warnings = multierror.Append(res.Warnings, errors.New(errors.ParentUnresolved,
			fmt.Sprintf("parent of %s not found at %s", paths.SafeRel(p, abs),
				paths.SafeRel(resolve.ParentPath(res.Resolution.Records[p]), abs)), nil))
	}
	for _, p := range res.Resolution.ParentCycles {
		res.Warnings = multierror.Append(res.Warnings, errors.Newf(errors.ParentCyclic,
			"parent chain of %s is cyclic, using its declared parent coordinates", paths.SafeRel(p, abs)))
	}

	res.Records, res.Ignored = decl.Filter(res.Resolution.Records)
	for _, p := range res.Ignored {
		logger.Info("Ignoring declared module", "path", paths.SafeRel(p, abs))
	}

	res.Graph = depgraph.Build(res.Records, depgraph.Options{Logger: logger})
	res.Cycles = cycles.Detect(res.Graph)
	if res.Cycles.Len() > 0 {
		logger.Warn("Internal dependency cycles detected", "count", res.Cycles.Len())
	}

	res.Proposal = classify.Classify(res.Graph, classify.Options{
		ApplicationPackaging: cfg.Classification.ApplicationPackaging,
		WebSourceMarkers:     cfg.Classification.WebSourceMarkers,
		ForcedApplications:   decl.ApplicationArtifacts(),
		MinSharedApps:        cfg.Classification.MinSharedApps,
		MinFanIn:             cfg.Classification.MinFanIn,
		Logger:               logger,
	})

	if cfg.Report.SourceScan {
		mods := make([]overlap.Module, 0, res.Graph.Len())
		for _, rec := range res.Graph.Nodes() {
			mods = append(mods, overlap.Module{Name: rec.ArtifactID(), Dir: rec.Dir})
		}
		rows, stats, err := overlap.Scan(ctx, mods, overlap.Options{
			SourceRoot:   cfg.Report.SourceRoot,
			ParseSources: cfg.Report.ParseSources,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		res.SourceScanned = true
		res.Overlap = rows
		res.OverlapStats = stats
	}

	res.Duration = time.Since(res.StartedAt)
	logger.Info("Analysis complete",
		"modules", res.Graph.Len(),
		"edges", len(res.Graph.Edges()),
		"applications", len(res.Proposal.Applications),
		"shared", len(res.Proposal.Shared),
		"cycles", res.Cycles.Len(),
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

// Err returns the aggregated warnings, or nil.
func (r *Result) Err() error {
	return r.Warnings.ErrorOrNil()
}

// Rel renders p relative to the analyzed root.
func (r *Result) Rel(p string) string {
	return paths.SafeRel(p, r.Root)
}
