package descriptor

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Options controls batch parsing.
type Options struct {
	// Parallelism bounds concurrent parses; <= 0 means GOMAXPROCS.
	Parallelism int
	Logger      *slog.Logger
}

// ParseResult is the outcome of ParseAll.
type ParseResult struct {
	Records Set
	// Failed lists descriptor paths that could not be parsed, in input order.
	Failed []string
	// Warnings aggregates the per-descriptor parse errors.
	Warnings *multierror.Error
}

// Err returns the aggregated parse warnings, or nil.
func (r *ParseResult) Err() error {
	return r.Warnings.ErrorOrNil()
}

// ParseAll parses every descriptor path. A descriptor that fails to parse is
// logged, recorded in Failed and skipped; the returned error is non-nil only
// when ctx is cancelled.
func ParseAll(ctx context.Context, paths []string, opts Options) (*ParseResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	records := make([]*Record, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := ParseFile(p)
			if err != nil {
				logger.Warn("Failed to parse descriptor", "path", p, "error", err)
				errs[i] = err
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ParseResult{Records: make(Set, len(paths))}
	for i, p := range paths {
		if errs[i] != nil {
			result.Failed = append(result.Failed, p)
			result.Warnings = multierror.Append(result.Warnings, errs[i])
			continue
		}
		result.Records[records[i].Path] = records[i]
	}

	logger.Debug("Parsed descriptors",
		"found", len(paths),
		"parsed", len(result.Records),
		"failed", len(result.Failed),
	)

	return result, nil
}
