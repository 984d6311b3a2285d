package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"monosplit/internal/analysis"
	"monosplit/internal/errors"
	"monosplit/internal/paths"
	"monosplit/internal/report"
	"monosplit/internal/storage"
)

var (
	analyzeOut          string
	analyzeNoSourceScan bool
	analyzeParseSources bool
	analyzeCompress     bool
	analyzeStore        bool
	analyzeFormats      []string
	analyzeFormat       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the monorepo and write split reports",
	Long: `Discover every pom.xml under --repo, resolve inherited coordinates, build the
internal dependency graph and write the reports:

  proposal.md       proposed N+1 repo model
  graph.dot         internal dependency graph
  modules.csv       one row per module
  deps.csv          one row per internal dependency
  code_overlap.csv  packages and classes shared between modules

Nothing is written when no descriptor could be analyzed.

Examples:
  monosplit analyze --repo ~/src/platform
  monosplit analyze --out /tmp/split --no-source-scan
  monosplit analyze --emit csv,dot,markdown,json --compress
  monosplit analyze --store --format json`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Output directory for reports (default: <repo>/monorepo-analysis)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSourceScan, "no-source-scan", false, "Disable the src/main/java overlap scan")
	analyzeCmd.Flags().BoolVar(&analyzeParseSources, "parse-sources", false, "Read package and class names from Java sources instead of file paths")
	analyzeCmd.Flags().BoolVar(&analyzeCompress, "compress", false, "Write the JSON snapshot zstd-compressed")
	analyzeCmd.Flags().BoolVar(&analyzeStore, "store", false, "Record the run in the local run history")
	analyzeCmd.Flags().StringSliceVar(&analyzeFormats, "emit", nil, "Report formats to write (csv, dot, markdown, json, yaml)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Stdout format (human, json, yaml)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := checkFormat(analyzeFormat); err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg
	if analyzeNoSourceScan {
		cfg.Report.SourceScan = false
	}
	if analyzeParseSources {
		cfg.Report.ParseSources = true
	}
	if analyzeCompress {
		cfg.Output.Compress = true
	}
	if analyzeStore {
		cfg.Storage.Enabled = true
	}
	if len(analyzeFormats) > 0 {
		cfg.Output.Formats = analyzeFormats
	}

	outDir, err := resolveOutDir(cmd, s)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	res, err := s.analyze(ctx)
	if err != nil {
		return err
	}

	files, err := report.NewWriter(outDir, cfg.Output, s.logger).Write(res)
	if err != nil {
		return err
	}

	resp := &AnalyzeResponse{
		Summary: report.NewSnapshot(res),
		OutDir:  outDir,
		Files:   files,
		Cycles:  res.CycleSummary(),
	}

	if cfg.Storage.Enabled {
		run, err := storeRun(ctx, s, res)
		if err != nil {
			// the reports are already on disk; a history failure only degrades
			s.logger.Warn("Failed to store run", "error", err)
		} else {
			resp.StoredAs = run.RunID
		}
	}

	out, err := FormatResponse(resp, OutputFormat(analyzeFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	s.logger.Debug("Analyze completed",
		"outDir", outDir,
		"files", len(files),
		"duration", time.Since(res.StartedAt).Round(time.Millisecond),
	)
	return nil
}

// resolveOutDir returns the absolute report directory. An explicit --out is
// relative to the working directory; output.dir is relative to the repo root.
func resolveOutDir(cmd *cobra.Command, s *session) (string, error) {
	if cmd.Flags().Changed("out") {
		abs, err := filepath.Abs(analyzeOut)
		if err != nil {
			return "", errors.New(errors.OutputFailed, "failed to resolve output directory", err)
		}
		return abs, nil
	}
	return paths.ResolveUnder(s.repoRoot, s.cfg.Output.Dir), nil
}

// storeRun saves res into the run history database.
func storeRun(ctx context.Context, s *session, res *analysis.Result) (*storage.Run, error) {
	db, err := openStore(s)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	run, err := storage.NewRunRepository(db).Save(ctx, res, s.factory.Warnings())
	if err != nil {
		return nil, errors.New(errors.StorageFailed, "failed to save run", err)
	}
	s.logger.Info("Stored run", "run", run.RunID, "db", db.Path())
	return run, nil
}

// openStore opens the history database at storage.path under the repo root.
func openStore(s *session) (*storage.DB, error) {
	db, err := storage.Open(paths.ResolveUnder(s.repoRoot, s.cfg.Storage.Path), s.logger)
	if err != nil {
		return nil, errors.New(errors.StorageFailed, "failed to open run history", err)
	}
	return db, nil
}
