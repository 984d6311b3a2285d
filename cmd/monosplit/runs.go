package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"monosplit/internal/errors"
	"monosplit/internal/storage"
)

var (
	runsFormat string
	runsLimit  int
	runsKeep   int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	Long: `List runs recorded with 'monosplit analyze --store', newest first.

Examples:
  monosplit runs
  monosplit runs --limit 5 --format json
  monosplit runs show 3f2a9c1e
  monosplit runs prune --keep 10`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored run with its modules and cycles",
	Long:  "Show one stored run. A unique prefix of the run id is enough.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsPrune,
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsFormat, "format", "human", "Output format (human, json, yaml)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 for all)")
	runsPruneCmd.Flags().IntVar(&runsKeep, "keep", 20, "Number of newest runs to keep")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)
	rootCmd.AddCommand(runsCmd)
}

// withRuns opens the session and the run history for one command.
func withRuns(cmd *cobra.Command, fn func(context.Context, *storage.RunRepository) (interface{}, error)) error {
	if err := checkFormat(runsFormat); err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	db, err := openStore(s)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	resp, err := fn(ctx, storage.NewRunRepository(db))
	if err != nil {
		return err
	}
	out, err := FormatResponse(resp, OutputFormat(runsFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	return withRuns(cmd, func(ctx context.Context, repo *storage.RunRepository) (interface{}, error) {
		runs, err := repo.List(ctx, runsLimit)
		if err != nil {
			return nil, errors.New(errors.StorageFailed, "failed to list runs", err)
		}
		if runs == nil {
			runs = []*storage.Run{}
		}
		return runs, nil
	})
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	return withRuns(cmd, func(ctx context.Context, repo *storage.RunRepository) (interface{}, error) {
		run, err := repo.Get(ctx, args[0])
		if err != nil {
			return nil, errors.New(errors.StorageFailed, "failed to look up run", err)
		}
		if run == nil {
			return nil, errors.Newf(errors.StorageFailed, "no stored run matches %q", args[0])
		}
		modules, err := repo.Modules(ctx, run.RunID)
		if err != nil {
			return nil, errors.New(errors.StorageFailed, "failed to load run modules", err)
		}
		cycles, err := repo.Cycles(ctx, run.RunID)
		if err != nil {
			return nil, errors.New(errors.StorageFailed, "failed to load run cycles", err)
		}
		return &RunDetailResponse{Run: run, Modules: modules, Cycles: cycles}, nil
	})
}

// PruneResponse is the output of `runs prune`.
type PruneResponse struct {
	Deleted int64 `json:"deleted" yaml:"deleted"`
	Kept    int   `json:"kept" yaml:"kept"`
}

func runRunsPrune(cmd *cobra.Command, args []string) error {
	if runsKeep < 0 {
		return errors.Newf(errors.ConfigInvalid, "--keep must be >= 0")
	}
	return withRuns(cmd, func(ctx context.Context, repo *storage.RunRepository) (interface{}, error) {
		n, err := repo.Prune(ctx, runsKeep)
		if err != nil {
			return nil, errors.New(errors.StorageFailed, "failed to prune runs", err)
		}
		left, err := repo.Count(ctx)
		if err != nil {
			return nil, errors.New(errors.StorageFailed, "failed to count runs", err)
		}
		return &PruneResponse{Deleted: n, Kept: left}, nil
	})
}
