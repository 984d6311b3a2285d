package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"monosplit/internal/analysis"
	"monosplit/internal/config"
	"monosplit/internal/errors"
	"monosplit/internal/slogutil"
	"monosplit/internal/version"
)

var (
	// verbosity is the -v count
	verbosity int
	quiet     bool
	repoFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "monosplit",
	Short: "monosplit - Maven monorepo split planner",
	Long: `monosplit reads every pom.xml of a Maven multi-module repository, builds the
internal dependency graph, detects cycles and proposes how to split the
monorepo into one shared platform repo plus one repo per application.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("monosplit version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".", "Path to the monorepo root")
}

// session bundles what every command needs: the resolved repo root, the
// effective configuration and a logger.
type session struct {
	repoRoot string
	cfg      *config.Config
	factory  *slogutil.LoggerFactory
	logger   *slog.Logger
}

// openSession resolves --repo, loads the configuration and builds the logger.
// Config load errors are reported as CONFIG_INVALID.
func openSession(cmd *cobra.Command) (*session, error) {
	root, err := filepath.Abs(repoFlag)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to resolve repo path", err)
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to load configuration", err)
	}

	// Level precedence: -v/-q > logging.level
	var cliLevel *slog.Level
	if verbosity > 0 || quiet {
		lvl := slogutil.LevelFromVerbosity(verbosity, quiet)
		cliLevel = &lvl
	}
	factory := slogutil.NewLoggerFactory(root, cfg, cliLevel)

	return &session{
		repoRoot: root,
		cfg:      cfg,
		factory:  factory,
		logger:   factory.RunLogger(cmd.ErrOrStderr()),
	}, nil
}

// validate checks the configuration after flag overrides were applied.
func (s *session) validate() error {
	if err := s.cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}
	return nil
}

// analyze runs the pipeline over the session's repo root.
func (s *session) analyze(ctx context.Context) (*analysis.Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return analysis.Run(ctx, s.repoRoot, analysis.Options{Config: s.cfg, Logger: s.logger})
}

func (s *session) Close() error {
	return s.factory.Close()
}

// newContext creates a context cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signalContext(context.Background())
}
