package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monosplit/internal/report"
)

var (
	proposalRender bool
	proposalWidth  int
)

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Print the proposed repo split as markdown",
	Long: `Analyze the repository and print proposal.md to stdout without writing any
files. With --render the markdown is styled for the terminal.

Examples:
  monosplit proposal > proposal.md
  monosplit proposal --render`,
	Args: cobra.NoArgs,
	RunE: runProposal,
}

func init() {
	proposalCmd.Flags().BoolVar(&proposalRender, "render", false, "Render markdown for the terminal")
	proposalCmd.Flags().IntVar(&proposalWidth, "width", report.DefaultWrapWidth, "Word wrap width for --render")
	rootCmd.AddCommand(proposalCmd)
}

func runProposal(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	s.cfg.Report.SourceScan = false

	ctx, cancel := newContext()
	defer cancel()

	res, err := s.analyze(ctx)
	if err != nil {
		return err
	}

	md := report.Proposal(res)
	if proposalRender {
		rendered, err := report.RenderMarkdown(md, proposalWidth)
		if err != nil {
			s.logger.Warn("Falling back to plain markdown", "error", err)
		} else {
			md = rendered
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), md)
	return nil
}
