package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cyclesFormat string
	cyclesMax    int
	cyclesFail   bool
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List internal dependency cycles",
	Long: `Analyze the repository and list internal dependency cycles without writing
any report files.

Examples:
  monosplit cycles
  monosplit cycles --max 50
  monosplit cycles --fail        # exit status 4 when a cycle exists
  monosplit cycles --format json`,
	Args: cobra.NoArgs,
	RunE: runCycles,
}

func init() {
	cyclesCmd.Flags().StringVar(&cyclesFormat, "format", "human", "Output format (human, json, yaml)")
	cyclesCmd.Flags().IntVar(&cyclesMax, "max", 0, "Maximum cycles to list (default: report.maxCycles)")
	cyclesCmd.Flags().BoolVar(&cyclesFail, "fail", false, "Exit non-zero when cycles are found")
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(cmd *cobra.Command, args []string) error {
	if err := checkFormat(cyclesFormat); err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if cyclesMax > 0 {
		s.cfg.Report.MaxCycles = cyclesMax
	}
	// cycles only need the graph
	s.cfg.Report.SourceScan = false

	ctx, cancel := newContext()
	defer cancel()

	res, err := s.analyze(ctx)
	if err != nil {
		return err
	}

	resp := &CyclesResponse{
		Count:   res.Cycles.Len(),
		Cycles:  [][]string{},
		Summary: res.CycleSummary(),
	}
	for _, c := range res.Cycles.Cycles {
		resp.Cycles = append(resp.Cycles, res.Cycles.GAVs(c))
	}

	out, err := FormatResponse(resp, OutputFormat(cyclesFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if cyclesFail && resp.Count > 0 {
		return fmt.Errorf("%w: %d", errCyclesFound, resp.Count)
	}
	return nil
}
