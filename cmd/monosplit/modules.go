package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monosplit/internal/report"
)

var (
	modulesFormat string
	modulesRole   string
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List modules with their proposed role",
	Long: `Analyze the repository and list every module with its packaging, fan-in and
proposed role (application, shared, high-fan-in, exclusive, unreached,
library).

Examples:
  monosplit modules
  monosplit modules --role shared
  monosplit modules --format yaml`,
	Args: cobra.NoArgs,
	RunE: runModules,
}

func init() {
	modulesCmd.Flags().StringVar(&modulesFormat, "format", "human", "Output format (human, json, yaml)")
	modulesCmd.Flags().StringVar(&modulesRole, "role", "", "Only list modules with this role")
	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	if err := checkFormat(modulesFormat); err != nil {
		return err
	}
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

	snap := report.NewSnapshot(res)
	resp := &ModulesResponse{Root: res.Root, Modules: []report.ModuleEntry{}}
	for _, m := range snap.Modules {
		if modulesRole == "" || m.Role == modulesRole {
			resp.Modules = append(resp.Modules, m)
		}
	}

	out, err := FormatResponse(resp, OutputFormat(modulesFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
