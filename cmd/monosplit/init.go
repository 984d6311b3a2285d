package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"monosplit/internal/config"
	"monosplit/internal/declaration"
	"monosplit/internal/errors"
	"monosplit/internal/paths"
)

var (
	initForce         bool
	initNoDeclaration bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration and declaration file",
	Long: `Creates .monosplit/config.json with the default configuration and a starter
MONOSPLIT.toml declaration file in the repository root. Existing files are
kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&initNoDeclaration, "no-declaration", false, "Do not write MONOSPLIT.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(repoFlag)
	if err != nil {
		return errors.New(errors.InternalError, "failed to resolve repo path", err)
	}
	if !paths.DirExists(root) {
		return errors.Newf(errors.ConfigInvalid, "%s is not a directory", root)
	}
	out := cmd.OutOrStdout()

	cfg := config.DefaultConfig()
	configPath := filepath.Join(paths.GetStateDir(root), "config.json")
	if paths.FileExists(configPath) && !initForce {
		// Idempotent: already initialized is success
		fmt.Fprintf(out, "Configuration already at %s\n", configPath)
	} else {
		if err := cfg.Save(root); err != nil {
			return errors.New(errors.InternalError, "failed to write config file", err)
		}
		fmt.Fprintf(out, "Configuration written to %s\n", configPath)
	}

	if !initNoDeclaration {
		declPath := filepath.Join(root, cfg.Classification.DeclarationFile)
		if paths.FileExists(declPath) && !initForce {
			fmt.Fprintf(out, "Declaration already at %s\n", declPath)
		} else {
			if err := declaration.Write(declPath, declaration.Example()); err != nil {
				return errors.New(errors.InternalError, "failed to write declaration file", err)
			}
			fmt.Fprintf(out, "Declaration written to %s\n", declPath)
		}
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Edit the declaration to force applications or ignore modules")
	fmt.Fprintln(out, "  2. Run 'monosplit analyze' to write the reports")
	return nil
}
