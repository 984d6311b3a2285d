package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"monosplit/internal/errors"
	"monosplit/internal/report"
	"monosplit/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// checkFormat rejects unknown stdout formats before any work is done.
func checkFormat(format string) error {
	switch OutputFormat(format) {
	case FormatJSON, FormatYAML, FormatHuman:
		return nil
	}
	return errors.Newf(errors.ConfigInvalid, "unsupported format: %s (want human, json or yaml)", format)
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(resp); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnalyzeResponse:
		return formatAnalyzeHuman(v), nil
	case *CyclesResponse:
		return formatCyclesHuman(v), nil
	case *ModulesResponse:
		return formatModulesHuman(v), nil
	case []*storage.Run:
		return formatRunsHuman(v), nil
	case *RunDetailResponse:
		return formatRunDetailHuman(v), nil
	case *PruneResponse:
		return fmt.Sprintf("Deleted %d run(s), %d kept", v.Deleted, v.Kept), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// AnalyzeResponse is the stdout summary of `analyze`.
type AnalyzeResponse struct {
	Summary  *report.Snapshot `json:"result" yaml:"result"`
	OutDir   string           `json:"outDir" yaml:"outDir"`
	Files    []string         `json:"files" yaml:"files"`
	StoredAs string           `json:"storedAs,omitempty" yaml:"storedAs,omitempty"`
	Cycles   string           `json:"-" yaml:"-"`
}

func formatAnalyzeHuman(r *AnalyzeResponse) string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "Analyzed %d modules from %d descriptors in %s\n",
		s.Summary.Modules, s.Summary.Descriptors, time.Duration(s.DurationMs)*time.Millisecond)
	if len(s.Failed) > 0 {
		fmt.Fprintf(&b, "Skipped %d unparsable descriptor(s)\n", len(s.Failed))
	}
	fmt.Fprintf(&b, "Applications: %d  Shared: %d  High fan-in: %d  Cycles: %d\n",
		s.Summary.Applications, s.Summary.Shared, s.Summary.HighFanIn, s.Summary.Cycles)
	if r.Cycles != "" {
		b.WriteString(r.Cycles)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Done. Reports written to: %s\n", r.OutDir)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "- %s\n", f)
		if strings.HasSuffix(f, report.GraphFile) {
			fmt.Fprintf(&b, "  (render: dot -Tpng %s -o graph.png)\n", report.GraphFile)
		}
	}
	if r.StoredAs != "" {
		fmt.Fprintf(&b, "\nStored as run %s\n", r.StoredAs)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CyclesResponse is the output of `cycles`.
type CyclesResponse struct {
	Count   int        `json:"count" yaml:"count"`
	Cycles  [][]string `json:"cycles" yaml:"cycles"`
	Summary string     `json:"-" yaml:"-"`
}

func formatCyclesHuman(r *CyclesResponse) string {
	return strings.TrimRight(r.Summary, "\n")
}

// ModulesResponse is the output of `modules`.
type ModulesResponse struct {
	Root    string               `json:"root" yaml:"root"`
	Modules []report.ModuleEntry `json:"modules" yaml:"modules"`
}

func formatModulesHuman(r *ModulesResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d modules under %s\n\n", len(r.Modules), r.Root)

	width := len("MODULE")
	for _, m := range r.Modules {
		width = max(width, len(m.GAV))
	}
	fmt.Fprintf(&b, "%-*s  %-10s  %-12s  %5s  %s\n", width, "MODULE", "PACKAGING", "ROLE", "FANIN", "PATH")
	for _, m := range r.Modules {
		fmt.Fprintf(&b, "%-*s  %-10s  %-12s  %5d  %s\n", width, m.GAV, m.Packaging, m.Role, m.FanIn, m.PomPath)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRunsHuman(runs []*storage.Run) string {
	if len(runs) == 0 {
		return "No stored runs. Use 'monosplit analyze --store' to record one."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s  %-20s  %7s  %5s  %4s  %6s  %6s  %s\n",
		"RUN", "STARTED", "MODULES", "EDGES", "APPS", "SHARED", "CYCLES", "ROOT")
	for _, r := range runs {
		fmt.Fprintf(&b, "%-8s  %-20s  %7d  %5d  %4d  %6d  %6d  %s\n",
			shortID(r.RunID), r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Modules, r.Edges, r.Applications, r.Shared, r.Cycles, r.Root)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RunDetailResponse is the output of `runs show`.
type RunDetailResponse struct {
	Run     *storage.Run        `json:"run" yaml:"run"`
	Modules []storage.ModuleRow `json:"modules" yaml:"modules"`
	Cycles  []string            `json:"cycles" yaml:"cycles"`
}

func formatRunDetailHuman(r *RunDetailResponse) string {
	var b strings.Builder
	run := r.Run
	fmt.Fprintf(&b, "Run %s\n", run.RunID)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Root:         %s\n", run.Root)
	fmt.Fprintf(&b, "Started:      %s (%dms)\n", run.StartedAt.Local().Format(time.RFC3339), run.DurationMs)
	fmt.Fprintf(&b, "Descriptors:  %d (%d failed)\n", run.Descriptors, run.Failed)
	fmt.Fprintf(&b, "Modules:      %d, %d edges\n", run.Modules, run.Edges)
	fmt.Fprintf(&b, "Applications: %d, %d shared libraries\n", run.Applications, run.Shared)
	fmt.Fprintf(&b, "Warnings:     %d\n", run.Warnings)
	if run.DeclarationChecksum != "" {
		fmt.Fprintf(&b, "Declaration:  %s\n", run.DeclarationChecksum)
	}

	b.WriteString("\nModules:\n")
	for _, m := range r.Modules {
		fmt.Fprintf(&b, "  %-12s %s\n", m.Role, m.GAV)
	}
	if len(r.Cycles) > 0 {
		b.WriteString("\nCycles:\n")
		for _, c := range r.Cycles {
			fmt.Fprintf(&b, "  %s\n", c)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
