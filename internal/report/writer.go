// Package report writes analysis results as CSV tables, a DOT graph, a
// markdown proposal and structured JSON or YAML snapshots.
package report

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"monosplit/internal/analysis"
	"monosplit/internal/config"
	"monosplit/internal/errors"
)

// Writer writes the selected formats of a result into Dir.
type Writer struct {
	Dir    string
	Output config.OutputConfig
	Logger *slog.Logger
}

// NewWriter creates a writer for dir using the output settings of cfg.
func NewWriter(dir string, cfg config.OutputConfig, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{Dir: dir, Output: cfg, Logger: logger}
}

type output struct {
	name  string
	write func(io.Writer, *analysis.Result) error
}

// Write writes every enabled output and returns the written paths in order.
// The code overlap table is only written when the source scan ran.
func (w *Writer) Write(res *analysis.Result) ([]string, error) {
	var outputs []output
	if w.Output.HasFormat(config.FormatMarkdown) {
		outputs = append(outputs, output{ProposalFile, func(out io.Writer, r *analysis.Result) error {
			_, err := io.WriteString(out, Proposal(r))
			return err
		}})
	}
	if w.Output.HasFormat(config.FormatDOT) {
		outputs = append(outputs, output{GraphFile, WriteDOT})
	}
	if w.Output.HasFormat(config.FormatCSV) {
		outputs = append(outputs, output{ModulesFile, WriteModulesCSV}, output{DepsFile, WriteDepsCSV})
		if res.SourceScanned {
			outputs = append(outputs, output{OverlapFile, WriteOverlapCSV})
		}
	}
	if w.Output.HasFormat(config.FormatJSON) {
		if w.Output.Compress {
			outputs = append(outputs, output{JSONFile + ".zst", func(out io.Writer, r *analysis.Result) error {
				return EncodeJSONZstd(out, NewSnapshot(r))
			}})
		} else {
			outputs = append(outputs, output{JSONFile, func(out io.Writer, r *analysis.Result) error {
				return EncodeJSON(out, NewSnapshot(r))
			}})
		}
	}
	if w.Output.HasFormat(config.FormatYAML) {
		outputs = append(outputs, output{YAMLFile, func(out io.Writer, r *analysis.Result) error {
			return EncodeYAML(out, NewSnapshot(r))
		}})
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, errors.New(errors.OutputFailed, "failed to create output directory "+w.Dir, err)
	}

	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		p := filepath.Join(w.Dir, o.name)
		if err := writeFile(p, res, o.write); err != nil {
			return written, errors.New(errors.OutputFailed, "failed to write "+p, err)
		}
		w.Logger.Debug("Wrote report", "path", p)
		written = append(written, p)
	}
	return written, nil
}

func writeFile(path string, res *analysis.Result, fn func(io.Writer, *analysis.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw, res); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return f.Close()
}
