package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"monosplit/internal/errors"
)

// errCyclesFound is returned by `cycles --fail` when the graph is cyclic.
var errCyclesFound = stderrors.New("internal dependency cycles found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// exitCode maps an error to a process exit status.
func exitCode(err error) int {
	if stderrors.Is(err, errCyclesFound) {
		return 4
	}
	switch errors.CodeOf(err) {
	case errors.NoDescriptors, errors.NoParsableDescriptors:
		return 2
	case errors.ConfigInvalid:
		return 3
	default:
		return 1
	}
}

// printError writes err and any suggested fixes.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return
	}
	for _, fix := range e.SuggestedFixes {
		switch fix.Type {
		case errors.RunCommand:
			fmt.Fprintf(w, "  try: %s  (%s)\n", fix.Command, fix.Description)
		case errors.EditFile:
			fmt.Fprintf(w, "  edit %s: %s\n", fix.Path, fix.Description)
		}
	}
}
