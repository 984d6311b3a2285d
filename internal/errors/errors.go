package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NoDescriptors indicates discovery found no descriptor files under the root
	NoDescriptors ErrorCode = "NO_DESCRIPTORS"
	// NoParsableDescriptors indicates descriptors were found but none parsed
	NoParsableDescriptors ErrorCode = "NO_PARSABLE_DESCRIPTORS"
	// DescriptorMalformed indicates a single descriptor could not be parsed
	DescriptorMalformed ErrorCode = "DESCRIPTOR_MALFORMED"
	// ParentUnresolved indicates a declared parent was not found at its expected location
	ParentUnresolved ErrorCode = "PARENT_UNRESOLVED"
	// ParentCyclic indicates a descriptor's parent chain loops back on itself
	ParentCyclic ErrorCode = "PARENT_CYCLIC"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// DeclarationInvalid indicates the declaration file could not be read
	DeclarationInvalid ErrorCode = "DECLARATION_INVALID"
	// OutputFailed indicates a report artifact could not be written
	OutputFailed ErrorCode = "OUTPUT_FAILED"
	// StorageFailed indicates the run history database failed
	StorageFailed ErrorCode = "STORAGE_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Error represents a monosplit error with code, message, and suggestions
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new Error with the default suggested fixes for its code
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a new Error without a cause, formatting the message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Fatal reports whether the error must stop the whole run.
func (e *Error) Fatal() bool {
	return IsFatal(e.Code)
}

// IsFatal reports whether an error code terminates an analysis run.
// Everything else degrades to a warning.
func IsFatal(code ErrorCode) bool {
	switch code {
	case NoDescriptors, NoParsableDescriptors:
		return true
	default:
		return false
	}
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or InternalError.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NoDescriptors: {
		{
			Type:        RunCommand,
			Command:     "monosplit analyze --repo <path-to-reactor-root>",
			Description: "Point --repo at the directory containing the root pom.xml",
		},
	},
	NoParsableDescriptors: {
		{
			Type:        RunCommand,
			Command:     "monosplit analyze -vv",
			Description: "Re-run with debug logging to see each parse failure",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditFile,
			Path:        ".monosplit/config.json",
			Description: "Fix the reported field or delete the file to use defaults",
		},
	},
	DeclarationInvalid: {
		{
			Type:        EditFile,
			Path:        "MONOSPLIT.toml",
			Description: "Fix the TOML syntax of the declaration file",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
