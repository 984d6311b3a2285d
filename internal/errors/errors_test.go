package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(NoDescriptors, "no pom.xml found under /repo", cause)

	if err.Code != NoDescriptors {
		t.Errorf("Code = %v, want %v", err.Code, NoDescriptors)
	}
	if err.Message != "no pom.xml found under /repo" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      DescriptorMalformed,
			message:   "failed to parse a/pom.xml",
			cause:     errors.New("XML syntax error on line 3"),
			wantParts: []string{"DESCRIPTOR_MALFORMED", "failed to parse a/pom.xml", "line 3"},
		},
		{
			name:      "without cause",
			code:      NoParsableDescriptors,
			message:   "no valid pom.xml files could be parsed",
			wantParts: []string{"NO_PARSABLE_DESCRIPTORS", "no valid pom.xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	fatal := map[ErrorCode]bool{
		NoDescriptors:         true,
		NoParsableDescriptors: true,
		DescriptorMalformed:   false,
		ParentUnresolved:      false,
		ParentCyclic:          false,
		OutputFailed:          false,
	}
	for code, want := range fatal {
		if got := IsFatal(code); got != want {
			t.Errorf("IsFatal(%s) = %v, want %v", code, got, want)
		}
	}
}

func TestIsAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", Newf(NoDescriptors, "no pom.xml found under %s", "/x"))

	if !Is(wrapped, NoDescriptors) {
		t.Error("Is should see through fmt wrapping")
	}
	if Is(wrapped, OutputFailed) {
		t.Error("Is matched the wrong code")
	}
	if got := CodeOf(wrapped); got != NoDescriptors {
		t.Errorf("CodeOf = %s, want %s", got, NoDescriptors)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %s, want %s", got, InternalError)
	}
}

func TestWithDetails(t *testing.T) {
	err := Newf(ConfigInvalid, "bad").WithDetails(map[string]string{"field": "report.maxCycles"})
	if err.Details == nil {
		t.Fatal("expected details")
	}
	if err.Fatal() {
		t.Error("config errors are not run-fatal")
	}
}
