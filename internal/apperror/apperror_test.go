// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"testing"
)

// TABLE-DRIVEN TESTS:
// This is Go's idiomatic pattern for testing multiple cases.
// Instead of writing separate test functions, we define a slice of test cases
// and loop over them. Benefits:
// - Adding a new test case = adding one struct to the slice
// - Every case gets a name (shows up in test output)
// - DRY — the assertion logic is written once

func TestErrorsIs(t *testing.T) {
	// Each test case checks that errors.Is() correctly identifies the error type
	tests := []struct {
		name      string // Descriptive name for test output
		err       error  // The error to test
		target    error  // What we expect it to match
		wantMatch bool   // Should errors.Is() return true?
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "42"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "bob@example.com"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "AccountInactive wraps ErrAccountInactive",
			err:       AccountInactive("bob@example.com"),
			target:    ErrAccountInactive,
			wantMatch: true,
		},
		{
			name:      "SelfModification wraps ErrSelfModification",
			err:       SelfModification("delete"),
			target:    ErrSelfModification,
			wantMatch: true,
		},
		{
			name:      "ResetInvalid wraps ErrResetInvalid",
			err:       ResetInvalid(),
			target:    ErrResetInvalid,
			wantMatch: true,
		},
		{
			name:      "UnknownAccount wraps ErrUnknownAccount",
			err:       UnknownAccount("bob@example.com"),
			target:    ErrUnknownAccount,
			wantMatch: true,
		},
		{
			name:      "FeatureDisabled wraps ErrFeatureDisabled",
			err:       FeatureDisabled("share"),
			target:    ErrFeatureDisabled,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("user", "42"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ResetInvalid does NOT match ErrUnknownAccount",
			err:       ResetInvalid(),
			target:    ErrUnknownAccount,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrAccountInactive",
			err:       InvalidCredentials(),
			target:    ErrAccountInactive,
			wantMatch: false,
		},
	}

	// t.Run() creates a sub-test for each case.
	// Output looks like: TestErrorsIs/NotFound_wraps_ErrNotFound
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				// t.Errorf marks the test as failed but continues running other tests
				// (vs t.Fatalf which stops immediately)
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "42"),
			wantMessage: "user not found with id 42",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("user", "bob@example.com"),
			wantMessage: "user conflict with id bob@example.com",
		},
		{
			name:        "InvalidCredentials does not say which part was wrong",
			err:         InvalidCredentials(),
			wantMessage: "invalid email or password",
		},
		{
			name:        "SelfModification names the action",
			err:         SelfModification("delete"),
			wantMessage: "cannot delete your own account",
		},
		{
			name:        "FeatureDisabled names the feature",
			err:         FeatureDisabled("share"),
			wantMessage: "the share feature is currently disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// .Error() should return the human-readable message
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	// Verify that Unwrap() returns the underlying sentinel error.
	// This is what makes errors.Is() work — it "unwraps" the chain.
	err := NotFound("user", "42")
	unwrapped := err.Unwrap()

	if unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	// Verify that the Field is set correctly for validation errors.
	// This lets handlers tell the frontend WHICH field was invalid.
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
