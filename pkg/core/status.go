package core

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone      ErrorCategory = iota // No error
	ErrCategorySetup                          // Engine/browser launch, navigation to base URL
	ErrCategoryConfig                         // Invalid configuration, missing required field
	ErrCategoryElement                        // Element did not appear within the wait budget
	ErrCategoryAssertion                      // Expected state did not match observed state
	ErrCategoryTimeout                        // Wait condition timed out
	ErrCategoryTeardown                       // Closing engine resources failed
	ErrCategoryUnknown                        // Error outside the taxonomy
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategorySetup:
		return "setup"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryElement:
		return "element"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}
