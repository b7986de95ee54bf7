package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrMissingMediaInformation = errors.New("missing media information")
	ErrUnknownSource           = errors.New("unknown source")
	ErrNotAvailable            = errors.New("server not available")
	ErrConfigNotFound          = errors.New("config file not found")
	ErrInvalidConfig           = errors.New("invalid configuration")
)

// CommandError wraps an error with a user-friendly suggestion.
type CommandError struct {
	Err        error
	Suggestion string
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CommandError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Suggestion != "" {
		return cmdErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrMissingMediaInformation) {
		return "Check the media URI and enqueue mode; playlists and directories must resolve to at least one track"
	}

	if errors.Is(err, ErrUnknownSource) {
		return "Run 'mopctl sources' to see the playlists the server knows about"
	}

	if errors.Is(err, ErrNotAvailable) || strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") || strings.Contains(errStr, "timeout") {
		return "Check that the Mopidy server is running and reachable, or run 'mopctl discover'"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'mopctl init' to set up your configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
