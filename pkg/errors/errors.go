// Package errors provides structured error handling for green.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess     = 0 // Successful execution
	ExitGeneral     = 1 // General/unknown error
	ExitInput       = 2 // Invalid input
	ExitAuth        = 3 // Authentication or backend refusal
	ExitNotFound    = 4 // Required persisted state is missing
	ExitPermission  = 5 // Refused to touch protected state
	ExitUnsupported = 6 // Operation not implemented by the active backend
	ExitDevice      = 7 // Hardware signer unavailable
)

// GreenError is the structured error type for green.
type GreenError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *GreenError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *GreenError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for GreenError.
func (e *GreenError) Is(target error) bool {
	var t *GreenError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &GreenError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &GreenError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// ErrNotFound means required persisted state (mnemonic, pin data) is absent.
	ErrNotFound = &GreenError{
		Code:       "NOT_FOUND",
		Message:    "no stored credentials found",
		Suggestion: "call create, or setmnemonic to import an existing wallet",
		ExitCode:   ExitNotFound,
	}

	// ErrRefusedOverwrite protects an existing read-only mnemonic file.
	ErrRefusedOverwrite = &GreenError{
		Code:       "REFUSED_OVERWRITE",
		Message:    "refusing to overwrite mnemonic file",
		Suggestion: "first backup and then delete or change file permissions",
		ExitCode:   ExitPermission,
	}

	ErrInvalidMnemonic = &GreenError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic",
		ExitCode: ExitInput,
	}

	ErrUnsupportedAction = &GreenError{
		Code:     "UNSUPPORTED_ACTION",
		Message:  "action not supported by this authenticator",
		ExitCode: ExitUnsupported,
	}

	ErrUnsupportedInputType = &GreenError{
		Code:     "UNSUPPORTED_INPUT_TYPE",
		Message:  "transaction input type cannot be signed",
		ExitCode: ExitUnsupported,
	}

	ErrDeviceUnavailable = &GreenError{
		Code:    "DEVICE_UNAVAILABLE",
		Message: "no usable hardware device",
		Suggestion: "check that a device is attached, udev rules and drivers are installed, " +
			"cables are connected and the device is unlocked (for example by entering a PIN)",
		ExitCode: ExitDevice,
	}

	// ErrRemote wraps an error status reported by the wallet backend.
	ErrRemote = &GreenError{
		Code:     "REMOTE_ERROR",
		Message:  "backend reported an error",
		ExitCode: ExitAuth,
	}

	ErrNetworkError = &GreenError{
		Code:     "NETWORK_ERROR",
		Message:  "backend communication failed",
		ExitCode: ExitGeneral,
	}

	ErrMainnetRefused = &GreenError{
		Code:     "MAINNET_REFUSED",
		Message:  "this tool is not currently suitable for use on mainnet",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &GreenError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted file",
		ExitCode: ExitAuth,
	}

	// Config-specific errors.
	ErrConfigInvalid = &GreenError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new GreenError with the given code and message.
func New(code, message string) *GreenError {
	return &GreenError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Remote builds an ErrRemote carrying the backend's error payload verbatim.
func Remote(payload string) error {
	return &GreenError{
		Code:     ErrRemote.Code,
		Message:  fmt.Sprintf("%s: %s", ErrRemote.Message, payload),
		Details:  map[string]string{"payload": payload},
		ExitCode: ErrRemote.ExitCode,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ge *GreenError
	if errors.As(err, &ge) {
		return &GreenError{
			Code:       ge.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ge.Message),
			Details:    ge.Details,
			Suggestion: ge.Suggestion,
			Cause:      ge.Cause,
			ExitCode:   ge.ExitCode,
		}
	}

	return &GreenError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ge *GreenError
	if errors.As(err, &ge) {
		merged := make(map[string]string, len(ge.Details)+len(details))
		for k, v := range ge.Details {
			merged[k] = v
		}
		for k, v := range details {
			merged[k] = v
		}
		return &GreenError{
			Code:       ge.Code,
			Message:    ge.Message,
			Details:    merged,
			Suggestion: ge.Suggestion,
			Cause:      ge.Cause,
			ExitCode:   ge.ExitCode,
		}
	}

	return &GreenError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ge *GreenError
	if errors.As(err, &ge) {
		return &GreenError{
			Code:       ge.Code,
			Message:    ge.Message,
			Details:    ge.Details,
			Suggestion: suggestion,
			Cause:      ge.Cause,
			ExitCode:   ge.ExitCode,
		}
	}

	return &GreenError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// WithCause attaches an underlying error while keeping the sentinel identity.
func WithCause(sentinel *GreenError, cause error) error {
	return &GreenError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ge *GreenError
	if errors.As(err, &ge) {
		return ge.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ge *GreenError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
