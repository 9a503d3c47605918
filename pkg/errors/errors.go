package errors

import (
	"errors"
	"fmt"
)

// Error represents an mcli error with context
type Error struct {
	// Code is the error code (e.g., "CONFIG_PARSE_ERROR")
	Code string
	// Message is the human-readable error message
	Message string
	// Cause describes why the error occurred
	Cause string
	// Action suggests what the user should do
	Action string
	// Underlying is the wrapped error
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches another *Error by code, so errors.Is(err, &Error{Code: X}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates a new Error
func New(code, message, cause, action string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Action:  action,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code, message, cause, action string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Cause:      cause,
		Action:     action,
		Underlying: err,
	}
}

// Common error codes
const (
	// Configuration errors
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigParseError = "CONFIG_PARSE_ERROR"
	ErrCodeConfigValidation = "CONFIG_VALIDATION_ERROR"
	ErrCodeConfigPermission = "CONFIG_PERMISSION_ERROR"

	// Metadata (help / API doc documents)
	ErrCodeMetadataNotFound   = "METADATA_NOT_FOUND"
	ErrCodeMetadataParseError = "METADATA_PARSE_ERROR"

	// Device selection
	ErrCodeDeviceUnknown = "DEVICE_UNKNOWN"

	// Command table
	ErrCodeRegistryDuplicate = "REGISTRY_DUPLICATE"
	ErrCodeRegistryShape     = "REGISTRY_SHAPE"

	// Session
	ErrCodeScriptNotFound = "SCRIPT_NOT_FOUND"
	ErrCodeHistory        = "HISTORY_ERROR"
)

// Common error constructors

// ConfigNotFound creates a config not found error
func ConfigNotFound(path string) *Error {
	return New(
		ErrCodeConfigNotFound,
		fmt.Sprintf("Configuration file not found: %s", path),
		"The specified configuration file does not exist",
		"Check the file path or run without --config to use the built-in simulator profile",
	)
}

// ConfigParseError creates a config parse error
func ConfigParseError(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeConfigParseError,
		fmt.Sprintf("Failed to parse configuration file: %s", path),
		"The configuration file contains invalid syntax or unknown fields",
		"Review the configuration file syntax and fix any errors",
	)
}

// MetadataNotFound creates an error for a missing help or API document
func MetadataNotFound(path string) *Error {
	return New(
		ErrCodeMetadataNotFound,
		fmt.Sprintf("Metadata document not found: %s", path),
		"No help document exists for the selected chip family",
		"Set metadata.dir to a directory holding <family>.json or clear it to use the embedded documents",
	)
}

// MetadataParseError creates an error for a malformed help or API document
func MetadataParseError(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeMetadataParseError,
		fmt.Sprintf("Failed to parse metadata document: %s", path),
		"The document is not valid JSON or does not follow the module/subcommand layout",
		"Validate the document with a JSON linter",
	)
}

// DeviceUnknown creates an error for an unrecognised family or device ID
func DeviceUnknown(what string) *Error {
	return New(
		ErrCodeDeviceUnknown,
		fmt.Sprintf("Unknown device: %s", what),
		"The chip family or device ID is not in the supported device table",
		"Use one of the families listed by 'mcli version'",
	)
}

// DuplicateCommand creates an error for a command registered twice
func DuplicateCommand(key string) *Error {
	return New(
		ErrCodeRegistryDuplicate,
		fmt.Sprintf("Command registered twice: %s", key),
		"Two table entries fold to the same module/subcommand pair",
		"Rename or remove one of the entries",
	)
}

// ShapeMismatch creates an error for a target whose signature disagrees with its shape
func ShapeMismatch(key string, err error) *Error {
	return Wrap(
		err,
		ErrCodeRegistryShape,
		fmt.Sprintf("Command target does not match its argument shape: %s", key),
		"The function signature and the declared argument kinds differ",
		"Fix the shape or the function so that they agree",
	)
}

// ScriptNotFound creates an error for a script that cannot be opened
func ScriptNotFound(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeScriptNotFound,
		fmt.Sprintf("Cannot open script file: %s", path),
		"The file does not exist or is not readable",
		"Check the path and file permissions",
	)
}

// HistoryError creates a history store error
func HistoryError(message string, err error) *Error {
	return Wrap(
		err,
		ErrCodeHistory,
		message,
		"The command history database could not be accessed",
		"Check history.path in the configuration or disable history",
	)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
