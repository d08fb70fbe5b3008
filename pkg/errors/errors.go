package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable machine-readable kind of an error. Codes are what
// the end-of-run summary tallies by, so they must not change between
// releases.
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "unknown"
	ErrInternal     ErrorCode = "internal"
	ErrInvalidInput ErrorCode = "invalid_input"

	// Configuration errors
	ErrConfigNotFound ErrorCode = "config_not_found"
	ErrConfigParse    ErrorCode = "config_parse_error"
	ErrConfigInvalid  ErrorCode = "config_invalid"

	// Source scan errors
	ErrMissingSourceDir ErrorCode = "missing_source_dir"
	ErrFileLoad         ErrorCode = "file_load_error"

	// Flag validation errors
	ErrFormatNotFound ErrorCode = "format_not_found"
	ErrScaleNotValid  ErrorCode = "scale_not_valid"

	// Resolution tagging errors
	ErrTooManyResolutions      ErrorCode = "too_many_resolutions"
	ErrInvalidResolution       ErrorCode = "invalid_resolution"
	ErrInvalidResolutionDir    ErrorCode = "invalid_resolution_directory"

	// Theming errors
	ErrThemeDirNotFound  ErrorCode = "theme_dir_not_found"
	ErrThemeFileNotFound ErrorCode = "theme_file_not_found"
	ErrThemeParse        ErrorCode = "theme_parse_error"
	ErrSVGLoad           ErrorCode = "svg_load_error"
	ErrSVGTheming        ErrorCode = "svg_theming_error"

	// Rasterization errors
	ErrSVGBadDimensions ErrorCode = "svg_bad_dimensions"
	ErrSVGProcessing    ErrorCode = "svg_processing_error"
	ErrNoImageData      ErrorCode = "no_png_data"

	// Overlay errors
	ErrExclusion ErrorCode = "exclusion_error"
	ErrInclusion ErrorCode = "inclusion_error"

	// Pack metadata errors
	ErrMetaNotFound ErrorCode = "mcmeta_not_found"
	ErrMetaParse    ErrorCode = "mcmeta_json_error"

	// Archive errors
	ErrDirCreate    ErrorCode = "directory_creation_error"
	ErrLicenseRead  ErrorCode = "license_read_error"
	ErrZipWrite     ErrorCode = "zip_write_error"
	ErrZipCreate    ErrorCode = "zip_creation_error"
	ErrDuplicatePNG ErrorCode = "duplicate_png"
)

// Severity classifies how an error affects the run. Warnings and regular
// errors are tallied and execution continues with the next unit of work;
// fatal errors abort the run.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying a stable code, a severity, and
// optional key/value details for logging.
type Error struct {
	Code     ErrorCode
	Severity Severity
	Message  string
	Details  map[string]interface{}
	Wrapped  error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches two Errors by code, so callers can use errors.Is with a bare
// New(code, "") sentinel.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates an Error with the given code and message at SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Severity: SeverityError,
		Message:  message,
		Details:  make(map[string]interface{}),
	}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// AsWarning marks the error as a warning and returns it.
func (e *Error) AsWarning() *Error {
	e.Severity = SeverityWarning
	return e
}

// AsFatal marks the error as fatal and returns it.
func (e *Error) AsFatal() *Error {
	e.Severity = SeverityFatal
	return e
}

// WithDetail adds a detail to the error and returns it for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the code from err, or ErrUnknown for foreign errors.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// GetSeverity returns the severity from err. Foreign errors are treated as
// regular errors.
func GetSeverity(err error) Severity {
	var e *Error
	if errors.As(err, &e) {
		return e.Severity
	}
	return SeverityError
}

// Exit statuses by error category, for the CLI surface. The ranges mirror
// the historical script: configuration 4-10, source scan 11-20, flag values
// 21-30, theming 31-40, rasterization 41-50, archives 51-60, exclusions
// 61-70, inclusions 71-80, pack metadata 81-90.
var exitStatuses = map[ErrorCode]int{
	ErrConfigNotFound:    4,
	ErrConfigParse:       6,
	ErrConfigInvalid:     7,
	ErrMissingSourceDir:  11,
	ErrFormatNotFound:    21,
	ErrScaleNotValid:     22,
	ErrThemeDirNotFound:  31,
	ErrThemeFileNotFound: 32,
	ErrThemeParse:        33,
	ErrSVGTheming:        36,
	ErrSVGProcessing:     41,
	ErrDirCreate:         51,
	ErrZipCreate:         54,
	ErrExclusion:         61,
	ErrInclusion:         71,
	ErrMetaNotFound:      81,
	ErrMetaParse:         85,
}

// ExitStatus returns the process exit status for err. Errors outside the
// known categories map to 1.
func ExitStatus(err error) int {
	if status, ok := exitStatuses[GetErrorCode(err)]; ok {
		return status
	}
	return 1
}
