package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Pipeline error codes. Each one is recovered at the handler boundary where
// it is detected; the request halts and the user corrects the input.
const (
	CodeLoadFailure       = "LOAD_FAILURE"
	CodeEmptyDataset      = "EMPTY_DATASET"
	CodeNoNumericColumns  = "NO_NUMERIC_COLUMNS"
	CodeNoColumnsSelected = "NO_COLUMNS_SELECTED"
	CodeInvalidChartSpec  = "INVALID_CHART_SPEC"
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Common error constructors

func LoadFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeLoadFailure, Message: message, Cause: cause}
}

func EmptyDataset() *AppError {
	return New(CodeEmptyDataset, "the uploaded file parsed but contains no data rows")
}

func NoNumericColumns() *AppError {
	return New(CodeNoNumericColumns, "no numerical columns found in the dataset")
}

func NoColumnsSelected() *AppError {
	return New(CodeNoColumnsSelected, "please select at least one numerical column")
}

func InvalidChartSpec(message string) *AppError {
	return New(CodeInvalidChartSpec, message)
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
