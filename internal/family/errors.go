package family

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes family and parameters errors.
type ErrorCode string

const (
	// CodeDuplicateLabel indicates a family with the label already exists.
	CodeDuplicateLabel ErrorCode = "DUPLICATE_LABEL"

	// CodeInvalidDirectoryContents indicates a source directory that is
	// missing or holds something other than regular files.
	CodeInvalidDirectoryContents ErrorCode = "INVALID_DIRECTORY_CONTENTS"

	// CodeParseError indicates a file that could not be parsed as a record.
	CodeParseError ErrorCode = "PARSE_ERROR"

	// CodeDuplicateElement indicates two records for the same element.
	CodeDuplicateElement ErrorCode = "DUPLICATE_ELEMENT"

	// CodeTypeMismatch indicates a value of the wrong type.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeMissingField indicates a required parameters field is absent.
	CodeMissingField ErrorCode = "MISSING_FIELD"

	// CodeNotFound indicates a family, record or element does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeMultipleMatches indicates a broken store invariant: more than one
	// entity where at most one may exist. Not a user error.
	CodeMultipleMatches ErrorCode = "MULTIPLE_MATCHES"

	// CodeValidationError indicates a malformed label or reserved name.
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
)

// Sentinels for errors.Is. An *Error matches the sentinel with its code.
var (
	ErrDuplicateLabel           = &Error{Code: CodeDuplicateLabel}
	ErrInvalidDirectoryContents = &Error{Code: CodeInvalidDirectoryContents}
	ErrParseError               = &Error{Code: CodeParseError}
	ErrDuplicateElement         = &Error{Code: CodeDuplicateElement}
	ErrTypeMismatch             = &Error{Code: CodeTypeMismatch}
	ErrMissingField             = &Error{Code: CodeMissingField}
	ErrNotFound                 = &Error{Code: CodeNotFound}
	ErrMultipleMatches          = &Error{Code: CodeMultipleMatches}
	ErrValidation               = &Error{Code: CodeValidationError}
)

// Error is a failure of a family or parameters operation.
//
// Label, Element and Field are set when the failure concerns a specific
// family, element or parameters field.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	Label   string
	Element string
	Field   string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
