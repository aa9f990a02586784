package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	// CodeValidation covers invalid configuration: counts, bands, rates.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodePrecondition covers violated generation preconditions, such as an
	// empty dimension set handed to the order generator.
	CodePrecondition Code = "PRECONDITION_FAILED"
	// CodeSinkUnavailable covers landing-sink upload failures. The run
	// continues for other days and exits with partial success.
	CodeSinkUnavailable Code = "SINK_UNAVAILABLE"
	// CodeStateCorruption covers broken internal invariants, such as an
	// order id collision outside the duplicate defect category.
	CodeStateCorruption Code = "STATE_CORRUPTION"
	CodeDependency      Code = "DEPENDENCY_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
)

type Metadata struct {
	// Retryable marks failures worth one more attempt before skipping.
	Retryable bool
	// Fatal marks failures that must abort the run rather than degrade it.
	Fatal         bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:     false,
		Fatal:         true,
		PublicMessage: "configuration validation failed",
	},
	CodePrecondition: {
		Retryable:     false,
		Fatal:         true,
		PublicMessage: "generation precondition violated",
	},
	CodeSinkUnavailable: {
		Retryable:     true,
		Fatal:         false,
		PublicMessage: "landing sink unavailable",
	},
	CodeStateCorruption: {
		Retryable:     false,
		Fatal:         true,
		PublicMessage: "internal state corruption",
	},
	CodeDependency: {
		Retryable:     true,
		Fatal:         false,
		PublicMessage: "dependency unavailable",
	},
	CodeInternal: {
		Retryable:     false,
		Fatal:         true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsFatal reports whether the error should abort the run outright. Untyped
// errors are treated as fatal.
func IsFatal(err error) bool {
	typed := As(err)
	if typed == nil {
		return err != nil
	}
	return MetadataFor(typed.Code()).Fatal
}
