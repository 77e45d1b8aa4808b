package usecase

import "fmt"

type ErrorCode string

const (
	ErrorMissingSlot       ErrorCode = "MISSING_SLOT"
	ErrorLostContext       ErrorCode = "LOST_CONTEXT"
	ErrorInvalidEnumValue  ErrorCode = "INVALID_ENUM_VALUE"
	ErrorUnrecognizedTime  ErrorCode = "UNRECOGNIZED_TIME_FORMAT"
	ErrorNotFound          ErrorCode = "NOT_FOUND"
	ErrorDownstreamFailure ErrorCode = "DOWNSTREAM_FAILURE"
	ErrorUnbound           ErrorCode = "UNBOUND"
)

// Error is a failed turn. Speech, when set, is what the user hears;
// otherwise a fixed message for Code is used.
type Error struct {
	Code   ErrorCode
	Reason string
	Speech string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

func (e *Error) saying(format string, args ...any) *Error {
	e.Speech = fmt.Sprintf(format, args...)
	return e
}

var defaultSpeech = map[ErrorCode]string{
	ErrorMissingSlot:       "I didn't catch that. Please try again.",
	ErrorLostContext:       "I lost track of which pill we were scheduling. Please start over.",
	ErrorInvalidEnumValue:  "That value is not valid.",
	ErrorUnrecognizedTime:  "I couldn't understand that time. Please say something like 8 AM or 2:30 PM.",
	ErrorNotFound:          "I couldn't find that.",
	ErrorDownstreamFailure: "There was an error processing your request. Try again later.",
	ErrorUnbound:           "No smart pill dispensers are configured for your account.",
}

// speech returns the user-facing text for e.
func (e *Error) speech() string {
	if e.Speech != "" {
		return e.Speech
	}
	return defaultSpeech[e.Code]
}
