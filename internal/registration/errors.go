package registration

import "errors"

type Kind string

const (
	ValidationError    Kind = "ValidationError"
	PersistenceError   Kind = "PersistenceError"
	ConfigurationError Kind = "ConfigurationError"
)

// Error is a failed submission. Msg is safe to show to the submitter.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Msg + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func validationErr(msg string, err error) *Error {
	return &Error{Kind: ValidationError, Msg: msg, Err: err}
}

func persistenceErr(msg string, err error) *Error {
	return &Error{Kind: PersistenceError, Msg: msg, Err: err}
}

func configurationErr(msg string, err error) *Error {
	return &Error{Kind: ConfigurationError, Msg: msg, Err: err}
}

// KindOf reports the kind of a submission error, or "" for other errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
