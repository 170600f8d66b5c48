package cerr

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/kazz187/leavepush/pkg/clog"
)

type Error struct {
	Code   Code
	Msg    string // returned to the client together with Code
	Reason string // optional machine readable reason, replaces Code in the response body
	Err    error  // logged, never returned to the client
	Stack  string
}

// NewError builds a coded error. A stack trace is captured for codes that log
// at error level.
func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.HTTPStatusToLevel(code.HTTPCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

// WithReason sets the reason string reported to clients instead of the code name.
func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) reason() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Code.String()
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}
