package engine

import (
	"errors"
	"fmt"
)

var (
	ErrSettleTimeout = errors.New("page did not settle in time")
	ErrSessionClosed = errors.New("browsing session closed")
)

// ErrorCode classifies an EngineError. Codes travel over the wire unchanged.
type ErrorCode string

const (
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	ErrCodeSession       ErrorCode = "SESSION_ERROR"
	ErrCodeNavigation    ErrorCode = "NAVIGATION"
	ErrCodeMalformedURL  ErrorCode = "MALFORMED_URL"
	ErrCodeSinkConflict  ErrorCode = "SINK_CONFLICT"
)

// EngineError is a classified failure. Details holds string context such as
// the url or path involved.
type EngineError struct {
	Code    ErrorCode
	Msg     string
	Err     error
	Details map[string]string
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is matches another *EngineError by code alone.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && t.Code == e.Code
}

func NewEngineError(code ErrorCode, msg string, err error) *EngineError {
	return &EngineError{Code: code, Msg: msg, Err: err}
}

// WithDetail records key=value and returns e for chaining.
func (e *EngineError) WithDetail(key, value string) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// ConfigurationError reports a request rejected before any network activity.
func ConfigurationError(msg string, err error) *EngineError {
	return NewEngineError(ErrCodeConfiguration, msg, err)
}

// SessionError reports a session snapshot that could not be used.
func SessionError(msg string, err error) *EngineError {
	return NewEngineError(ErrCodeSession, msg, err)
}

// NavigationError reports a page that failed to load or settle.
func NavigationError(url string, err error) *EngineError {
	return NewEngineError(ErrCodeNavigation, "failed to load page", err).WithDetail("url", url)
}

// CodeOf returns the code of the first EngineError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

func IsConfiguration(err error) bool { return CodeOf(err) == ErrCodeConfiguration }
func IsSession(err error) bool       { return CodeOf(err) == ErrCodeSession }
func IsNavigation(err error) bool    { return CodeOf(err) == ErrCodeNavigation }
