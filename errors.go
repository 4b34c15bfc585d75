package vmhub

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrLoginFailed  = errors.New("login failed")
	ErrAccessDenied = errors.New("access denied")
	ErrHTTP         = errors.New("http error")
	ErrDecode       = errors.New("decode error")
)

// LoginFailedError is returned when the login response is empty or can not be decoded
type LoginFailedError struct {
	StatusCode int
	Header     http.Header
	Content    []byte
	Reason     string
}

func (e *LoginFailedError) Error() string {
	if len(e.Content) == 0 {
		return fmt.Sprintf("login failed: %s (status %d, headers %v)", e.Reason, e.StatusCode, e.Header)
	}
	return fmt.Sprintf("login failed: %s - %q", e.Reason, e.Content)
}

func (e *LoginFailedError) Is(target error) bool {
	return target == ErrLoginFailed
}

// AccessDeniedError is returned on HTTP 401 once the re-login budget is used up
// or when the hub was not logged in.
type AccessDeniedError struct {
	Path string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Path)
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// HTTPError is returned for any non 2xx status that is not retried
type HTTPError struct {
	Path       string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request %s failed with status code: %d", e.Path, e.StatusCode)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// DecodeError carries the raw content which could not be decoded
type DecodeError struct {
	Op      string
	Content string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: can not decode %q", e.Op, e.Content)
	}
	return fmt.Sprintf("%s: can not decode %q - %s", e.Op, e.Content, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
