package website

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrAlreadyExists = errors.New("url already exists")
	ErrConflict      = errors.New("conflicting write")
	ErrNotFound      = errors.New("url not found")
	ErrNetwork       = errors.New("network error")
	ErrEmptyBody     = errors.New("empty response body")
	ErrCheckFailed   = errors.New("check failed")
	ErrStorage       = errors.New("storage error")
)

// Reason tells the caller why a check could not be recorded.
type Reason string

const (
	ReasonNotFound    Reason = "not_found"
	ReasonCheckFailed Reason = "check_failed"
	ReasonStorage     Reason = "storage"
)

// CheckError is returned by RunCheck. It matches the sentinel for its
// Reason as well as the wrapped cause under errors.Is.
type CheckError struct {
	Reason Reason
	URLID  int64
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check url %d: %s: %v", e.URLID, e.Reason, e.Err)
}

func (e *CheckError) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *CheckError) sentinel() error {
	switch e.Reason {
	case ReasonNotFound:
		return ErrNotFound
	case ReasonCheckFailed:
		return ErrCheckFailed
	default:
		return ErrStorage
	}
}

// ReasonOf returns the reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Reason, true
	}

	return "", false
}
