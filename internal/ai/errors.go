package ai

import "errors"

// ErrBackend matches every *BackendError.
var ErrBackend = errors.New("generation backend failure")

// ErrEmptyResponse is wrapped when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// BackendError wraps the provider's own error unchanged.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

func backendErr(provider string, err error) error {
	return &BackendError{Provider: provider, Err: err}
}
