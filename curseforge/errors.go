package curseforge

import (
	"errors"
	"fmt"
)

// Sentinel errors for CurseForge API operations.
var (
	// ErrMissingAPIKey is returned when a client is built without an API key.
	ErrMissingAPIKey = errors.New("curseforge API key is not configured")

	// ErrNoDownloadURL is returned when a file is not publicly downloadable.
	ErrNoDownloadURL = errors.New("file has no download URL")

	// ErrHashMismatch is returned when a downloaded file fails verification.
	ErrHashMismatch = errors.New("downloaded file hash mismatch")
)

// RequestError is returned for any non-2xx response. The body is kept verbatim.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *RequestError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("api request %s %s failed: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("api request %s %s failed: status %d, body: %s", e.Method, e.URL, e.StatusCode, string(e.Body))
}

// DecodeError is returned when a response body does not match the expected schema.
type DecodeError struct {
	// Path locates the offending value, e.g. "data.latestFiles[0].hashes".
	Path string
	// Text is the raw value that failed to parse, when one is available.
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	msg := "decode response"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" (value %q)", e.Text)
	}
	return msg + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// URLBuildError is returned when a request URL cannot be composed.
type URLBuildError struct {
	Segments []string
	Err      error
}

func (e *URLBuildError) Error() string {
	return fmt.Sprintf("build url from %q: %v", e.Segments, e.Err)
}

func (e *URLBuildError) Unwrap() error { return e.Err }
