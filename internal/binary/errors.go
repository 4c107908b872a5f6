package binary

import (
	"fmt"
	"strings"
)

// DownloadError reports a non-200 response.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: unexpected status code: %d", e.URL, e.StatusCode)
}

// ChecksumMismatchError reports an archive whose digest matched none of the
// accepted digests.
type ChecksumMismatchError struct {
	Path     string
	Computed string
	Expected []string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s:\nactual:   %s\nexpected: %s",
		e.Path, e.Computed, strings.Join(e.Expected, ", "))
}

// SignatureError reports a checksum manifest that failed authentication or
// does not list the archive.
type SignatureError struct {
	Path string
	Err  error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature verification failed for %s: %v", e.Path, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a missing download or a failed extraction.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("unable to extract tflint from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RelocationError reports a failure to move the real binary aside.
type RelocationError struct {
	From string
	To   string
	Err  error
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("unable to move %s to %s: %v", e.From, e.To, e.Err)
}

func (e *RelocationError) Unwrap() error {
	return e.Err
}

// InstallError reports a failure to install the wrapper shim.
type InstallError struct {
	Source string
	Target string
	Err    error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("unable to copy %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
