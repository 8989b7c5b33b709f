package binary

import (
	"errors"
	"fmt"
)

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates nothing was configured to verify against
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates a SHA256 digest comparison
	VerificationSHA256
	// VerificationGPG indicates an OpenPGP detached signature check
	VerificationGPG
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Expectation describes what a downloaded archive is checked against.
// Empty fields are skipped.
type Expectation struct {
	// SHA256 is the expected hex digest of the archive
	SHA256 string
	// SignaturePath is a detached signature of the archive on disk
	SignaturePath string
	// KeyringPath is the OpenPGP public keyring used for SignaturePath
	KeyringPath string
}

// Empty reports whether nothing is configured.
func (e Expectation) Empty() bool {
	return e.SHA256 == "" && e.SignaturePath == ""
}

// VerificationResult contains the outcome of a verification attempt
type VerificationResult struct {
	Method  VerificationMethod
	Success bool
	// Digest is the archive's SHA256, computed whenever verification ran
	Digest string
	Error  error
}

// HTTPStatusError is returned when the server answers with anything but 200.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Temporary reports whether retrying can help.
func (e *HTTPStatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// ErrEntryNotFound is returned when an archive does not contain the requested entry.
var ErrEntryNotFound = errors.New("entry not found in archive")
