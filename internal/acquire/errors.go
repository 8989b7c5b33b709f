package acquire

import (
	"errors"
	"fmt"
)

// Kind classifies why a strategy failed.
type Kind int

const (
	// KindUnexpected is anything not covered by another kind, including panics.
	KindUnexpected Kind = iota
	// KindRemediation means the package manager could not install the executable.
	KindRemediation
	// KindNetwork means the archive could not be fetched.
	KindNetwork
	// KindArchive means extraction failed or produced no executable.
	KindArchive
	// KindVerification means the archive did not match its checksum or signature.
	KindVerification
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindRemediation:
		return "remediation"
	case KindNetwork:
		return "network"
	case KindArchive:
		return "archive"
	case KindVerification:
		return "verification"
	default:
		return "unexpected"
	}
}

// Error is a classified strategy failure.
type Error struct {
	Kind Kind
	// Op is what was being attempted, e.g. "download archive"
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Failure is one strategy's unsuccessful attempt.
type Failure struct {
	Strategy string
	Err      error
}

// Kind returns the failure classification.
func (f Failure) Kind() Kind {
	return KindOf(f.Err)
}

// warning renders the user-visible line for a failure.
func (f Failure) warning(name string) string {
	switch f.Kind() {
	case KindRemediation:
		return fmt.Sprintf("Could not install %s with the package manager: %v", name, f.Err)
	case KindNetwork:
		return fmt.Sprintf("Failed to download %s: %v", name, f.Err)
	case KindArchive:
		return fmt.Sprintf("Failed to extract %s: %v", name, f.Err)
	case KindVerification:
		return fmt.Sprintf("Downloaded %s archive failed verification: %v", name, f.Err)
	default:
		return fmt.Sprintf("Unexpected error while installing %s (%s): %v", name, f.Strategy, f.Err)
	}
}
