package acquire

// Outcome is the final state of EnsureExecutable.
type Outcome int

const (
	// OutcomeUnavailable means every strategy failed. The caller continues without the executable.
	OutcomeUnavailable Outcome = iota
	// OutcomeAlready means the executable was present before anything ran.
	OutcomeAlready
	// OutcomeInstalled means a strategy put the executable in place.
	OutcomeInstalled
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeAlready:
		return "already"
	case OutcomeInstalled:
		return "installed"
	default:
		return "unavailable"
	}
}

// Strategy names reported in Result.Strategy for the two checks.
const (
	SourceInstallDir = "install-dir"
	SourcePath       = "path"
)

// Result describes what EnsureExecutable did.
type Result struct {
	Outcome Outcome
	// Path is the resolved executable; empty when unavailable
	Path string
	// Strategy is the check or strategy that produced Path
	Strategy string
	// Warnings were also sent to the configured Warner
	Warnings []string
	Failures []Failure
}
