package acquire

import (
	"os"
	"path/filepath"

	"github.com/mwangiiharun/hermes/internal/runner"
)

// Probe looks for one executable. It lives for a single acquisition.
type Probe struct {
	Name        string
	SearchPaths []string
	// ResolvedPath is set by the first successful check
	ResolvedPath string
}

// InDir reports whether dir contains a regular file called Name.
func (p *Probe) InDir(dir string) bool {
	if dir == "" {
		return false
	}
	candidate := filepath.Join(dir, p.Name)
	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	p.ResolvedPath = candidate
	return true
}

// Lookup reports whether Name resolves to an executable on SearchPaths.
func (p *Probe) Lookup() bool {
	path, err := runner.LookPath(p.Name, p.SearchPaths)
	if err != nil {
		return false
	}
	p.ResolvedPath = path
	return true
}
