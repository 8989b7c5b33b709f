package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwangiiharun/hermes/internal/platform"
)

// HostEnvironment is the ambient state acquisition depends on, passed in
// explicitly so nothing below reads the process environment.
type HostEnvironment struct {
	Arch        platform.Arch
	SearchPaths []string
	HomeDir     string
	// TempDir holds the downloaded archive; empty means os.TempDir()
	TempDir string
	// StateDir holds the lock and receipts; empty disables both
	StateDir string
}

// DetectHost builds a HostEnvironment from the running process.
func DetectHost(ctx context.Context, detector platform.Detector, stateDir string) (HostEnvironment, error) {
	info, err := detector.Detect(ctx)
	if err != nil {
		return HostEnvironment{}, fmt.Errorf("detect platform: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return HostEnvironment{}, fmt.Errorf("cannot determine home directory: %w", err)
	}

	return HostEnvironment{
		Arch:        info.Arch,
		SearchPaths: filepath.SplitList(os.Getenv("PATH")),
		HomeDir:     home,
		TempDir:     os.TempDir(),
		StateDir:    stateDir,
	}, nil
}
