package acquire

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/mwangiiharun/hermes/internal/binary"
	"github.com/mwangiiharun/hermes/internal/logging"
	"github.com/mwangiiharun/hermes/internal/platform"
)

// StrategyDownload is the name reported by DownloadStrategy.
const StrategyDownload = "download"

// Fetcher downloads a URL to a file. *binary.Downloader implements it.
type Fetcher interface {
	DownloadToFile(ctx context.Context, url, destPath string) error
}

// ArchiveVerifier checks a downloaded archive. *binary.Verifier implements it.
type ArchiveVerifier interface {
	Verify(archivePath string, exp binary.Expectation) (*binary.VerificationResult, error)
}

// DownloadStrategy fetches the vendor archive for the host architecture and
// extracts the one executable into the install directory.
type DownloadStrategy struct {
	Fetcher   Fetcher
	Extractor binary.Extractor
	// Verifier defaults to binary.NewVerifier()
	Verifier ArchiveVerifier

	// URL and SignatureURL are templates over .Version and .Arch
	URL          string
	Version      string
	SHA256       map[platform.Arch]string
	SignatureURL string
	KeyringPath  string

	// Entry is the archive member to extract; defaults to the executable name
	Entry  string
	Logger logging.Logger
}

func (s *DownloadStrategy) Name() string {
	return StrategyDownload
}

func (s *DownloadStrategy) Acquire(ctx context.Context, req Request) (*Installation, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Noop()
	}

	url, err := binary.DownloadURL(s.URL, s.Version, req.Host.Arch)
	if err != nil {
		return nil, newError(KindUnexpected, "build download url", err)
	}

	tmpDir, err := os.MkdirTemp(req.Host.TempDir, "hermes-download-*")
	if err != nil {
		return nil, newError(KindUnexpected, "create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, binary.ArchiveName(url))
	logger.Info("downloading archive", "url", url, "arch", req.Host.Arch)
	if err := s.Fetcher.DownloadToFile(ctx, url, archivePath); err != nil {
		return nil, newError(KindNetwork, "download "+url, err)
	}

	exp, err := s.expectation(ctx, req.Host.Arch, tmpDir)
	if err != nil {
		return nil, err
	}

	verifier := s.Verifier
	if verifier == nil {
		verifier = binary.NewVerifier()
	}
	result, err := verifier.Verify(archivePath, exp)
	if err != nil {
		return nil, newError(KindVerification, "verify "+binary.ArchiveName(url), err)
	}
	logger.Debug("archive verified", "method", result.Method.String(), "sha256", result.Digest)

	entry := s.Entry
	if entry == "" {
		entry = req.Name
	}
	if err := s.Extractor.ExtractEntry(ctx, archivePath, entry, req.InstallDir); err != nil {
		return nil, newError(KindArchive, "extract "+entry, err)
	}

	probe := &Probe{Name: path.Base(entry)}
	if !probe.InDir(req.InstallDir) {
		return nil, newError(KindArchive, "extract "+entry, fmt.Errorf("%s not present in %s after extraction", probe.Name, req.InstallDir))
	}

	if err := binary.SetExecutable(probe.ResolvedPath); err != nil {
		return nil, newError(KindArchive, "chmod "+probe.ResolvedPath, err)
	}

	return &Installation{
		Path:    probe.ResolvedPath,
		Version: s.Version,
		URL:     url,
		SHA256:  result.Digest,
	}, nil
}

// expectation fetches the detached signature when one is configured.
func (s *DownloadStrategy) expectation(ctx context.Context, arch platform.Arch, tmpDir string) (binary.Expectation, error) {
	exp := binary.Expectation{SHA256: s.SHA256[arch]}
	if s.SignatureURL == "" {
		return exp, nil
	}

	sigURL, err := binary.DownloadURL(s.SignatureURL, s.Version, arch)
	if err != nil {
		return exp, newError(KindUnexpected, "build signature url", err)
	}
	sigPath := filepath.Join(tmpDir, binary.ArchiveName(sigURL)+".sig")
	if err := s.Fetcher.DownloadToFile(ctx, sigURL, sigPath); err != nil {
		return exp, newError(KindVerification, "download signature "+sigURL, err)
	}

	exp.SignaturePath = sigPath
	exp.KeyringPath = s.KeyringPath
	return exp, nil
}
