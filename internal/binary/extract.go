package binary

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mwangiiharun/hermes/internal/runner"
)

const (
	// ExtractorTar extracts with the system tar utility
	ExtractorTar = "tar"
	// ExtractorBuiltin extracts in-process with archive/tar
	ExtractorBuiltin = "builtin"
)

// Extractor pulls a single named entry out of a .tgz archive into destDir.
// The extracted file is destDir/<base name of entry>.
type Extractor interface {
	ExtractEntry(ctx context.Context, archivePath, entry, destDir string) error
}

// NewExtractor returns the extractor for kind. An empty kind selects tar.
func NewExtractor(kind string, r runner.Runner) (Extractor, error) {
	switch kind {
	case "", ExtractorTar:
		if r == nil {
			return nil, fmt.Errorf("tar extractor requires a runner")
		}
		return &TarExtractor{Runner: r}, nil
	case ExtractorBuiltin:
		return &BuiltinExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor: %q", kind)
	}
}

// TarExtractor runs the tar utility, asking it for exactly one member. The
// member lands in a scratch directory inside destDir and is then moved to
// destDir/<base name of entry>, so nested members do not leave their parent
// directories behind.
type TarExtractor struct {
	Runner runner.Runner
	// Tar is the tar executable; defaults to "tar"
	Tar string
}

func (e *TarExtractor) ExtractEntry(ctx context.Context, archivePath, entry, destDir string) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	scratch, err := os.MkdirTemp(destDir, ".extract-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	tarBin := e.Tar
	if tarBin == "" {
		tarBin = "tar"
	}

	cmd := runner.Command{
		Name: tarBin,
		Args: []string{"-xzf", archivePath, "-C", scratch, entry},
	}
	res, err := e.Runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("run tar: %w", err)
	}
	if !res.Success() {
		return fmt.Errorf("%s exited with status %d: %s", cmd, res.ExitCode, strings.TrimSpace(string(res.Output)))
	}

	extracted := filepath.Join(scratch, filepath.FromSlash(path.Clean(entry)))
	info, err := os.Lstat(extracted)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", entry, ErrEntryNotFound)
	}
	if err := os.Rename(extracted, filepath.Join(destDir, path.Base(entry))); err != nil {
		return fmt.Errorf("move extracted file: %w", err)
	}
	return nil
}

// BuiltinExtractor extracts with archive/tar. Entries match on their base
// name so "./speedtest" and "speedtest" are the same member.
type BuiltinExtractor struct{}

func (e *BuiltinExtractor) ExtractEntry(ctx context.Context, archivePath, entry, destDir string) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	want := path.Base(entry)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tarReader.Next()
		if err == io.EOF {
			return fmt.Errorf("%s: %w", entry, ErrEntryNotFound)
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg || path.Base(header.Name) != want {
			continue
		}

		if err := os.MkdirAll(destDir, 0755); err != nil {
			return fmt.Errorf("create dest dir: %w", err)
		}

		destPath := filepath.Join(destDir, want)
		outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}

		if _, err := io.Copy(outFile, tarReader); err != nil {
			outFile.Close()
			os.Remove(destPath)
			return fmt.Errorf("write file: %w", err)
		}

		return outFile.Close()
	}
}

// validateEntry rejects names that could escape the destination directory.
func validateEntry(entry string) error {
	if entry == "" {
		return fmt.Errorf("entry name is required")
	}
	clean := path.Clean(entry)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("illegal entry path: %s", entry)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	// rwxr-xr-x
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
