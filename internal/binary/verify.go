package binary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier handles cryptographic verification of downloaded archives
type Verifier struct{}

// NewVerifier creates a new verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks archivePath against every configured part of exp. The
// reported method is the strongest check that ran. With an empty
// expectation it only computes the digest and reports VerificationNone.
func (v *Verifier) Verify(archivePath string, exp Expectation) (*VerificationResult, error) {
	digest, err := calculateSHA256(archivePath)
	if err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	result := &VerificationResult{Method: VerificationNone, Success: true, Digest: digest}

	if exp.SHA256 != "" {
		result.Method = VerificationSHA256
		if !strings.EqualFold(digest, strings.TrimSpace(exp.SHA256)) {
			result.Success = false
			result.Error = fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s", digest, exp.SHA256)
			return result, fmt.Errorf("checksum mismatch")
		}
	}

	if exp.SignaturePath != "" {
		result.Method = VerificationGPG
		if err := v.verifyGPG(archivePath, exp.SignaturePath, exp.KeyringPath); err != nil {
			result.Success = false
			result.Error = err
			return result, fmt.Errorf("GPG verification failed: %w", err)
		}
	}

	return result, nil
}

// verifyGPG verifies a file using a detached GPG signature
func (v *Verifier) verifyGPG(archivePath, signaturePath, keyringPath string) error {
	if keyringPath == "" {
		return fmt.Errorf("a keyring is required to check signatures")
	}

	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return fmt.Errorf("load keyring: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	// Try armored first, then binary
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, archiveFile, sigFile, nil)
	if err != nil {
		if _, serr := archiveFile.Seek(0, io.SeekStart); serr != nil {
			return serr
		}
		if _, serr := sigFile.Seek(0, io.SeekStart); serr != nil {
			return serr
		}
		_, err = openpgp.CheckDetachedSignature(keyring, archiveFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}

// loadKeyring loads an armored or binary OpenPGP keyring
func loadKeyring(keyringPath string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		if _, serr := keyringFile.Seek(0, io.SeekStart); serr != nil {
			return nil, serr
		}
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
