package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// VerifyDigest checks the SHA-256 of the file at path against digests.
// An empty set passes without opening the file.
func VerifyDigest(path string, digests DigestSet) error {
	if len(digests) == 0 {
		return nil
	}

	actual, err := calculateSHA256(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	if !digests.Contains(actual) {
		return &ChecksumMismatchError{
			Path:     path,
			Computed: actual,
			Expected: append([]string(nil), digests...),
		}
	}

	return nil
}

// Verifier authenticates release checksum manifests.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier trusting the keys in keyring
func NewVerifier(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// VerifyManifest checks the detached signature over the manifest and returns
// the digest it lists for archiveName.
func (v *Verifier) VerifyManifest(manifestPath, signaturePath, archiveName string) (string, error) {
	if err := v.verifySignature(manifestPath, signaturePath); err != nil {
		return "", &SignatureError{Path: manifestPath, Err: err}
	}

	digest, err := findChecksum(manifestPath, archiveName)
	if err != nil {
		return "", &SignatureError{Path: manifestPath, Err: err}
	}

	return digest, nil
}

// verifySignature verifies a detached signature, armored or binary
func (v *Verifier) verifySignature(filePath, signaturePath string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no trusted keys")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, file, sigFile, nil)
	if err != nil {
		// Try non-armored signature
		if _, serr := file.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind file: %w", serr)
		}
		if _, serr := sigFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind signature: %w", serr)
		}
		_, err = openpgp.CheckDetachedSignature(v.keyring, file, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
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

// findChecksum finds the checksum for a specific filename in a checksum file
// Format: "abc123def456  tflint_linux_amd64.zip"
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// Binary-mode entries are prefixed with '*'
		checksumFilename := strings.TrimPrefix(parts[1], "*")
		if checksumFilename == filename || filepath.Base(checksumFilename) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}
