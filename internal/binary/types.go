package binary

import (
	"strings"
	"time"

	"github.com/tflint-actions/setup-tflint/internal/platform"
)

// Tool is the tool cache name of the managed binary.
const Tool = "tflint"

// DigestSet is an ordered list of accepted hex SHA-256 digests. An empty set
// disables digest verification.
type DigestSet []string

// ParseDigests splits a whitespace- or comma-separated list of digests.
func ParseDigests(s string) DigestSet {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	digests := make(DigestSet, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			digests = append(digests, f)
		}
	}
	return digests
}

// Contains reports whether digest matches an entry, ignoring case and
// surrounding whitespace.
func (d DigestSet) Contains(digest string) bool {
	digest = strings.TrimSpace(digest)
	for _, want := range d {
		if strings.EqualFold(strings.TrimSpace(want), digest) {
			return true
		}
	}
	return false
}

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone means no digests were configured
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 means the archive matched a configured digest
	VerificationSHA256
	// VerificationSignedManifest means the matching digest came from a
	// signature-verified checksums.txt
	VerificationSignedManifest
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationNone:
		return "None"
	case VerificationSHA256:
		return "SHA256"
	case VerificationSignedManifest:
		return "SignedManifest"
	default:
		return "Unknown"
	}
}

// DownloadInfo contains the release URLs for one version and platform
type DownloadInfo struct {
	Version      string
	OS           string // vendor OS name: "linux", "darwin", "windows"
	Arch         string // vendor arch name: "amd64", "arm64", "386"
	ArchiveName  string // tflint_<os>_<arch>.zip
	URL          string
	ChecksumsURL string
	SignatureURL string
}

// AcquireOptions selects what to acquire.
type AcquireOptions struct {
	Version  string
	Platform platform.Key
	Digests  DigestSet
}

// AcquireResult describes an acquired binary.
type AcquireResult struct {
	// Dir is the tool cache directory holding the binary.
	Dir       string
	Version   string
	URL       string
	FromCache bool
	Verified  VerificationMethod
	// DownloadTime is zero on a cache hit.
	DownloadTime time.Duration
}
