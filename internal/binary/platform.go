package binary

import (
	"fmt"
	"strings"

	"github.com/tflint-actions/setup-tflint/internal/platform"
)

// DefaultBaseURL is where TFLint release assets are published.
const DefaultBaseURL = "https://github.com/terraform-linters/tflint/releases/download"

const (
	checksumsFile = "checksums.txt"
	signatureFile = "checksums.txt.sig"
)

// ArchiveName returns the release asset name for a platform.
func ArchiveName(key platform.Key) string {
	return fmt.Sprintf("tflint_%s_%s.zip", platform.MapOS(key.OS), platform.MapArch(key.Arch))
}

// ArchiveURL returns <base>/<version>/tflint_<os>_<arch>.zip.
func ArchiveURL(baseURL, version string, key platform.Key) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), version, ArchiveName(key))
}

// constructDownloadInfo builds the release URLs for a version and platform
// Pattern: {base}/{version}/tflint_{os}_{arch}.zip
func constructDownloadInfo(baseURL, version string, key platform.Key) (*DownloadInfo, error) {
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if key.OS == "" || key.Arch == "" {
		return nil, fmt.Errorf("platform is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	releaseURL := fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), version)

	return &DownloadInfo{
		Version:      version,
		OS:           platform.MapOS(key.OS),
		Arch:         platform.MapArch(key.Arch),
		ArchiveName:  ArchiveName(key),
		URL:          ArchiveURL(baseURL, version, key),
		ChecksumsURL: releaseURL + "/" + checksumsFile,
		SignatureURL: releaseURL + "/" + signatureFile,
	}, nil
}

// ExecutableName returns the TFLint executable name for a vendor OS.
func ExecutableName(goos string) string {
	if platform.MapOS(goos) == "windows" {
		return Tool + ".exe"
	}
	return Tool
}

// WrappedName returns the name the real executable is moved to when the
// wrapper is installed.
func WrappedName(goos string) string {
	if platform.MapOS(goos) == "windows" {
		return Tool + "-bin.exe"
	}
	return Tool + "-bin"
}
