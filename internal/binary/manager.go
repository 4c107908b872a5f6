package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tflint-actions/setup-tflint/internal/toolcache"
)

// Manager orchestrates binary download, verification, extraction and caching
type Manager struct {
	cache      *toolcache.Cache
	tempDir    string
	baseURL    string
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	logger     *logrus.Entry
}

// Config holds configuration for the binary manager
type Config struct {
	// Cache is the tool cache acquired binaries are registered in
	Cache *toolcache.Cache
	// TempDir holds downloads and extraction scratch space (RUNNER_TEMP)
	TempDir string
	// BaseURL overrides DefaultBaseURL
	BaseURL string
	// Keyring enables signed checksum manifest verification when non-empty
	Keyring openpgp.EntityList
	// HTTPClient overrides the default client
	HTTPClient HTTPClient
	UserAgent  string
	Logger     *logrus.Entry
}

// NewManager creates a new binary manager
func NewManager(config Config) (*Manager, error) {
	if config.Cache == nil {
		return nil, fmt.Errorf("Cache is required")
	}

	if config.TempDir == "" {
		return nil, fmt.Errorf("TempDir is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.WithField("component", "binary")
	}

	manager := &Manager{
		cache:   config.Cache,
		tempDir: config.TempDir,
		baseURL: baseURL,
		downloader: NewDownloader(config.TempDir,
			WithHTTPClient(config.HTTPClient),
			WithUserAgent(config.UserAgent),
		),
		extractor: NewExtractor(),
		logger:    logger,
	}

	if len(config.Keyring) > 0 {
		manager.verifier = NewVerifier(config.Keyring)
	}

	return manager, nil
}

// Acquire returns a tool cache directory holding the requested TFLint
// version, downloading and verifying it on a cache miss.
func (m *Manager) Acquire(ctx context.Context, opts AcquireOptions) (*AcquireResult, error) {
	info, err := constructDownloadInfo(m.baseURL, opts.Version, opts.Platform)
	if err != nil {
		return nil, fmt.Errorf("construct download info: %w", err)
	}

	log := m.logger.WithFields(logrus.Fields{
		"version": info.Version,
		"os":      info.OS,
		"arch":    info.Arch,
	})

	if dir, ok := m.cache.Find(Tool, info.Version, info.Arch); ok {
		log.WithField("path", dir).Info("Found tflint in tool cache")
		return &AcquireResult{
			Dir:       dir,
			Version:   info.Version,
			URL:       info.URL,
			FromCache: true,
		}, nil
	}

	startTime := time.Now()

	digests := append(DigestSet(nil), opts.Digests...)
	verified := VerificationNone
	if len(digests) > 0 {
		verified = VerificationSHA256
	}

	// The manifest is authenticated before the archive is fetched.
	if m.verifier != nil {
		digest, err := m.fetchSignedDigest(ctx, info)
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest)
		verified = VerificationSignedManifest
	}

	log.WithField("url", info.URL).Debug("Downloading tflint CLI")
	archivePath, err := m.downloader.Download(ctx, info.URL)
	if err != nil {
		return nil, fmt.Errorf("download tflint from %s: %w", info.URL, err)
	}
	defer os.Remove(archivePath)

	if fi, err := os.Stat(archivePath); err != nil || fi.Size() == 0 {
		return nil, &ExtractionError{Path: info.URL, Err: fmt.Errorf("downloaded archive is empty")}
	}

	if err := VerifyDigest(archivePath, digests); err != nil {
		return nil, err
	}

	extractDir := filepath.Join(m.tempDir, uuid.NewString())
	defer os.RemoveAll(extractDir)

	log.Debug("Extracting tflint CLI zip file")
	if err := m.extractor.ExtractZip(archivePath, extractDir); err != nil {
		return nil, &ExtractionError{Path: info.URL, Err: err}
	}

	binPath := filepath.Join(extractDir, ExecutableName(info.OS))
	if fi, err := os.Stat(binPath); err != nil || !fi.Mode().IsRegular() {
		return nil, &ExtractionError{Path: info.URL, Err: fmt.Errorf("%s not found in archive", ExecutableName(info.OS))}
	}
	if info.OS != "windows" {
		if err := SetExecutable(binPath); err != nil {
			return nil, &ExtractionError{Path: info.URL, Err: err}
		}
	}

	dir, err := m.cache.Add(extractDir, Tool, info.Version, info.Arch)
	if err != nil {
		return nil, fmt.Errorf("cache tflint: %w", err)
	}

	log.WithField("path", dir).Debug("tflint CLI path")

	return &AcquireResult{
		Dir:          dir,
		Version:      info.Version,
		URL:          info.URL,
		Verified:     verified,
		DownloadTime: time.Since(startTime),
	}, nil
}

// fetchSignedDigest downloads checksums.txt and its signature and returns
// the authenticated digest of the archive.
func (m *Manager) fetchSignedDigest(ctx context.Context, info *DownloadInfo) (string, error) {
	manifestPath, err := m.downloader.Download(ctx, info.ChecksumsURL)
	if err != nil {
		return "", fmt.Errorf("download checksums: %w", err)
	}
	defer os.Remove(manifestPath)

	sigPath, err := m.downloader.Download(ctx, info.SignatureURL)
	if err != nil {
		return "", fmt.Errorf("download checksums signature: %w", err)
	}
	defer os.Remove(sigPath)

	digest, err := m.verifier.VerifyManifest(manifestPath, sigPath, info.ArchiveName)
	if err != nil {
		return "", err
	}

	m.logger.WithField("digest", digest).Debug("checksum manifest signature verified")
	return digest, nil
}
