// Package setup runs one provisioning of TFLint on a runner: plugin cache
// restore, version resolution, acquisition, optional wrapper installation
// and PATH registration. Post runs the matching post step.
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/sirupsen/logrus"

	"github.com/tflint-actions/setup-tflint/internal/binary"
	"github.com/tflint-actions/setup-tflint/internal/config"
	"github.com/tflint-actions/setup-tflint/internal/logging"
	"github.com/tflint-actions/setup-tflint/internal/platform"
	"github.com/tflint-actions/setup-tflint/internal/plugincache"
	"github.com/tflint-actions/setup-tflint/internal/release"
	"github.com/tflint-actions/setup-tflint/internal/shim"
	"github.com/tflint-actions/setup-tflint/internal/toolcache"
)

// OutputVersion is the step output carrying the installed version.
const OutputVersion = "tflint-version"

// WrapperBinaryName is the shim executable looked up next to setup-tflint
// when no wrapper_path is configured.
const WrapperBinaryName = "tflint-wrapper"

// Runner is the runner protocol used by a setup run.
type Runner interface {
	plugincache.Runner
	binary.Environment
	AddPath(dir string) error
	InstallMatcher(dir string) (string, error)
	TempDir() string
	OS() string
}

// Options holds the collaborators of a run. Zero values select the real
// implementations.
type Options struct {
	Runner      Runner
	Detector    platform.Detector
	HTTPClient  binary.HTTPClient
	Cache       *toolcache.Cache
	PluginStore plugincache.Store
	Logger      *logrus.Entry
	Getenv      func(string) string
}

// Result describes a completed run.
type Result struct {
	Version  string
	Dir      string
	Platform platform.Key
	Acquired *binary.AcquireResult
	CacheHit bool
	Wrapped  bool
}

// Run provisions TFLint according to cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}
	log := opts.Logger

	result := &Result{}

	workDir := opts.Getenv("GITHUB_WORKSPACE")
	pluginCache := plugincache.NewManager(opts.PluginStore, opts.Runner, log.WithField("component", "plugincache"))
	restored, err := pluginCache.Restore(ctx, plugincache.RestoreOptions{
		Enabled:       cfg.Cache,
		ConfigPattern: cfg.ConfigPath,
		PluginDir:     plugincache.ResolvePluginDir(cfg.PluginDir, opts.Getenv),
		RunnerOS:      runnerOS(opts.Runner),
		WorkDir:       workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("restore plugin cache: %w", err)
	}
	result.CacheHit = restored.Hit

	resolver := release.NewResolver(
		release.WithHTTPClient(opts.HTTPClient),
		release.WithAPIURL(cfg.APIURL),
		release.WithToken(cfg.GitHubToken),
		release.WithLogger(log.WithField("component", "release")),
	)
	version, err := resolver.Resolve(ctx, cfg.Version)
	if err != nil {
		return nil, err
	}
	result.Version = version

	info, err := opts.Detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}
	result.Platform = info.NativeKey()
	log.WithFields(logrus.Fields{
		"os":          info.OSRaw,
		"arch":        info.ArchRaw,
		"kernel_arch": info.KernelArch,
		"distro":      info.Distro,
		"platform":    result.Platform.String(),
	}).Debug("Detected platform")

	var keyring openpgp.EntityList
	if cfg.SigningKey != "" {
		if keyring, err = binary.LoadKeyring(cfg.SigningKey); err != nil {
			return nil, err
		}
	}

	manager, err := binary.NewManager(binary.Config{
		Cache:      opts.Cache,
		TempDir:    opts.Runner.TempDir(),
		BaseURL:    cfg.DownloadBaseURL,
		Keyring:    keyring,
		HTTPClient: opts.HTTPClient,
		Logger:     log.WithField("component", "binary"),
	})
	if err != nil {
		return nil, fmt.Errorf("create binary manager: %w", err)
	}

	acquired, err := manager.Acquire(ctx, binary.AcquireOptions{
		Version:  version,
		Platform: result.Platform,
		Digests:  binary.ParseDigests(cfg.Checksums),
	})
	if err != nil {
		return nil, err
	}
	result.Acquired = acquired
	result.Dir = acquired.Dir

	reportVersion(ctx, log, filepath.Join(acquired.Dir, binary.ExecutableName(result.Platform.OS)))

	if cfg.Wrapper {
		dir, err := installWrapper(cfg, opts, acquired, result.Platform)
		if err != nil {
			return nil, err
		}
		result.Dir = dir
		result.Wrapped = true
	}

	if err := opts.Runner.AddPath(result.Dir); err != nil {
		return nil, fmt.Errorf("add %s to PATH: %w", result.Dir, err)
	}

	matcher, err := opts.Runner.InstallMatcher(opts.Runner.TempDir())
	if err != nil {
		return nil, fmt.Errorf("register problem matcher: %w", err)
	}
	log.WithField("path", matcher).Debug("Registered TFLint problem matcher")

	if err := opts.Runner.SetOutput(OutputVersion, version); err != nil {
		return nil, fmt.Errorf("set output %s: %w", OutputVersion, err)
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"path":    result.Dir,
	}).Info("TFLint installed")

	return result, nil
}

// Post saves the plugin cache recorded by Run. It never fails.
func Post(ctx context.Context, cfg *config.Config, opts Options) {
	if opts.Runner == nil {
		return
	}
	opts, err := withDefaults(opts)
	if err != nil {
		opts.Logger.Warnf("Failed to prepare post step: %v", err)
		return
	}

	pluginCache := plugincache.NewManager(opts.PluginStore, opts.Runner, opts.Logger.WithField("component", "plugincache"))
	pluginCache.Save(ctx, cfg.Cache)
}

// PluginStoreDir returns where the file-backed plugin store keeps its
// entries for a given tool cache.
func PluginStoreDir(cache *toolcache.Cache) string {
	return filepath.Join(cache.Root(), "tflint-plugins")
}

func withDefaults(opts Options) (Options, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Component("setup")
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Detector == nil {
		opts.Detector = platform.NewDetector()
	}
	if opts.Cache == nil {
		cache, err := toolcache.FromEnv()
		if err != nil {
			return opts, fmt.Errorf("open tool cache: %w", err)
		}
		opts.Cache = cache
	}
	if opts.PluginStore == nil {
		opts.PluginStore = plugincache.NewFileStore(PluginStoreDir(opts.Cache))
	}
	return opts, nil
}

// installWrapper stages a private copy of the cached directory and wraps
// it, leaving the tool cache entry untouched.
func installWrapper(cfg *config.Config, opts Options, acquired *binary.AcquireResult, key platform.Key) (string, error) {
	shimPath := cfg.WrapperPath
	if shimPath == "" {
		self, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("locate wrapper: %w", err)
		}
		shimPath = filepath.Join(filepath.Dir(self), WrapperBinaryName)
		if runtime.GOOS == "windows" {
			shimPath += ".exe"
		}
	}

	stageDir := filepath.Join(opts.Runner.TempDir(), "setup-tflint", "wrapped", toolcache.NormalizeVersion(acquired.Version), key.Arch)
	if err := os.RemoveAll(stageDir); err != nil {
		return "", fmt.Errorf("clear wrapper directory: %w", err)
	}
	if err := toolcache.CopyDir(acquired.Dir, stageDir); err != nil {
		return "", fmt.Errorf("stage wrapper directory: %w", err)
	}

	opts.Logger.WithField("path", stageDir).Debug("Installing wrapper script")
	if err := binary.InstallWrapper(stageDir, binary.WrapperOptions{
		ShimPath: shimPath,
		OS:       key.OS,
		Env:      opts.Runner,
	}); err != nil {
		return "", err
	}

	return stageDir, nil
}

// reportVersion logs `tflint --version`. Failures are only logged.
func reportVersion(ctx context.Context, log *logrus.Entry, bin string) {
	res, err := shim.NewExecutor(nil).Run(ctx, bin, []string{"--version"}, io.Discard, io.Discard)
	if err != nil {
		log.WithError(err).Debug("Unable to detect installed TFLint version")
		return
	}
	log.WithField("exitcode", res.ExitCode).Debug(strings.TrimSpace(string(res.Stdout)))
}

func runnerOS(r Runner) string {
	if name := r.OS(); name != "" {
		return name
	}
	switch runtime.GOOS {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	default:
		return "Linux"
	}
}
