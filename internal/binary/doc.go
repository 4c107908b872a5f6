// Package binary acquires the TFLint CLI: it builds the release download URL,
// fetches the archive, verifies it, extracts it and registers the result in
// the tool cache. It also installs the output-capturing wrapper in front of
// an acquired binary.
//
// # Security Model
//
// Nothing reaches the tool cache unverified. When digests are configured the
// archive's SHA-256 must match one of them before extraction begins. When a
// signing key is configured the release's checksums.txt must carry a valid
// detached OpenPGP signature, and the digest it lists for the archive is
// added to the accepted set.
//
// # Usage
//
//	cache, _ := toolcache.FromEnv()
//	mgr, err := binary.NewManager(binary.Config{
//	    Cache:   cache,
//	    TempDir: os.Getenv("RUNNER_TEMP"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	res, err := mgr.Acquire(ctx, binary.AcquireOptions{
//	    Version:  "v0.50.0",
//	    Platform: platform.Key{OS: "linux", Arch: "amd64"},
//	    Digests:  binary.ParseDigests(checksums),
//	})
//
// # Architecture
//
//   - Manager: cache lookup, download, verify, extract, cache registration
//   - Downloader: single-attempt HTTP download to a uniquely named temp file
//   - Verifier: detached signature check of the release checksum manifest
//   - Extractor: zip extraction with path traversal protection
//   - InstallWrapper: relocates the real binary and installs the shim
package binary
