// Package platform detects the host operating system and CPU architecture and
// maps them onto the naming convention TFLint uses in its release artifact
// filenames.
package platform

import "context"

// Info contains platform detection information.
type Info struct {
	OS         string // vendor OS name, e.g. "linux", "darwin", "windows"
	Arch       string // vendor arch name, e.g. "amd64", "arm64", "386"
	OSRaw      string // identifier as reported by the host before mapping
	ArchRaw    string // identifier as reported by the host before mapping
	KernelArch string // uname-style machine name (e.g. "x86_64"), may be empty
	Distro     string // Linux distribution ID (e.g. "ubuntu"), may be empty
}

// Key is the normalized (OS, architecture) pair used to build download URLs
// and tool cache keys.
type Key struct {
	OS   string
	Arch string
}

// String returns the key in "os/arch" form.
func (k Key) String() string {
	return k.OS + "/" + k.Arch
}

// Key returns the normalized platform key for this host.
func (i *Info) Key() Key {
	return Key{OS: MapOS(i.OS), Arch: MapArch(i.Arch)}
}

// NativeKey returns Key, except that an amd64 process on an arm64 Linux or
// macOS kernel is keyed as arm64 so the native build is installed instead of
// one that runs under emulation.
func (i *Info) NativeKey() Key {
	key := i.Key()
	if key.Arch == "amd64" && MapArch(i.KernelArch) == "arm64" && (key.OS == "linux" || key.OS == "darwin") {
		key.Arch = "arm64"
	}
	return key
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return MapOS(i.OS) == "windows"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when the platform is
// supplied explicitly instead of detected.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured info and error.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	return s.Info, s.Err
}
