package manifest

// Platform is the operating system a File targets.
type Platform string

// Arch is the CPU architecture a File targets.
type Arch string

const (
	// PlatformDarwin is macOS.
	PlatformDarwin Platform = "darwin"
	// PlatformLinux is Linux.
	PlatformLinux Platform = "linux"
	// PlatformWin32 is Windows, named the way Node's process.platform does.
	PlatformWin32 Platform = "win32"
)

const (
	// ArchX64 is 64-bit x86.
	ArchX64 Arch = "x64"
	// ArchARM64 is 64-bit ARM.
	ArchARM64 Arch = "arm64"
	// ArchX86 is 32-bit x86.
	ArchX86 Arch = "x86"
)

// Platforms lists every recognized platform.
func Platforms() []Platform {
	return []Platform{PlatformDarwin, PlatformLinux, PlatformWin32}
}

// Archs lists every recognized architecture.
func Archs() []Arch {
	return []Arch{ArchX64, ArchARM64, ArchX86}
}

// File is a downloadable artifact of a release.
// Fields are declared in JSON key order so the encoded keys come out sorted.
type File struct {
	// Arch is the CPU architecture of the artifact.
	Arch Arch `json:"arch"`
	// DownloadURL is the public URL of the artifact.
	DownloadURL string `json:"download_url"`
	// Filename is the asset name as published.
	Filename string `json:"filename"`
	// Platform is the operating system of the artifact.
	Platform Platform `json:"platform"`
}

// Release is one version entry of the manifest.
// Fields are declared in JSON key order so the encoded keys come out sorted.
type Release struct {
	// Files are the classified artifacts, ordered by platform and arch.
	Files []File `json:"files"`
	// ReleaseURL points to the human-readable release page.
	ReleaseURL string `json:"release_url"`
	// Stable is false for prereleases and drafts.
	Stable bool `json:"stable"`
	// Version is the release name (or tag) without the leading "v".
	Version string `json:"version"`
}

// Manifest is the full document, newest release first.
type Manifest []Release

// UpstreamAsset is the subset of a hosted release asset the manifest needs.
type UpstreamAsset struct {
	Name        string
	DownloadURL string
}

// UpstreamRelease is the subset of a hosted release the manifest needs.
type UpstreamRelease struct {
	Name       string
	TagName    string
	Prerelease bool
	Draft      bool
	HTMLURL    string
	Assets     []UpstreamAsset
}
