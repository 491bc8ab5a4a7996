package manifest

import (
	"cmp"
	"slices"
	"strings"
)

// NormalizeVersion prefers the display name over the tag and strips one leading "v".
func NormalizeVersion(name, tagName string) string {
	version := name
	if version == "" {
		version = tagName
	}

	version, _ = strings.CutPrefix(version, "v")

	return version
}

// IsStable reports whether a release is neither a prerelease nor a draft.
func IsStable(prerelease, draft bool) bool {
	return !(prerelease || draft)
}

// BuildRelease classifies the assets of an upstream release and normalizes it.
// The result always has a non-nil Files slice.
func (c *Classifier) BuildRelease(up UpstreamRelease) Release {
	files := make([]File, 0, len(up.Assets))

	for _, asset := range up.Assets {
		if file, ok := c.Classify(asset); ok {
			files = append(files, file)
		}
	}

	SortFiles(files)

	return Release{
		Files:      files,
		ReleaseURL: up.HTMLURL,
		Stable:     IsStable(up.Prerelease, up.Draft),
		Version:    NormalizeVersion(up.Name, up.TagName),
	}
}

// SortFiles orders files by platform, then arch, then filename.
func SortFiles(files []File) {
	slices.SortStableFunc(files, compareFiles)
}

func compareFiles(a, b File) int {
	if c := cmp.Compare(a.Platform, b.Platform); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Arch, b.Arch); c != 0 {
		return c
	}

	return cmp.Compare(a.Filename, b.Filename)
}

// DropEmpty returns the releases that have at least one file, keeping their order.
func (m Manifest) DropEmpty() Manifest {
	kept := make(Manifest, 0, len(m))

	for _, release := range m {
		if len(release.Files) > 0 {
			kept = append(kept, release)
		}
	}

	return kept
}

// Latest returns the first stable release, which is the newest one
// because the manifest keeps the upstream reverse-chronological order.
func (m Manifest) Latest() (Release, bool) {
	for _, release := range m {
		if release.Stable {
			return release, true
		}
	}

	return Release{}, false
}

// Find returns the release with the given version. A leading "v" is ignored.
func (m Manifest) Find(version string) (Release, bool) {
	version, _ = strings.CutPrefix(version, "v")

	for _, release := range m {
		if release.Version == version {
			return release, true
		}
	}

	return Release{}, false
}

// FileFor returns the file built for platform and arch.
func (r Release) FileFor(platform Platform, arch Arch) (File, bool) {
	for _, file := range r.Files {
		if file.Platform == platform && file.Arch == arch {
			return file, true
		}
	}

	return File{}, false
}

// Platforms lists the distinct platform/arch pairs of the release, in file order.
func (r Release) Platforms() []string {
	seen := make(map[string]struct{}, len(r.Files))
	pairs := make([]string, 0, len(r.Files))

	for _, file := range r.Files {
		pair := string(file.Platform) + "/" + string(file.Arch)
		if _, ok := seen[pair]; ok {
			continue
		}

		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}

	return pairs
}
