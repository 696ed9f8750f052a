// Package version provides centralized version information for Gridgate projects.
// This package supports independent versioning for the gridgated daemon and the
// gridgatectl CLI as separate projects within the monorepo, allowing them to
// evolve independently while maintaining consistency within each project's
// components. All versions follow semantic versioning (semver) conventions.

package version

// GridgatedVersion holds the current gridgated daemon version.
// Format: major.minor.patch[-prerelease][+build]
const GridgatedVersion = "0.1.0-dev"

// GridgatectlVersion holds the current gridgatectl CLI version.
// This is used by the CLI binary and allows independent evolution
// of the management tool separate from the daemon pipeline.
// Format: major.minor.patch[-prerelease][+build]
const GridgatectlVersion = "0.1.0-dev"
