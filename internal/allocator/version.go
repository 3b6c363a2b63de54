package allocator

import (
	"fmt"

	mastersemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"
)

// dumpFormatVersion tags every diagnostic dump with the chunk-layout
// version it was produced against. A recovery tool attaching to a region
// read-only (spec §6) needs this to decide whether it understands the
// header layout before walking the physical chain.
const dumpFormatVersion = "v1.0.0"

// isValidFormatVersion reports whether v is a canonical semantic version
// tag, using golang.org/x/mod/semver for canonical-form comparison rather
// than hand-rolled string splitting.
func isValidFormatVersion(v string) bool {
	return semver.IsValid(v)
}

// CurrentFormatVersion returns the dump format version this build of the
// package stamps every dump with.
func CurrentFormatVersion() string {
	return dumpFormatVersion
}

// CanonicalFormatVersion returns v in canonical form (e.g. "v1.0" becomes
// "v1.0.0"), or "" if v isn't a valid semantic version.
func CanonicalFormatVersion(v string) string {
	return semver.Canonical(v)
}

// CompatibleWith reports whether dumpVersion satisfies constraint, using
// github.com/Masterminds/semver/v3 range constraints. This is the check a
// recovery tool runs before trusting that it understands a region's
// physical chunk layout well enough to walk it read-only.
func CompatibleWith(dumpVersion, constraint string) (bool, error) {
	v, err := mastersemver.NewVersion(dumpVersion)
	if err != nil {
		return false, fmt.Errorf("allocator: invalid dump version %q: %w", dumpVersion, err)
	}

	c, err := mastersemver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("allocator: invalid compatibility constraint %q: %w", constraint, err)
	}

	return c.Check(v), nil
}
