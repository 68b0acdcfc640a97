// Package calver computes date-based release versions of the form
// YYYYMMDD.0.N. The patch component N auto-increments across releases
// cut on the same day; the minor component is always zero.
package calver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the time layout for the date component of a version.
const DateLayout = "20060102"

// ErrInvalidVersion is returned when a version string cannot be parsed.
var ErrInvalidVersion = errors.New("invalid version")

// tagPattern matches release tags: v<YYYYMMDD>.0.<N>.
// Anything else (missing v, wrong segment count, non-numeric patch)
// is malformed-tag noise and is skipped during resolution.
var tagPattern = regexp.MustCompile(`^v(\d{8})\.0\.(\d+)$`)

// Version is a date-plus-patch release identifier.
type Version struct {
	Date  string // YYYYMMDD
	Patch int
}

// String formats the version as "<date>.0.<patch>".
func (v Version) String() string {
	return fmt.Sprintf("%s.0.%d", v.Date, v.Patch)
}

// TagName returns the release tag name for the version ("v<date>.0.<patch>").
func (v Version) TagName() string {
	return "v" + v.String()
}

// BranchName returns the release branch name for the version.
func (v Version) BranchName() string {
	return "release/v" + v.String()
}

// Parse parses a version string of the form "YYYYMMDD.0.N".
// Used for explicit version overrides supplied by the caller.
func Parse(s string) (Version, error) {
	m := tagPattern.FindStringSubmatch("v" + s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q (expected YYYYMMDD.0.N)", ErrInvalidVersion, s)
	}
	if _, err := time.Parse(DateLayout, m[1]); err != nil {
		return Version{}, fmt.Errorf("%w: %q has no valid date component", ErrInvalidVersion, s)
	}
	patch, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{Date: m[1], Patch: patch}, nil
}

// Resolution is the outcome of resolving the next version for a date.
type Resolution struct {
	Version Version

	// Skipped lists same-prefix tags that could not be parsed as release
	// tags and were excluded. Diagnostics only; resolution never fails
	// on malformed tags.
	Skipped []string
}

// Resolve computes the next version for today given the existing tags.
//
// Tags that match v<today>.0.<N> contribute their patch number; the result
// is max+1, or 0 when no tag for today exists. Tags for other dates and
// malformed tags are ignored. Resolve is pure: same inputs, same result.
func Resolve(today time.Time, tags []string) Resolution {
	date := today.Format(DateLayout)
	prefix := "v" + date + "."

	res := Resolution{Version: Version{Date: date, Patch: 0}}

	found := false
	maxPatch := 0
	for _, tag := range tags {
		m := tagPattern.FindStringSubmatch(tag)
		if m == nil {
			// Only record noise that looks like it was meant to be a
			// release tag for today.
			if strings.HasPrefix(tag, prefix) {
				res.Skipped = append(res.Skipped, tag)
			}
			continue
		}
		if m[1] != date {
			continue
		}
		patch, err := strconv.Atoi(m[2])
		if err != nil {
			// Unreachable given the pattern, but patches larger than an
			// int are conceivable; treat them as noise too.
			res.Skipped = append(res.Skipped, tag)
			continue
		}
		if !found || patch > maxPatch {
			maxPatch = patch
		}
		found = true
	}

	if found {
		res.Version.Patch = maxPatch + 1
	}
	return res
}
