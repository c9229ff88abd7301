// Package semver resolves a VersionReq (the literal "latest", the publish-only
// sentinel "auto", an exact version, or a range requirement) against an
// artifact's published version list.
package semver

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/binrep/binrep/internal/binreperr"
)

const (
	Latest = "latest"
	Auto   = "auto"
)

// Sort returns versions in strict semver-ascending order: entries that fail
// to parse are dropped without a warning, and of several entries with equal
// precedence only the first is kept.
func Sort(versions []string) []string {
	parsed := make([]*semver.Version, 0, len(versions))
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		parsed = append(parsed, sv)
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].LessThan(parsed[j]) })
	out := make([]string, 0, len(parsed))
	for i, sv := range parsed {
		if i > 0 && sv.Equal(parsed[i-1]) {
			continue
		}
		out = append(out, sv.Original())
	}
	return out
}

// Resolve picks the version satisfying req against sorted (strict
// semver-ascending, already Sort-ed) published versions. artifact annotates
// NoVersions/NoMatch/VersionNotFound errors.
func Resolve(artifact, req string, sorted []string) (string, error) {
	if req == Auto {
		return Next(sorted), nil
	}

	if len(sorted) == 0 {
		return "", binreperr.NoVersions(artifact)
	}

	switch req {
	case Latest:
		for i := len(sorted) - 1; i >= 0; i-- {
			sv, err := semver.NewVersion(sorted[i])
			if err != nil {
				continue
			}
			if sv.Prerelease() == "" {
				return sorted[i], nil
			}
		}
		return "", binreperr.NoVersions(artifact)
	}

	if exact, err := semver.NewVersion(req); err == nil && looksExact(req) {
		for _, v := range sorted {
			sv, err := semver.NewVersion(v)
			if err == nil && sv.Equal(exact) {
				return v, nil
			}
		}
		return "", binreperr.VersionNotFound(artifact, req)
	}

	constraint, err := semver.NewConstraint(req)
	if err != nil {
		return "", binreperr.Config("invalid version requirement", err).With("artifact", artifact)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		sv, err := semver.NewVersion(sorted[i])
		if err != nil {
			continue
		}
		if sv.Prerelease() != "" && !constraint.Check(sv) {
			continue
		}
		if constraint.Check(sv) {
			return sorted[i], nil
		}
	}
	return "", binreperr.NoMatch(artifact, req)
}

// Next computes the "auto" publish version: max existing patch + 1 with
// prereleases stripped, or "0.0.1" if sorted is empty.
func Next(sorted []string) string {
	if len(sorted) == 0 {
		return "0.0.1"
	}
	max, err := semver.NewVersion(sorted[len(sorted)-1])
	if err != nil {
		return "0.0.1"
	}
	return fmt.Sprintf("%d.%d.%d", max.Major(), max.Minor(), max.Patch()+1)
}

// looksExact reports whether req is a plain version literal rather than a
// range expression, so "1.2.3" resolves by equality while "^1.2.3" goes
// through constraint matching even though both parse as valid constraints.
func looksExact(req string) bool {
	for _, c := range req {
		switch c {
		case '^', '~', '>', '<', '=', ' ', ',', '*', 'x', 'X':
			return false
		}
	}
	return true
}
