// Package update checks GitHub releases for newer versions of the binary.
package update

import (
	"os"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Slug is the GitHub repository releases are published to.
const Slug = "varalys/codeqlreport"

// Detector returns the latest released version for slug and whether a
// release was found.
type Detector func(slug string) (string, bool, error)

// Checker compares the running version against the latest release.
type Checker struct {
	Slug   string
	Detect Detector
}

// New returns a Checker backed by the GitHub releases API.
func New() *Checker {
	return &Checker{Slug: Slug, Detect: detectLatest}
}

func detectLatest(slug string) (string, bool, error) {
	rel, found, err := selfupdate.DetectLatest(slug)
	if err != nil || !found {
		return "", found, err
	}
	return rel.Version.String(), true, nil
}

// Check returns (latest, isNewer, error). It is a no-op in CI.
func (c *Checker) Check(current string) (string, bool, error) {
	if os.Getenv("CI") != "" {
		return "", false, nil
	}
	latest, found, err := c.Detect(c.Slug)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}
	return latest, Newer(latest, current), nil
}

// Newer reports whether latest is a higher version than current. Unparseable
// versions are never newer.
func Newer(latest, current string) bool {
	l, err := semver.ParseTolerant(latest)
	if err != nil {
		return false
	}
	c, err := semver.ParseTolerant(current)
	if err != nil {
		return false
	}
	return l.GT(c)
}

// SelfUpdate replaces the running binary with the latest release and returns
// the installed version.
func SelfUpdate(current string) (string, error) {
	ver, err := semver.ParseTolerant(current)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), Slug)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}
