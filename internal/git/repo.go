// Package git infers the GitHub repository of a local checkout.
package git

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNoRemote is returned when the checkout has no usable origin remote.
var ErrNoRemote = errors.New("no origin remote")

// Slug identifies a repository as owner/name.
type Slug struct {
	Owner string
	Name  string
}

func (s Slug) String() string { return s.Owner + "/" + s.Name }

// validateRoot validates and normalizes a repository root path.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// Detect reads the origin remote of the repository containing root.
func Detect(root string) (Slug, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return Slug{}, err
	}
	repo, err := gogit.PlainOpenWithOptions(validRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Slug{}, fmt.Errorf("open repository %s: %w", validRoot, err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return Slug{}, ErrNoRemote
		}
		return Slug{}, err
	}
	for _, u := range remote.Config().URLs {
		if s, err := ParseRemoteURL(u); err == nil {
			return s, nil
		}
	}
	return Slug{}, ErrNoRemote
}

// ParseRemoteURL extracts owner/name from https, ssh and scp-style remotes.
func ParseRemoteURL(raw string) (Slug, error) {
	s := strings.TrimSpace(raw)
	var p string
	if i := strings.Index(s, "://"); i >= 0 {
		u, err := url.Parse(s)
		if err != nil {
			return Slug{}, fmt.Errorf("parse remote %q: %w", raw, err)
		}
		p = u.Path
	} else if at := strings.Index(s, ":"); at >= 0 {
		// git@host:owner/name.git
		p = s[at+1:]
	} else {
		return Slug{}, fmt.Errorf("unrecognized remote %q", raw)
	}
	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	parts := strings.Split(p, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return Slug{}, fmt.Errorf("remote %q has no owner/name", raw)
	}
	return Slug{Owner: parts[len(parts)-2], Name: parts[len(parts)-1]}, nil
}
