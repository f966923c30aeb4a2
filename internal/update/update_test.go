package update

import (
	"errors"
	"testing"
)

func TestCheck_NoNetworkInCI(t *testing.T) {
	t.Setenv("CI", "1")
	c := &Checker{Slug: Slug, Detect: func(string) (string, bool, error) {
		t.Fatal("detector must not run in CI")
		return "", false, nil
	}}
	if latest, newer, err := c.Check("1.0.0"); err != nil || latest != "" || newer {
		t.Fatalf("expected no-op in CI; got latest=%q newer=%v err=%v", latest, newer, err)
	}
}

func TestCheck_ReportsNewer(t *testing.T) {
	t.Setenv("CI", "")
	var gotSlug string
	c := &Checker{Slug: "acme/tool", Detect: func(slug string) (string, bool, error) {
		gotSlug = slug
		return "1.3.0", true, nil
	}}
	latest, newer, err := c.Check("v1.2.9")
	if err != nil {
		t.Fatal(err)
	}
	if gotSlug != "acme/tool" {
		t.Fatalf("expected slug acme/tool, got %q", gotSlug)
	}
	if latest != "1.3.0" || !newer {
		t.Fatalf("expected latest=1.3.0 newer=true; got latest=%q newer=%v", latest, newer)
	}
}

func TestCheck_NotFoundAndError(t *testing.T) {
	t.Setenv("CI", "")
	c := &Checker{Detect: func(string) (string, bool, error) { return "", false, nil }}
	if latest, newer, err := c.Check("1.0.0"); err != nil || latest != "" || newer {
		t.Fatalf("expected empty result; got latest=%q newer=%v err=%v", latest, newer, err)
	}
	boom := errors.New("rate limited")
	c = &Checker{Detect: func(string) (string, bool, error) { return "", false, boom }}
	if _, _, err := c.Check("1.0.0"); !errors.Is(err, boom) {
		t.Fatalf("expected detector error, got %v", err)
	}
}

func TestNewer(t *testing.T) {
	cases := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.3", "1.2.3", false},
		{"1.3.0", "1.2.9", true},
		{"v1.2.0", "1.2.1", false},
		{"2.0.0", "dev", false},
		{"garbage", "1.0.0", false},
	}
	for _, c := range cases {
		if got := Newer(c.latest, c.current); got != c.want {
			t.Fatalf("Newer(%q, %q) = %v, want %v", c.latest, c.current, got, c.want)
		}
	}
}
