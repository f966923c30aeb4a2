package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	KeyAccessToken       = "GITHUB_ACCESS_TOKEN"
	KeyAPIURL            = "GITHUB_API_URL"
	KeyOwner             = "GITHUB_OWNER"
	KeyRepo              = "GITHUB_REPO"
	KeyOutputDirectory   = "OUTPUT_DIRECTORY"
	KeyOutputFile        = "OUTPUT_FILE"
	KeySeverityOrder     = "SEVERITY_LEVEL_ORDER"
	KeySeverityToReport  = "SEVERITY_LEVEL_TO_REPORT"
	KeySeverityConflict  = "SEVERITY_CONFLICT"
	KeyCodeQLSupports    = "CODEQL_SUPPORTS"
	KeyCodeQLMapping     = "CODEQL_MAPPING"
	KeyCodeQLBranch      = "CODEQL_BRANCH"
	KeyCodeQLCron        = "CODEQL_CRON"
	KeyCodeQLConfigLocal = "CODEQL_CONFIG_LOCAL"
	KeyCodeQLConfigFile  = "CODEQL_CONFIG_FILE"
	KeyCodeQLConfigRepo  = "CODEQL_CONFIG_REPO"
	KeyCodeQLTemplate    = "CODEQL_TEMPLATE"
)

const (
	DefaultAPIURL   = "https://api.github.com"
	DefaultTemplate = "codeql_template.yml"
)

var (
	// ErrMissingKey is returned when a required key is unset everywhere.
	ErrMissingKey = errors.New("missing configuration key")
	// ErrInvalidKey is returned when a key is set but cannot be decoded.
	ErrInvalidKey = errors.New("invalid configuration key")
)

// Settings resolves configuration keys with the precedence
// override > environment (.env included) > local file > global file.
type Settings struct {
	Local     FileConfig
	Global    FileConfig
	overrides map[string]string
	lookupEnv func(string) (string, bool)
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// EnvFile is a dotenv file merged into the process environment. Variables
	// already set win. A missing file is ignored.
	EnvFile string
	// ConfigPath is an explicit YAML file used instead of the local search.
	ConfigPath string
	// Root is searched for a local config when ConfigPath is empty.
	Root string
}

// New returns Settings over the given files and the process environment.
func New(local, global FileConfig) *Settings {
	return &Settings{
		Local:     local,
		Global:    global,
		overrides: map[string]string{},
		lookupEnv: os.LookupEnv,
	}
}

// Load reads every configuration source described by opts.
func Load(opts LoadOptions) (*Settings, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}
	var local FileConfig
	if opts.ConfigPath != "" {
		c, err := LoadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", opts.ConfigPath, err)
		}
		local = c
	} else if opts.Root != "" {
		if c, err := LoadLocal(opts.Root); err == nil {
			local = c
		}
	}
	var global FileConfig
	if c, err := LoadGlobal(); err == nil {
		global = c
	}
	return New(local, global), nil
}

// Set overrides a key for the lifetime of s.
func (s *Settings) Set(key, value string) {
	s.overrides[key] = value
}

// Get returns the value of key and whether any source defines it.
func (s *Settings) Get(key string) (string, bool) {
	if v, ok := s.overrides[key]; ok && v != "" {
		return v, true
	}
	if v, ok := s.lookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v, ok := s.Local.lookup(key); ok {
		return v, true
	}
	return s.Global.lookup(key)
}

// StringOr returns the value of key or def when it is unset.
func (s *Settings) StringOr(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// String returns a required value.
func (s *Settings) String(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", missing(key)
	}
	return v, nil
}

// List returns a required comma-separated value split into trimmed, non-empty
// items.
func (s *Settings) List(key string) ([]string, error) {
	v, err := s.String(key)
	if err != nil {
		return nil, err
	}
	items := SplitList(v)
	if len(items) == 0 {
		return nil, missing(key)
	}
	return items, nil
}

// Mapping returns a required string map. The environment form is a JSON object;
// YAML files may use a native mapping.
func (s *Settings) Mapping(key string) (map[string]string, error) {
	raw, fromEnv := s.overrides[key]
	if !fromEnv || raw == "" {
		raw, fromEnv = s.lookupEnv(key)
		raw = strings.TrimSpace(raw)
	}
	if fromEnv && raw != "" {
		out := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKey, key, err)
		}
		return out, nil
	}
	for _, m := range []map[string]string{s.Local.mapping(), s.Global.mapping()} {
		if m != nil {
			return m, nil
		}
	}
	return nil, missing(key)
}

// Dir resolves a required comma-separated list of path segments into an
// absolute directory rooted at the filesystem root.
func (s *Settings) Dir(key string) (string, error) {
	segs, err := s.List(key)
	if err != nil {
		return "", err
	}
	return RootedPath(segs), nil
}

// SplitList splits a comma-separated value, trimming blanks.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// RootedPath joins segments under the filesystem root.
func RootedPath(segs []string) string {
	parts := append([]string{string(filepath.Separator)}, segs...)
	return filepath.Clean(filepath.Join(parts...))
}

func missing(key string) error {
	return fmt.Errorf("%w: %s", ErrMissingKey, key)
}
