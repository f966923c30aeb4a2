package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape. Every field mirrors one
// environment key. The access token is never read from files, only from
// the environment.
type FileConfig struct {
	APIURL           *string       `yaml:"github_api_url,omitempty"`
	Owner            *string       `yaml:"github_owner,omitempty"`
	Repo             *string       `yaml:"github_repo,omitempty"`
	OutputDirectory  *string       `yaml:"output_directory,omitempty"`
	OutputFile       *string       `yaml:"output_file,omitempty"`
	SeverityOrder    *string       `yaml:"severity_level_order,omitempty"`
	SeverityToReport *string       `yaml:"severity_level_to_report,omitempty"`
	SeverityConflict *string       `yaml:"severity_conflict,omitempty"`
	CodeQL           *CodeQLConfig `yaml:"codeql,omitempty"`
}

// CodeQLConfig holds the workflow generator settings.
type CodeQLConfig struct {
	Supports    *string           `yaml:"supports,omitempty"`
	Mapping     map[string]string `yaml:"mapping,omitempty"`
	Branch      *string           `yaml:"branch,omitempty"`
	Cron        *string           `yaml:"cron,omitempty"`
	ConfigLocal *string           `yaml:"config_local,omitempty"`
	ConfigFile  *string           `yaml:"config_file,omitempty"`
	ConfigRepo  *string           `yaml:"config_repo,omitempty"`
	Template    *string           `yaml:"template,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .codeqlreport.yml/.yaml and codeqlreport.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".codeqlreport.yml", ".codeqlreport.yaml", "codeqlreport.yml", "codeqlreport.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "codeqlreport", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// lookup maps an environment key onto the matching file field.
func (fc FileConfig) lookup(key string) (string, bool) {
	var p *string
	switch key {
	case KeyAPIURL:
		p = fc.APIURL
	case KeyOwner:
		p = fc.Owner
	case KeyRepo:
		p = fc.Repo
	case KeyOutputDirectory:
		p = fc.OutputDirectory
	case KeyOutputFile:
		p = fc.OutputFile
	case KeySeverityOrder:
		p = fc.SeverityOrder
	case KeySeverityToReport:
		p = fc.SeverityToReport
	case KeySeverityConflict:
		p = fc.SeverityConflict
	}
	if c := fc.CodeQL; c != nil {
		switch key {
		case KeyCodeQLSupports:
			p = c.Supports
		case KeyCodeQLBranch:
			p = c.Branch
		case KeyCodeQLCron:
			p = c.Cron
		case KeyCodeQLConfigLocal:
			p = c.ConfigLocal
		case KeyCodeQLConfigFile:
			p = c.ConfigFile
		case KeyCodeQLConfigRepo:
			p = c.ConfigRepo
		case KeyCodeQLTemplate:
			p = c.Template
		}
	}
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

func (fc FileConfig) mapping() map[string]string {
	if fc.CodeQL == nil {
		return nil
	}
	return fc.CodeQL.Mapping
}
