// Package workflow generates the CodeQL scanning workflow from a template.
package workflow

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/varalys/codeqlreport/internal/logging"
)

// DefaultTemplate is the workflow written by "template init".
//
//go:embed default_template.yml
var DefaultTemplate string

// Placeholder tokens replaced in the template.
const (
	TokenBranch   = "BRANCH_NAME"
	TokenCron     = "CRON"
	TokenLanguage = "LANGUAGE"
)

// Options configures Build.
type Options struct {
	// Supports lists the languages CodeQL can analyze.
	Supports []string
	// Mapping renames repository languages to CodeQL language names.
	Mapping  map[string]string
	Branches []string
	Cron     string
	// TemplatePath is the workflow template on disk.
	TemplatePath string
	OutDir       string
	FileName     string
	Logger       *zap.Logger
}

// Languages maps each language through mapping and keeps the supported ones,
// without duplicates and in input order.
func Languages(languages, supports []string, mapping map[string]string) []string {
	supported := make(map[string]bool, len(supports))
	for _, s := range supports {
		supported[s] = true
	}
	seen := map[string]bool{}
	out := []string{}
	for _, lang := range languages {
		if m, ok := mapping[lang]; ok {
			lang = m
		}
		if supported[lang] && !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	return out
}

// Variables returns the replacement for each template token.
func Variables(languages, branches []string, cron string) map[string]string {
	return map[string]string{
		TokenBranch:   quoteJoin(branches),
		TokenCron:     "'" + cron + "'",
		TokenLanguage: quoteJoin(languages),
	}
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}

// Render replaces every literal ${TOKEN} in tmpl.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "${"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Build renders the template for languages and writes the workflow under
// OutDir. It returns the path of the written file.
func Build(languages []string, opts Options) (string, error) {
	log := logging.OrNop(opts.Logger)
	raw, err := os.ReadFile(opts.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	langs := Languages(languages, opts.Supports, opts.Mapping)
	if len(langs) == 0 {
		log.Warn("no supported languages found", zap.Strings("languages", languages))
	}
	log.Debug("workflow languages", zap.Strings("languages", langs))

	content := Render(string(raw), Variables(langs, opts.Branches, opts.Cron))
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return "", fmt.Errorf("generated workflow is not valid YAML: %w", err)
	}

	if opts.FileName == "" {
		return "", fmt.Errorf("workflow file name is empty")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", opts.OutDir, err)
	}
	out := filepath.Join(opts.OutDir, opts.FileName)
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write workflow: %w", err)
	}
	log.Info("workflow generated", zap.String("path", out), zap.Strings("languages", langs))
	return out, nil
}

// WriteTemplate writes DefaultTemplate to path unless a file already exists
// there and force is false.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(DefaultTemplate), 0o644)
}
