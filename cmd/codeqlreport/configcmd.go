package codeqlreport

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/varalys/codeqlreport/internal/config"
	"github.com/varalys/codeqlreport/internal/workflow"
)

var (
	cfgOutput   string
	cfgOwner    string
	cfgRepo     string
	cfgSeverity string
	cfgForce    bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .codeqlreport.yml with the report and workflow settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".codeqlreport.yml", "output file path")
	initCmd.Flags().StringVar(&cfgOwner, "owner", "", "repository owner (default: detected from git remote)")
	initCmd.Flags().StringVar(&cfgRepo, "repo", "", "repository name (default: detected from git remote)")
	initCmd.Flags().StringVar(&cfgSeverity, "severity", "critical,high,medium,low", "severity levels, most important first")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !cfgForce {
		if _, err := os.Stat(cfgOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
		}
	}
	levels := strings.Join(config.SplitList(cfgSeverity), ",")
	fc := config.FileConfig{
		Owner:            optStrPtr(cfgOwner),
		Repo:             optStrPtr(cfgRepo),
		OutputDirectory:  strPtr("tmp,codeqlreport"),
		OutputFile:       strPtr("codeql_report.xlsx"),
		SeverityOrder:    strPtr(levels),
		SeverityToReport: strPtr(levels),
		SeverityConflict: strPtr("first"),
		CodeQL: &config.CodeQLConfig{
			Supports: strPtr("c-cpp,csharp,go,java-kotlin,javascript-typescript,python,ruby,swift"),
			Mapping: map[string]string{
				"c":          "c-cpp",
				"c++":        "c-cpp",
				"c#":         "csharp",
				"java":       "java-kotlin",
				"kotlin":     "java-kotlin",
				"javascript": "javascript-typescript",
				"typescript": "javascript-typescript",
			},
			Branch:      strPtr("main"),
			Cron:        strPtr("0 3 * * 1"),
			ConfigLocal: strPtr("tmp,codeqlreport"),
			ConfigFile:  strPtr("codeql.yml"),
			ConfigRepo:  strPtr(".github,workflows"),
			Template:    strPtr(config.DefaultTemplate),
		},
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	if _, err := os.Stat(config.DefaultTemplate); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Run 'codeqlreport template init' to create %s (%d bytes)\n",
			config.DefaultTemplate, len(workflow.DefaultTemplate))
	}
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
