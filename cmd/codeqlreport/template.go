package codeqlreport

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varalys/codeqlreport/internal/config"
	"github.com/varalys/codeqlreport/internal/workflow"
)

func init() {
	tmpl := &cobra.Command{Use: "template", Short: "Workflow template helpers"}
	rootCmd.AddCommand(tmpl)

	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in CodeQL workflow template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				s, err := loadSettings()
				if err != nil {
					return err
				}
				path = s.StringOr(config.KeyCodeQLTemplate, config.DefaultTemplate)
			}
			if err := workflow.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&output, "output", "", "output file path (default: CODEQL_TEMPLATE or codeql_template.yml)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing template")
	tmpl.AddCommand(initCmd)
}
