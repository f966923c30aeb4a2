package codeqlreport

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/varalys/codeqlreport/internal/config"
	"github.com/varalys/codeqlreport/internal/github"
	"github.com/varalys/codeqlreport/internal/workflow"
)

const defaultCommitMessage = "Create or update codeql.yml file."

var (
	flagSetupDryRun  bool
	flagSetupMessage string
)

func init() {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Generate the CodeQL workflow for the repository and commit it",
		Args:  cobra.NoArgs,
		RunE:  runSetup,
	}
	cmd.Flags().BoolVar(&flagSetupDryRun, "dry-run", false, "generate the workflow locally without committing it")
	cmd.Flags().StringVar(&flagSetupMessage, "message", defaultCommitMessage, "commit message")
	rootCmd.AddCommand(cmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = sess.log.Sync() }()
	s := sess.settings

	opts, err := workflowOptions(s)
	if err != nil {
		return err
	}
	repoSegs, err := s.List(config.KeyCodeQLConfigRepo)
	if err != nil {
		return err
	}
	opts.Logger = sess.log

	ctx := cmd.Context()
	gw, err := sess.gateway(ctx, nil)
	if err != nil {
		return err
	}
	languages := gw.GetLanguages(ctx)
	sess.log.Info("repository languages", zap.Strings("languages", languages))

	local, err := workflow.Build(languages, opts)
	if err != nil {
		return err
	}
	target := path.Join(append(repoSegs, opts.FileName)...)
	if flagSetupDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %s (not committed to %s)\n", local, target)
		return nil
	}

	branch := gw.GetDefaultBranch(ctx)
	if branch == "" {
		sess.log.Warn("default branch unknown, committing without an explicit branch")
	}
	out, err := gw.CommitFile(ctx, branch, local, target, flagSetupMessage)
	if err != nil {
		return err
	}
	if out == github.CommitFailed {
		return fmt.Errorf("%w: %s", errCommitFailed, target)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s\n", out, target, gw.FullName())
	return nil
}

func workflowOptions(s *config.Settings) (workflow.Options, error) {
	var opts workflow.Options
	var err error
	if opts.Supports, err = s.List(config.KeyCodeQLSupports); err != nil {
		return opts, err
	}
	if opts.Mapping, err = s.Mapping(config.KeyCodeQLMapping); err != nil {
		return opts, err
	}
	if opts.Branches, err = s.List(config.KeyCodeQLBranch); err != nil {
		return opts, err
	}
	if opts.Cron, err = s.String(config.KeyCodeQLCron); err != nil {
		return opts, err
	}
	if opts.OutDir, err = s.Dir(config.KeyCodeQLConfigLocal); err != nil {
		return opts, err
	}
	if opts.FileName, err = s.String(config.KeyCodeQLConfigFile); err != nil {
		return opts, err
	}
	opts.TemplatePath = s.StringOr(config.KeyCodeQLTemplate, config.DefaultTemplate)
	return opts, nil
}
