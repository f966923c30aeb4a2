package codeqlreport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/varalys/codeqlreport/internal/config"
	"github.com/varalys/codeqlreport/internal/git"
	"github.com/varalys/codeqlreport/internal/github"
	"github.com/varalys/codeqlreport/internal/logging"
)

var (
	flagEnvFile  string
	flagConfig   string
	flagRepoPath string
	flagDebug    bool
	flagNoColor  bool
	flagTimeout  time.Duration

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the codeqlreport CLI.
var rootCmd = &cobra.Command{
	Use:           "codeqlreport",
	Short:         "Report CodeQL code scanning alerts",
	Long:          "codeqlreport exports open GitHub code scanning alerts to a spreadsheet and sets up the CodeQL workflow for a repository.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the codeqlreport CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// errCommitFailed makes setup exit 1 instead of the usage exit code.
var errCommitFailed = errors.New("workflow commit failed")

func exitCode(err error) int {
	if errors.Is(err, errCommitFailed) {
		return 1
	}
	return 2
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file merged into the environment")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (default: .codeqlreport.yml in --repo-path)")
	rootCmd.PersistentFlags().StringVar(&flagRepoPath, "repo-path", ".", "local checkout used for config lookup and owner/repo detection")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 60*time.Second, "per-request HTTP timeout")
}

// session is the state shared by commands that talk to GitHub.
type session struct {
	settings *config.Settings
	log      *zap.Logger
	owner    string
	repo     string
}

func newLogger() (*zap.Logger, error) {
	return logging.New(logging.Options{Debug: flagDebug, NoColor: flagNoColor})
}

func loadSettings() (*config.Settings, error) {
	return config.Load(config.LoadOptions{EnvFile: flagEnvFile, ConfigPath: flagConfig, Root: flagRepoPath})
}

func openSession() (*session, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	owner, okOwner := s.Get(config.KeyOwner)
	repo, okRepo := s.Get(config.KeyRepo)
	if !okOwner || !okRepo {
		if slug, err := git.Detect(flagRepoPath); err == nil {
			log.Debug("using repository from git remote", zap.String("repo", slug.String()))
			if !okOwner {
				owner = slug.Owner
			}
			if !okRepo {
				repo = slug.Name
			}
		} else {
			log.Debug("git remote detection failed", zap.Error(err))
		}
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: %s", config.ErrMissingKey, config.KeyOwner)
	}
	if repo == "" {
		return nil, fmt.Errorf("%w: %s", config.ErrMissingKey, config.KeyRepo)
	}
	return &session{settings: s, log: log, owner: owner, repo: repo}, nil
}

func (s *session) client(ctx context.Context) (*github.Client, error) {
	token, err := s.settings.String(config.KeyAccessToken)
	if err != nil {
		return nil, err
	}
	api := s.settings.StringOr(config.KeyAPIURL, config.DefaultAPIURL)
	return github.NewClient(ctx, token, api, "codeqlreport/"+version, flagTimeout)
}

func (s *session) gateway(ctx context.Context, severities []string) (*github.Repo, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	return github.NewRepo(c, s.owner, s.repo, severities, s.log), nil
}
