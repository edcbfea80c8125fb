// Command reviewbot reviews a pull request with Claude and posts the
// findings as position-addressed review comments.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reviewbot/reviewbot/anthropic"
	"github.com/reviewbot/reviewbot/config"
	"github.com/reviewbot/reviewbot/github"
	"github.com/reviewbot/reviewbot/review"
	"github.com/reviewbot/reviewbot/storage"
	"github.com/reviewbot/reviewbot/storage/postgres"
	"github.com/spf13/cobra"
)

var (
	flagRepo       string
	flagPR         int
	flagPrompt     string
	flagConfigPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "reviewbot",
		Short:         "AI code review for pull requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "repository in owner/name form (required)")
	rootCmd.Flags().IntVar(&flagPR, "pr", 0, "pull request number (required)")
	rootCmd.Flags().StringVar(&flagPrompt, "prompt", "", "additional review instructions")
	rootCmd.Flags().StringVar(&flagConfigPath, "config", config.DefaultConfigPath, "path to the config file")
	rootCmd.MarkFlagRequired("repo")
	rootCmd.MarkFlagRequired("pr")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, review.ErrSeverityThreshold) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	owner, repo, err := splitRepo(flagRepo)
	if err != nil {
		return err
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	cfg.ResolveSecrets()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	if cfg.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	logger.Info("starting review run",
		"repo", flagRepo,
		"pr", flagPR,
		"api_key_hint", anthropic.ExtractKeyHint(cfg.AnthropicAPIKey),
	)
	if err := anthropic.ValidateAPIKey(ctx, cfg.AnthropicAPIKey); err != nil {
		return err
	}

	githubClient, err := buildGitHubClient(cfg)
	if err != nil {
		return err
	}

	var store storage.Storage
	if cfg.DatabaseURL != "" {
		pg, err := postgres.NewFromDSN(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		store = pg
		logger.Info("run history storage enabled")
	}

	claude := anthropic.NewClient(cfg.AnthropicAPIKey, logger)
	reviewer := review.NewReviewer(githubClient, claude, store, cfg, logger)

	result, err := reviewer.Review(ctx, &review.ReviewInput{
		Owner:      owner,
		Repo:       repo,
		PRNumber:   flagPR,
		UserPrompt: flagPrompt,
	})
	if err != nil {
		return err
	}

	if result.Skipped {
		logger.Info("review skipped")
		return nil
	}

	logger.Info("review complete",
		"findings", result.FindingCount,
		"inline_posted", result.InlinePosted,
		"fallback_posted", result.FallbackPosted,
		"worst_severity", result.WorstSeverity,
	)

	if result.FailLevelMet {
		logger.Error("failing the run",
			"fail_level", cfg.FailLevel,
			"worst_severity", result.WorstSeverity,
		)
		return review.ErrSeverityThreshold
	}

	return nil
}

func buildGitHubClient(cfg *config.Config) (*github.Client, error) {
	if cfg.UseAppAuth() {
		privateKey, err := os.ReadFile(cfg.GitHubPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.GitHubPrivateKeyPath, err)
		}
		return github.NewAppClient(cfg.GitHubAppID, privateKey, cfg.GitHubInstallationID)
	}

	if cfg.GitHubToken == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is required when GitHub App auth is not configured")
	}
	return github.NewClient(cfg.GitHubToken), nil
}

func splitRepo(full string) (string, string, error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid --repo %q: expected owner/name", full)
	}
	return parts[0], parts[1], nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
