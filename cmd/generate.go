package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/gh-status/internal/config"
	"github.com/naka-gawa/gh-status/internal/gateway"
	"github.com/naka-gawa/gh-status/internal/logging"
	"github.com/naka-gawa/gh-status/internal/usecase"
	"github.com/naka-gawa/gh-status/internal/writer"
)

// envFile is read before the process environment, if present.
const envFile = ".env"

// clock is replaced in tests.
var clock = time.Now

func newGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates inventory, TODO and activity snapshots",
		Long: `Fetches the user's public repositories and recent public events and writes
inventory.toml, todos.toml, latest-7d.toml and latest-30d.toml (each with an
.html viewer) to the output directory.

Without --force the run only happens when the schedule fires within the
current hour in TZ_NAME, so the command can be invoked hourly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.InheritedFlags().GetBool("verbose")
			logger := logging.New(os.Stderr, verbose)

			cfg, err := config.Load(envFile)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to load configuration")
				return err
			}
			applyFlags(cmd, &cfg)

			force, _ := cmd.Flags().GetBool("force")
			return runGenerate(cmd.Context(), cfg, force, logger)
		},
	}

	generateCmd.Flags().BoolP("force", "f", false, "Run regardless of the schedule")
	generateCmd.Flags().StringP("username", "u", "", "GitHub username (overrides GITHUB_USERNAME)")
	generateCmd.Flags().String("token", "", "GitHub token (overrides GITHUB_TOKEN)")
	generateCmd.Flags().StringP("output-dir", "o", "docs", "Directory the snapshots are written to")
	generateCmd.Flags().Int("hot-repos", usecase.DefaultHotRepoCount, "Number of recently pushed repositories to enrich (overrides HOT_REPO_COUNT)")
	generateCmd.Flags().String("cache", "", "HTTP cache database path, empty for in-memory (overrides GH_STATUS_CACHE)")
	generateCmd.Flags().String("schedule", "", "Cron expression in TZ_NAME that gates the run (overrides GH_STATUS_SCHEDULE)")
	generateCmd.Flags().Int("concurrency", 1, "Number of hot repositories enriched at once (overrides GH_STATUS_CONCURRENCY)")
	return generateCmd
}

// applyFlags overrides cfg with every flag set explicitly on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.Username, _ = flags.GetString("username")
	}
	if flags.Changed("token") {
		cfg.Token, _ = flags.GetString("token")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("hot-repos") {
		cfg.HotRepoCount, _ = flags.GetInt("hot-repos")
	}
	if flags.Changed("cache") {
		cfg.CachePath, _ = flags.GetString("cache")
	}
	if flags.Changed("schedule") {
		cfg.Schedule, _ = flags.GetString("schedule")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
}

// runGenerate validates cfg, checks the schedule and runs the generator.
// A run skipped by the schedule is not an error.
func runGenerate(ctx context.Context, cfg config.Config, force bool, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loc, policy, err := cfg.Validate()
	if err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	now := clock()
	if !force && !policy.Due(now) {
		logger.Info().
			Str("schedule", policy.String()).
			Str("tz", loc.String()).
			Str("local_time", now.In(loc).Format(time.DateTime)).
			Msg("Not scheduled for this hour, skipping (use --force to run anyway)")
		return nil
	}

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:      cfg.Token,
		BaseURL:    cfg.APIURL,
		GraphQLURL: cfg.GraphQLURL,
		CachePath:  cfg.CachePath,
	}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create GitHub gateway")
		return err
	}
	defer func() {
		if err := githubGateway.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close GitHub gateway")
		}
	}()

	snapshotWriter, err := writer.New(logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create snapshot writer")
		return err
	}

	aggregator := usecase.NewAggregator(githubGateway, logger,
		usecase.WithClock(clock),
		usecase.WithHotRepoCount(cfg.HotRepoCount),
		usecase.WithConcurrency(cfg.Concurrency),
	)
	generator := usecase.NewGenerator(aggregator, snapshotWriter, usecase.GeneratorConfig{
		Username:  cfg.Username,
		Location:  loc,
		OutputDir: cfg.OutputDir,
	}, logger)

	if err := generator.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Feed generation failed")
		return fmt.Errorf("failed to generate feeds: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newGenerateCmd())
}
