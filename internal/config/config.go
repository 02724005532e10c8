// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/naka-gawa/gh-status/internal/trigger"
)

var (
	// ErrMissingCredentials is returned when the username or token is not set.
	ErrMissingCredentials = errors.New("GitHub username and token are required; set GITHUB_USERNAME and GITHUB_TOKEN or use flags")
	// ErrUnknownTimezone is returned when TZ_NAME is not a valid IANA zone.
	ErrUnknownTimezone = errors.New("unknown timezone")
)

// Config holds all gh-status configuration.
type Config struct {
	Username     string `envconfig:"GITHUB_USERNAME"`
	Token        string `envconfig:"GITHUB_TOKEN"`
	TZName       string `envconfig:"TZ_NAME" default:"America/New_York"`
	Schedule     string `envconfig:"GH_STATUS_SCHEDULE" default:"0 17 * * *"`
	HotRepoCount int    `envconfig:"HOT_REPO_COUNT" default:"3"`
	CachePath    string `envconfig:"GH_STATUS_CACHE" default:".cache/gh-status.db"`
	Concurrency  int    `envconfig:"GH_STATUS_CONCURRENCY" default:"1"`
	APIURL       string `envconfig:"GITHUB_API_URL"`
	GraphQLURL   string `envconfig:"GITHUB_GRAPHQL_URL"`

	OutputDir string `ignored:"true"`
}

// Load reads an optional .env file from envFile, then the process environment.
// Variables already present in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.OutputDir = "docs"
	return cfg, nil
}

// Validate checks credentials and resolves the timezone and trigger policy.
// It performs no network activity.
func (c Config) Validate() (*time.Location, *trigger.Policy, error) {
	if c.Username == "" || c.Token == "" {
		return nil, nil, ErrMissingCredentials
	}
	if c.HotRepoCount < 0 {
		return nil, nil, fmt.Errorf("hot repo count must not be negative, got %d", c.HotRepoCount)
	}
	if c.Concurrency < 1 {
		return nil, nil, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}

	loc, err := time.LoadLocation(c.TZName)
	if err != nil || c.TZName == "" {
		return nil, nil, fmt.Errorf("%w: %q, set the TZ_NAME environment variable correctly", ErrUnknownTimezone, c.TZName)
	}

	policy, err := trigger.New(c.Schedule, loc)
	if err != nil {
		return nil, nil, err
	}
	return loc, policy, nil
}
