package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWindows are the activity feed windows, in days.
var DefaultWindows = []int{7, 30}

// SnapshotWriter persists a snapshot and its HTML viewer.
type SnapshotWriter interface {
	WriteTOML(path string, snapshot any) error
	WriteHTMLWrapper(tomlPath string) error
}

// GeneratorConfig describes one generation run.
type GeneratorConfig struct {
	Username  string
	Location  *time.Location
	OutputDir string
	Windows   []int
}

// Generator runs the inventory, todos and activity pipeline in sequence.
type Generator struct {
	aggregator *Aggregator
	writer     SnapshotWriter
	cfg        GeneratorConfig
	logger     zerolog.Logger
}

// NewGenerator creates a Generator. Empty Windows default to DefaultWindows.
func NewGenerator(aggregator *Aggregator, writer SnapshotWriter, cfg GeneratorConfig, logger zerolog.Logger) *Generator {
	if len(cfg.Windows) == 0 {
		cfg.Windows = DefaultWindows
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Generator{aggregator: aggregator, writer: writer, cfg: cfg, logger: logger}
}

// Run builds and writes every snapshot. It stops at the first build or HTML wrapper failure.
func (g *Generator) Run(ctx context.Context) error {
	g.logger.Info().Str("user", g.cfg.Username).Msg("Starting feed generation...")

	g.logger.Info().Msg("Building repository inventory...")
	inventory, err := g.aggregator.BuildInventory(ctx, g.cfg.Username)
	if err != nil {
		return fmt.Errorf("failed to build inventory: %w", err)
	}
	if err := g.write("inventory.toml", inventory); err != nil {
		return err
	}

	g.logger.Info().Msg("Building aggregated TODOs...")
	todos, err := g.aggregator.BuildTodos(ctx, inventory)
	if err != nil {
		return fmt.Errorf("failed to build todos: %w", err)
	}
	if err := g.write("todos.toml", todos); err != nil {
		return err
	}

	for _, days := range g.cfg.Windows {
		g.logger.Info().Int("days", days).Msg("Building activity feed...")
		activity, err := g.aggregator.BuildActivity(ctx, g.cfg.Username, g.cfg.Location, days)
		if err != nil {
			return fmt.Errorf("failed to build %d-day activity: %w", days, err)
		}
		if err := g.write(fmt.Sprintf("latest-%dd.toml", days), activity); err != nil {
			return err
		}
	}

	g.logger.Info().Str("dir", g.cfg.OutputDir).Msg("Successfully generated all feeds")
	return nil
}

// write stores the TOML snapshot and its HTML wrapper.
// A TOML failure is logged and tolerated; the wrapper failure is not.
func (g *Generator) write(name string, snapshot any) error {
	path := filepath.Join(g.cfg.OutputDir, name)
	if err := g.writer.WriteTOML(path, snapshot); err != nil {
		g.logger.Warn().Err(err).Str("path", path).Msg("Continuing without a fresh TOML file")
	}
	if err := g.writer.WriteHTMLWrapper(path); err != nil {
		return fmt.Errorf("failed to write HTML wrapper for %s: %w", name, err)
	}
	return nil
}
