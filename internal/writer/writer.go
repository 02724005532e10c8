// Package writer serializes snapshots to TOML and wraps them in a static HTML viewer.
package writer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

//go:embed templates/wrapper.html.tmpl
var templates embed.FS

// HTMLSuffix is appended to a TOML file name to form its HTML wrapper name.
const HTMLSuffix = ".html"

// Writer writes snapshot files.
type Writer struct {
	wrapper *template.Template
	logger  zerolog.Logger
}

// New parses the embedded HTML template.
func New(logger zerolog.Logger) (*Writer, error) {
	tmpl, err := template.ParseFS(templates, "templates/wrapper.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Writer{wrapper: tmpl, logger: logger}, nil
}

// WriteTOML encodes snapshot as TOML to path, creating parent directories.
// Nil pointers and empty optional lists are omitted.
func (w *Writer) WriteTOML(path string, snapshot any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.logger.Error().Err(err).Str("path", path).Msg("Failed to write TOML file")
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(snapshot); err != nil {
		w.logger.Error().Err(err).Str("path", path).Msg("Failed to write TOML file")
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		w.logger.Error().Err(err).Str("path", path).Msg("Failed to write TOML file")
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.logger.Info().Str("path", path).Msg("Successfully wrote TOML file")
	return nil
}

// WriteHTMLWrapper renders the TOML file at tomlPath into a static page at tomlPath + ".html".
func (w *Writer) WriteHTMLWrapper(tomlPath string) error {
	htmlPath := tomlPath + HTMLSuffix

	content, err := os.ReadFile(tomlPath)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Error().Str("path", tomlPath).Msg("Cannot create HTML wrapper: source file not found")
		return fmt.Errorf("source file %s not found: %w", tomlPath, err)
	}
	if err != nil {
		w.logger.Error().Err(err).Str("path", htmlPath).Msg("Failed to write HTML wrapper")
		return fmt.Errorf("failed to read %s: %w", tomlPath, err)
	}

	var buf bytes.Buffer
	data := struct {
		Title   string
		Content string
	}{
		Title:   filepath.Base(tomlPath),
		Content: string(content),
	}
	if err := w.wrapper.Execute(&buf, data); err != nil {
		w.logger.Error().Err(err).Str("path", htmlPath).Msg("Failed to write HTML wrapper")
		return fmt.Errorf("failed to render template: %w", err)
	}
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		w.logger.Error().Err(err).Str("path", htmlPath).Msg("Failed to write HTML wrapper")
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}

	w.logger.Info().Str("path", htmlPath).Msg("Successfully wrote HTML wrapper")
	return nil
}
