package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/naka-gawa/gh-status/internal/domain"
)

// todoFilenames are probed in order; the first one present wins.
var todoFilenames = []string{"docs/TODO.md", "TODO.md", "todo.md", "docs/ROADMAP.md"}

const maxSynopsisLines = 5

var listMarker = regexp.MustCompile(`^\s*[-*]\s*(\[[ xX]\])?\s*`)

// NormalizeTodoLine strips markdown list and checkbox markers and surrounding whitespace.
func NormalizeTodoLine(line string) string {
	return strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
}

// ParseTodos returns the normalized, non-empty lines of a TODO document.
func ParseTodos(content string) []string {
	todos := []string{}
	for _, line := range strings.Split(content, "\n") {
		if normalized := NormalizeTodoLine(line); normalized != "" {
			todos = append(todos, normalized)
		}
	}
	return todos
}

// Synopsis returns up to five trimmed README lines that are neither blank nor headings.
func Synopsis(readme string) []string {
	lines := []string{}
	for _, line := range strings.Split(strings.TrimSpace(readme), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxSynopsisLines {
			break
		}
	}
	return lines
}

// BuildTodos builds the aggregated TODO list for every repository of the inventory.
func (a *Aggregator) BuildTodos(ctx context.Context, inventory *domain.Inventory) (*domain.Todos, error) {
	records := make([]*domain.TodoRecord, 0, len(inventory.Repos))
	for _, repo := range inventory.Repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := &domain.TodoRecord{Full: repo.Full}

		for _, filename := range todoFilenames {
			content, ok := a.fetcher.FetchFile(ctx, repo.Full, filename)
			if !ok || content == "" {
				continue
			}
			a.logger.Info().Str("repo", repo.Full).Str("file", filename).Msg("Found TODOs")
			record.Todos = ParseTodos(content)
			break
		}

		readme := ""
		if repo.Readme != nil && *repo.Readme != "" {
			readme = *repo.Readme
		} else if content, ok := a.fetcher.FetchFile(ctx, repo.Full, "README.md"); ok {
			readme = content
		}
		if readme != "" {
			record.Synopsis = Synopsis(readme)
		}

		records = append(records, record)
	}

	return &domain.Todos{
		SchemaVersion: domain.SchemaVersion,
		Username:      inventory.Username,
		GeneratedUTC:  a.nowUTC(),
		Repos:         records,
	}, nil
}
