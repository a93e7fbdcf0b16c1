// Package importer creates cards from Markdown notes in a local directory or
// a git repository.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/fields"
	"github.com/conorfennell/nerd/internal/gitsource"
	"github.com/conorfennell/nerd/internal/knol"
	"github.com/conorfennell/nerd/internal/parser"
)

// CardStore is the part of the card repository the importer needs.
type CardStore interface {
	List(ctx context.Context, scope domain.Scope) ([]domain.Card, error)
	Create(ctx context.Context, p fields.Payload) (domain.Card, error)
}

// Report counts the outcome of one import.
type Report struct {
	Files   int
	Parsed  int
	Created int
	Skipped int
	Errors  []error
}

type Importer struct {
	cards    CardStore
	cacheDir string
	logger   *slog.Logger
	// Progress receives git clone and pull output. It may be nil.
	Progress io.Writer
}

func New(cards CardStore, cacheDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{cards: cards, cacheDir: cacheDir, logger: logger}
}

// Import creates a card under topicID for every note in source whose
// content is not already in the topic. Per-file and per-card failures are
// collected in the report; only failures that stop the whole import are
// returned as an error.
func (im *Importer) Import(ctx context.Context, topicID int64, source string) (Report, error) {
	var report Report
	if topicID <= 0 {
		return report, errors.New("a topic is required to import cards")
	}

	dir, err := im.resolve(ctx, source)
	if err != nil {
		return report, err
	}

	existing, err := im.cards.List(ctx, domain.Scope{TopicID: topicID})
	if err != nil {
		return report, fmt.Errorf("failed to list cards of topic %d: %w", topicID, err)
	}
	seen := knol.NewIndex(existing)

	im.logger.Info("Importing notes", "source", source, "dir", dir, "topic_id", topicID, "existing", len(existing))
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		report.Files++
		cards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		for _, card := range cards {
			report.Parsed++
			if !seen.Add(card) {
				im.logger.Debug("Skipping known card", "hash", knol.Hash(card), "file", path)
				report.Skipped++
				continue
			}
			card.TopicID = topicID
			if err := im.create(ctx, card); err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("%s: card %q: %w", path, card.Title, err))
				continue
			}
			report.Created++
		}
		return ctx.Err()
	})
	if walkErr != nil {
		return report, fmt.Errorf("failed to walk %s: %w", dir, walkErr)
	}

	im.logger.Info("Import complete",
		"source", source,
		"files", report.Files,
		"parsed_cards", report.Parsed,
		"created", report.Created,
		"skipped", report.Skipped,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (im *Importer) create(ctx context.Context, card domain.Card) error {
	p, err := fields.CardSchema.Collect(fields.CardValues(card), fields.Create)
	if err != nil {
		return err
	}
	created, err := im.cards.Create(ctx, p)
	if err != nil {
		return err
	}
	im.logger.Debug("Created card", "id", created.ID, "title", card.Title)
	return nil
}

// resolve returns the local directory holding the notes of source, syncing
// a git checkout under the cache directory first when source is remote.
func (im *Importer) resolve(ctx context.Context, source string) (string, error) {
	if gitsource.IsRemote(source) {
		local, err := gitsource.LocalPath(im.cacheDir, source)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return "", fmt.Errorf("failed to create cache directory: %w", err)
		}
		if err := gitsource.Sync(ctx, source, local, im.Progress); err != nil {
			return "", err
		}
		return local, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("failed to open source %s: %w", source, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory", source)
	}
	return source, nil
}
