// Package export writes a snapshot of every topic and card to a local file
// or to an S3 bucket.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conorfennell/nerd/internal/domain"
)

// TopicSnapshot is one topic and its cards.
type TopicSnapshot struct {
	ID    int64         `json:"id" yaml:"id"`
	Name  string        `json:"name" yaml:"name"`
	Cards []domain.Card `json:"cards" yaml:"cards"`
}

// Snapshot is the exported state of the server, topics in server order.
type Snapshot struct {
	Topics []TopicSnapshot `json:"topics" yaml:"topics"`
}

// CardCount returns the number of cards across all topics.
func (s Snapshot) CardCount() int {
	n := 0
	for _, t := range s.Topics {
		n += len(t.Cards)
	}
	return n
}

type TopicLister interface {
	List(ctx context.Context) ([]domain.Topic, error)
}

type CardLister interface {
	List(ctx context.Context, scope domain.Scope) ([]domain.Card, error)
}

// Take reads every topic and the cards of each topic.
func Take(ctx context.Context, topics TopicLister, cards CardLister) (Snapshot, error) {
	all, err := topics.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list topics: %w", err)
	}
	snap := Snapshot{Topics: make([]TopicSnapshot, 0, len(all))}
	for _, t := range all {
		tc, err := cards.List(ctx, domain.ScopeOf(t))
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to list cards of topic %d: %w", t.ID, err)
		}
		if tc == nil {
			tc = []domain.Card{}
		}
		snap.Topics = append(snap.Topics, TopicSnapshot{ID: t.ID, Name: t.Name, Cards: tc})
	}
	return snap, nil
}

// Encode writes s to w as "json" or "yaml".
func (s Snapshot) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode snapshot as json: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode snapshot as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if strings.EqualFold(format, "json") {
		return "application/json"
	}
	return "application/yaml"
}
