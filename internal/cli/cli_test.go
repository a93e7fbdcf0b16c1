package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conorfennell/nerd/internal/api"
	"github.com/conorfennell/nerd/internal/fields"
	"github.com/conorfennell/nerd/internal/storage"
	"github.com/conorfennell/nerd/internal/web"
)

func newBackend(t *testing.T) (string, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "nerd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	srv := httptest.NewServer(web.NewServer(db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return srv.URL, db
}

func run(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--api-url", apiURL, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, apiURL string, args ...string) string {
	t.Helper()
	out, err := run(t, apiURL, args...)
	if err != nil {
		t.Fatalf("%v: unexpected error %v", args, err)
	}
	return out
}

func TestTopicCommands(t *testing.T) {
	url, db := newBackend(t)

	if out := mustRun(t, url, "topics", "add", "Math"); !strings.Contains(out, `Created topic 1 "Math"`) {
		t.Errorf("Unexpected add output %q", out)
	}
	mustRun(t, url, "topics", "add", "Histroy")
	if out := mustRun(t, url, "topics", "rename", "2", "History"); !strings.Contains(out, `Renamed topic 2 to "History"`) {
		t.Errorf("Unexpected rename output %q", out)
	}

	out := mustRun(t, url, "topics", "list")
	if !strings.Contains(out, "Math") || !strings.Contains(out, "History") || strings.Contains(out, "Histroy") {
		t.Errorf("Unexpected list output:\n%s", out)
	}

	mustRun(t, url, "topics", "rm", "1")
	if topic, _ := db.FindTopic(1); topic != nil {
		t.Errorf("Expected topic 1 to be deleted but got %+v", topic)
	}
}

func TestCardCommands(t *testing.T) {
	url, db := newBackend(t)
	if _, err := db.InsertTopic("History"); err != nil {
		t.Fatalf("insert topic: %v", err)
	}

	out := mustRun(t, url, "cards", "add", "--topic", "1", "--title", "WWI", "--question", "When did it start?", "--answer", "1914")
	if !strings.Contains(out, `Created card 1 "WWI"`) {
		t.Errorf("Unexpected add output %q", out)
	}

	if out := mustRun(t, url, "cards", "list", "--topic", "1"); !strings.Contains(out, "WWI") {
		t.Errorf("Expected WWI in the list but got:\n%s", out)
	}
	if out := mustRun(t, url, "cards", "show", "1"); !strings.Contains(out, "When did it start?") || !strings.Contains(out, "1914") {
		t.Errorf("Expected the rendered card but got:\n%s", out)
	}

	mustRun(t, url, "cards", "edit", "1", "--answer", "28 July 1914")
	card, err := db.FindCard(1)
	if err != nil || card == nil {
		t.Fatalf("find card: %v", err)
	}
	if card.Answer != "28 July 1914" || card.Title != "WWI" {
		t.Errorf("Expected only the answer to change but got %+v", card)
	}

	mustRun(t, url, "cards", "rm", "1")
	if card, _ := db.FindCard(1); card != nil {
		t.Errorf("Expected card 1 to be deleted but got %+v", card)
	}
}

func TestCardCommandErrors(t *testing.T) {
	url, db := newBackend(t)
	if _, err := db.InsertTopic("History"); err != nil {
		t.Fatalf("insert topic: %v", err)
	}

	testCases := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "missing question", args: []string{"cards", "add", "--topic", "1", "--title", "WWI"}, contains: "Question is required"},
		{name: "missing topic flag", args: []string{"cards", "add", "--title", "WWI"}, contains: "topic"},
		{name: "unknown topic", args: []string{"cards", "add", "--topic", "9", "--title", "T", "--question", "Q"}, contains: "topic 9 does not exist"},
		{name: "nothing to edit", args: []string{"cards", "edit", "1"}, contains: "nothing to change"},
		{name: "bad id", args: []string{"cards", "rm", "abc"}, contains: `invalid id "abc"`},
		{name: "missing card", args: []string{"cards", "show", "42"}, contains: "404"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, url, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected an error containing %q but got %v", tc.contains, err)
			}
		})
	}

	_, err := run(t, url, "cards", "add", "--topic", "1", "--title", "WWI")
	var verr *fields.ValidationError
	if !errors.As(err, &verr) || verr.Field != "question" {
		t.Errorf("Expected a question validation error but got %v", err)
	}
}

func TestImportAndExport(t *testing.T) {
	url, db := newBackend(t)
	if _, err := db.InsertTopic("History"); err != nil {
		t.Fatalf("insert topic: %v", err)
	}
	notes := t.TempDir()
	deck := "T: WWI\nQ: When did it start?\nA: 1914\n---\nQ: When did WWII end?\nA: 1945\n"
	if err := os.WriteFile(filepath.Join(notes, "history.md"), []byte(deck), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	out := mustRun(t, url, "import", "--topic", "1", notes)
	if !strings.Contains(out, "Found 2 cards in 1 files: 2 created, 0 skipped, 0 errors.") {
		t.Errorf("Unexpected import output %q", out)
	}
	out = mustRun(t, url, "import", "--topic", "1", notes)
	if !strings.Contains(out, "0 created, 2 skipped") {
		t.Errorf("Expected a second import to skip every card but got %q", out)
	}

	out = mustRun(t, url, "export", "--format", "yaml")
	if !strings.Contains(out, "name: History") || !strings.Contains(out, "title: WWI") {
		t.Errorf("Unexpected yaml export:\n%s", out)
	}

	target := filepath.Join(t.TempDir(), "snap.json")
	out = mustRun(t, url, "export", "--out", target)
	if !strings.Contains(out, "Exported 1 topics and 2 cards") {
		t.Errorf("Unexpected export output %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil || !strings.Contains(string(data), `"title": "WWI"`) {
		t.Errorf("Expected the snapshot in %s but got %q (%v)", target, data, err)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := run(t, url, "topics", "list")
	var nerr *api.NetworkError
	if !errors.As(err, &nerr) {
		t.Errorf("Expected a network error but got %v", err)
	}
}
