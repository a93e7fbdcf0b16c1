package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{name: "https", url: "https://github.com/user/notes.git", expected: filepath.Join("repos", "github.com", "user", "notes")},
		{name: "https without suffix", url: "https://gitlab.com/group/sub/cards", expected: filepath.Join("repos", "gitlab.com", "group", "sub", "cards")},
		{name: "scp-like", url: "git@github.com:user/notes.git", expected: filepath.Join("repos", "github.com", "user", "notes")},
		{name: "ssh", url: "ssh://git@host.example/team/deck.git", expected: filepath.Join("repos", "host.example", "team", "deck")},
		{name: "plain path", url: "just/a/dir", wantErr: true},
		{name: "path escapes cache", url: "https://host/../../x", wantErr: true},
		{name: "scp-like path escapes cache", url: "git@host:../../x.git", wantErr: true},
		{name: "path resolves to cache", url: "https://host/..", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected an error but got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s but got %s", tc.expected, got)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	testCases := map[string]bool{
		"https://github.com/user/notes.git": true,
		"git@github.com:user/notes.git":     true,
		"ssh://host/repo":                   true,
		"./notes":                           false,
		"/home/me/notes":                    false,
	}
	for source, expected := range testCases {
		if got := IsRemote(source); got != expected {
			t.Errorf("Expected IsRemote(%q) to be %v but got %v", source, expected, got)
		}
	}
}

// newOrigin creates a repository with one committed note.
func newOrigin(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deck.md"), []byte("Q: Ping?\nA: Pong\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("deck.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = wt.Commit("add deck", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return dir
}

func TestSyncClonesThenPulls(t *testing.T) {
	origin := newOrigin(t)
	dest := filepath.Join(t.TempDir(), "checkout")

	if err := Sync(context.Background(), origin, dest, nil); err != nil {
		t.Fatalf("Expected clone to succeed but got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "deck.md")); err != nil {
		t.Fatalf("Expected deck.md in the checkout: %v", err)
	}

	if err := Sync(context.Background(), origin, dest, nil); err != nil {
		t.Errorf("Expected an up-to-date pull to succeed but got %v", err)
	}
}
