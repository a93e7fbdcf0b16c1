package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/conorfennell/nerd/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nerd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTopics(t *testing.T) {
	db := setupTestDB(t)

	mathID, err := db.InsertTopic("Math")
	if err != nil {
		t.Fatalf("insert topic: %v", err)
	}
	if _, err := db.InsertTopic("History"); err != nil {
		t.Fatalf("insert topic: %v", err)
	}

	if err := db.RenameTopic(mathID, "Algebra"); err != nil {
		t.Fatalf("rename topic: %v", err)
	}
	topic, err := db.FindTopic(mathID)
	if err != nil || topic == nil {
		t.Fatalf("find topic: %v, %v", topic, err)
	}
	if topic.Name != "Algebra" {
		t.Errorf("Expected renamed topic 'Algebra', got '%s'", topic.Name)
	}

	topics, err := db.GetAllTopics()
	if err != nil {
		t.Fatalf("get topics: %v", err)
	}
	if len(topics) != 2 || topics[0].ID != mathID || topics[1].Name != "History" {
		t.Errorf("Unexpected topics %+v", topics)
	}

	missing, err := db.FindTopic(999)
	if err != nil || missing != nil {
		t.Errorf("Expected (nil, nil) for a missing topic, got %v, %v", missing, err)
	}
	if err := db.RenameTopic(999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCards(t *testing.T) {
	db := setupTestDB(t)
	history, _ := db.InsertTopic("History")
	math, _ := db.InsertTopic("Math")

	id, err := db.InsertCard(domain.Card{Title: "WWI", Question: "Year?", Answer: "1914", TopicID: history})
	if err != nil {
		t.Fatalf("insert card: %v", err)
	}
	if _, err := db.InsertCard(domain.Card{Title: "Pi", Question: "Value?", TopicID: math}); err != nil {
		t.Fatalf("insert card: %v", err)
	}

	card, err := db.FindCard(id)
	if err != nil || card == nil {
		t.Fatalf("find card: %v, %v", card, err)
	}
	want := domain.Card{ID: id, Title: "WWI", Question: "Year?", Answer: "1914", TopicID: history}
	if *card != want {
		t.Errorf("Expected %+v, got %+v", want, *card)
	}

	scoped, err := db.GetCards(history)
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != id {
		t.Errorf("Expected only card %d under history, got %+v", id, scoped)
	}
	all, _ := db.GetCards(0)
	if len(all) != 2 {
		t.Errorf("Expected 2 cards unscoped, got %d", len(all))
	}

	question := "Which year?"
	if err := db.UpdateCard(id, CardPatch{Question: &question}); err != nil {
		t.Fatalf("update card: %v", err)
	}
	card, _ = db.FindCard(id)
	if card.Question != "Which year?" || card.Title != "WWI" || card.Answer != "1914" {
		t.Errorf("Expected partial update to keep other fields, got %+v", *card)
	}

	if err := db.DeleteCard(id); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	if err := db.DeleteCard(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInsertCardUnknownTopic(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.InsertCard(domain.Card{Title: "T", Question: "Q", TopicID: 42}); err == nil {
		t.Error("Expected foreign key violation for unknown topic")
	}
}

func TestDeleteTopicCascades(t *testing.T) {
	db := setupTestDB(t)
	topic, _ := db.InsertTopic("History")
	if _, err := db.InsertCard(domain.Card{Title: "WWI", Question: "Year?", TopicID: topic}); err != nil {
		t.Fatalf("insert card: %v", err)
	}
	if err := db.DeleteTopic(topic); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	cards, _ := db.GetCards(0)
	if len(cards) != 0 {
		t.Errorf("Expected cards of deleted topic to be gone, got %+v", cards)
	}
}
