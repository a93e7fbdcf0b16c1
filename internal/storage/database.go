package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/nerd/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// ErrNotFound is returned when a mutation targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps foreign keys on.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CardPatch holds the card fields of a partial update. Nil fields keep
// their stored value.
type CardPatch struct {
	Title    *string
	Question *string
	Answer   *string
}

// InsertTopic inserts a new topic and returns its ID.
func (db *DB) InsertTopic(name string) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO topics (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert topic %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for topic %s: %w", name, err)
	}
	return id, nil
}

// FindTopic retrieves a topic by its ID.
func (db *DB) FindTopic(id int64) (*domain.Topic, error) {
	var t domain.Topic
	err := db.conn.QueryRow(`SELECT id, name FROM topics WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Topic not found
		}
		return nil, fmt.Errorf("failed to find topic %d: %w", id, err)
	}
	return &t, nil
}

// GetAllTopics retrieves all topics ordered by ID.
func (db *DB) GetAllTopics() ([]domain.Topic, error) {
	rows, err := db.conn.Query(`SELECT id, name FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all topics: %w", err)
	}
	defer rows.Close()

	topics := []domain.Topic{}
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// RenameTopic sets the name of a topic.
func (db *DB) RenameTopic(id int64, name string) error {
	res, err := db.conn.Exec(`UPDATE topics SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename topic %d: %w", id, err)
	}
	return expectRow(res)
}

// DeleteTopic removes a topic and, through the foreign key, its cards.
func (db *DB) DeleteTopic(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete topic %d: %w", id, err)
	}
	return expectRow(res)
}

// InsertCard inserts a new card and returns its ID.
func (db *DB) InsertCard(card domain.Card) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO cards (title, question, answer, topic_id)
		VALUES (?, ?, ?, ?)
	`,
		card.Title,
		card.Question,
		nullString(card.Answer),
		card.TopicID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card %q: %w", card.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for card %q: %w", card.Title, err)
	}
	return id, nil
}

// FindCard retrieves a card by its ID.
func (db *DB) FindCard(id int64) (*domain.Card, error) {
	row := db.conn.QueryRow(`
		SELECT id, title, question, answer, topic_id
		FROM cards WHERE id = ?
	`, id)

	c, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card %d: %w", id, err)
	}
	return c, nil
}

// GetCards retrieves the cards of a topic ordered by ID. A topicID of zero
// returns every card.
func (db *DB) GetCards(topicID int64) ([]domain.Card, error) {
	query := `SELECT id, title, question, answer, topic_id FROM cards`
	var args []any
	if topicID > 0 {
		query += ` WHERE topic_id = ?`
		args = append(args, topicID)
	}
	query += ` ORDER BY id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for topic %d: %w", topicID, err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for topic %d: %w", topicID, err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// UpdateCard applies a partial update to a card.
func (db *DB) UpdateCard(id int64, p CardPatch) error {
	res, err := db.conn.Exec(`
		UPDATE cards
		SET title = COALESCE(?, title),
		    question = COALESCE(?, question),
		    answer = COALESCE(?, answer)
		WHERE id = ?
	`,
		ptrValue(p.Title),
		ptrValue(p.Question),
		ptrValue(p.Answer),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", id, err)
	}
	return expectRow(res)
}

// DeleteCard removes a card by its ID.
func (db *DB) DeleteCard(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return expectRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*domain.Card, error) {
	var c domain.Card
	var answer sql.NullString
	if err := s.Scan(&c.ID, &c.Title, &c.Question, &answer, &c.TopicID); err != nil {
		return nil, err
	}
	c.Answer = answer.String
	return &c, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
