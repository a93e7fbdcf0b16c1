package storage

const schema = `
-- The 'topics' table holds the named groupings of cards.
CREATE TABLE IF NOT EXISTS topics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

-- The 'cards' table stores each flashcard. Deleting a topic deletes its cards.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    question TEXT NOT NULL,
    answer TEXT,
    topic_id INTEGER NOT NULL,

    FOREIGN KEY(topic_id) REFERENCES topics(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS cards_topic_id ON cards(topic_id);
`
