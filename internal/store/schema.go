package store

// SQL schema for the notes store. One shared database; every row carries
// its owner and every query filters on it.

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_user_updated
    ON notes(user_id, updated_at DESC);
`
