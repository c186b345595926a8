package store

// schema defines the materials table. Applied on first use; CREATE TABLE IF
// NOT EXISTS keeps initialization idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS materials (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	content    BLOB NOT NULL,
	mime_type  TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_materials_created_at ON materials (created_at DESC);
`
