package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mappings (
	thread_id  TEXT PRIMARY KEY,
	card_id    TEXT NOT NULL UNIQUE,
	card_name  TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS processed_actions (
	id           TEXT PRIMARY KEY,
	action_type  TEXT NOT NULL DEFAULT '',
	card_id      TEXT NOT NULL DEFAULT '',
	run_id       TEXT NOT NULL DEFAULT '',
	processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_processed_actions_processed_at
	ON processed_actions(processed_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
