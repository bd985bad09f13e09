package index

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

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	thread_id   TEXT NOT NULL,
	parent_id   TEXT NOT NULL DEFAULT '',
	from_addr   TEXT NOT NULL DEFAULT '',
	author      TEXT NOT NULL DEFAULT '',
	to_addr     TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	date        INTEGER NOT NULL DEFAULT 0,
	filename    TEXT NOT NULL DEFAULT '',
	indexed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);
CREATE INDEX IF NOT EXISTS idx_messages_parent ON messages(parent_id);
CREATE INDEX IF NOT EXISTS idx_messages_date ON messages(date);

CREATE TABLE IF NOT EXISTS tags (
	message_id  TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	tag         TEXT NOT NULL,
	PRIMARY KEY (message_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS message_refs (
	message_id  TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	ref_id      TEXT NOT NULL,
	PRIMARY KEY (message_id, ref_id)
);

CREATE INDEX IF NOT EXISTS idx_message_refs_ref ON message_refs(ref_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
