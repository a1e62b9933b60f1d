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

CREATE TABLE IF NOT EXISTS activity (
	id              TEXT PRIMARY KEY,
	notification_id INTEGER NOT NULL,
	message         TEXT NOT NULL,
	type            TEXT NOT NULL CHECK(type IN ('info', 'success', 'error')),
	created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_created ON activity(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_activity_type_created
	ON activity(type, created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
