package database

const schema = `
CREATE TABLE history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	timestamp TEXT NOT NULL
);

CREATE INDEX idx_history_user_id ON history(user_id, id);

CREATE TABLE stats (
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, title)
);

CREATE INDEX idx_stats_count ON stats(user_id, count);
`

// migrations contains incremental schema changes
// Each migration is applied in order based on the current user_version
// migrations[0] is empty because version 0 uses the base schema
var migrations = []string{
	"",
}
