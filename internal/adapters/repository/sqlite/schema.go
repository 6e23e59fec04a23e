package sqlite

// schema is executed on every Open; statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS portfolio_items (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL,
	summary       TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL,
	mission_id    TEXT NOT NULL DEFAULT '',
	import_meta   TEXT NOT NULL DEFAULT '',
	skills        TEXT NOT NULL DEFAULT '',
	competencies  TEXT NOT NULL DEFAULT '',
	evidence      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	visibility    TEXT NOT NULL,
	views         INTEGER NOT NULL DEFAULT 0,
	contacts      INTEGER NOT NULL DEFAULT 0,
	version       INTEGER NOT NULL DEFAULT 1,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	approved_at   INTEGER,
	published_at  INTEGER
);

CREATE INDEX IF NOT EXISTS idx_items_user ON portfolio_items(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_items_mission
	ON portfolio_items(user_id, mission_id) WHERE mission_id != '';

CREATE TABLE IF NOT EXISTS portfolio_reviews (
	id               TEXT PRIMARY KEY,
	item_id          TEXT NOT NULL,
	reviewer_id      TEXT NOT NULL,
	reviewer_name    TEXT NOT NULL DEFAULT '',
	criterion_scores TEXT NOT NULL DEFAULT '',
	total            REAL NOT NULL DEFAULT 0,
	comments         TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_item ON portfolio_reviews(item_id);

CREATE TABLE IF NOT EXISTS marketplace_profiles (
	user_id          TEXT PRIMARY KEY,
	username         TEXT NOT NULL,
	headline         TEXT NOT NULL DEFAULT '',
	bio              TEXT NOT NULL DEFAULT '',
	avatar_url       TEXT NOT NULL DEFAULT '',
	readiness_score  REAL NOT NULL DEFAULT 0,
	portfolio_health REAL NOT NULL DEFAULT 0,
	total_views      INTEGER NOT NULL DEFAULT 0,
	weekly_delta     INTEGER NOT NULL DEFAULT 0,
	approved_items   INTEGER NOT NULL DEFAULT 0,
	avg_competency   REAL NOT NULL DEFAULT 0,
	featured_items   TEXT NOT NULL DEFAULT '',
	skills           TEXT NOT NULL DEFAULT '',
	active           INTEGER NOT NULL DEFAULT 1,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
`
