package postgres

// Schema is the campaign schema, written to be re-runnable. The partial
// unique index on value only covers live rows so a soft-deleted code frees
// its value for re-issue.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		tg_id          BIGINT NOT NULL UNIQUE,
		tg_first_name  TEXT NOT NULL DEFAULT '',
		tg_last_name   TEXT NOT NULL DEFAULT '',
		first_name     TEXT NOT NULL DEFAULT '',
		phone_number   TEXT NOT NULL DEFAULT '',
		lang           TEXT NOT NULL DEFAULT 'uz',
		registered_at  TIMESTAMPTZ NOT NULL,
		last_active_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gifts (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		tier        TEXT NOT NULL,
		total_count INTEGER NOT NULL DEFAULT 0,
		used_count  INTEGER NOT NULL DEFAULT 0,
		deleted_at  TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS codes (
		id            BIGINT PRIMARY KEY,
		value         TEXT NOT NULL,
		version       INTEGER NOT NULL DEFAULT 1,
		gift_id       TEXT REFERENCES gifts(id),
		is_used       BOOLEAN NOT NULL DEFAULT FALSE,
		used_by_id    TEXT REFERENCES users(id),
		used_at       TEXT,
		gift_given_at TIMESTAMPTZ,
		gift_given_by TEXT,
		created_at    TIMESTAMPTZ NOT NULL,
		deleted_at    TIMESTAMPTZ,
		deleted_by    TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS codes_value_live_uq
		ON codes (value) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS codes_used_by_idx
		ON codes (used_by_id) WHERE is_used AND deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS code_attempts (
		id         TEXT PRIMARY KEY,
		raw_text   TEXT NOT NULL,
		code_id    BIGINT,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS code_attempts_user_idx ON code_attempts (user_id)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id                  INTEGER PRIMARY KEY,
		code_limit_enabled  BOOLEAN NOT NULL DEFAULT FALSE,
		code_limit_per_user INTEGER NOT NULL DEFAULT 0,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
}
