package db

// migrations holds the full schema history. Append only; never edit an
// applied migration.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_articles_table",
		Up: `
			CREATE TABLE IF NOT EXISTS articles (
				id BIGSERIAL PRIMARY KEY,
				url TEXT NOT NULL UNIQUE,
				title TEXT,
				author TEXT,
				content TEXT NOT NULL,
				summary TEXT,
				tags TEXT NOT NULL DEFAULT '[]',
				word_count INTEGER NOT NULL DEFAULT 0,
				has_read BOOLEAN NOT NULL DEFAULT FALSE,
				rating INTEGER NOT NULL DEFAULT 0 CHECK (rating >= 0 AND rating <= 5),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_articles_has_read ON articles(has_read);
		`,
		Down: `DROP TABLE IF EXISTS articles;`,
	},
	{
		Version: 2,
		Name:    "add_snapshot_path",
		Up: `
			ALTER TABLE articles ADD COLUMN IF NOT EXISTS snapshot_path TEXT NOT NULL DEFAULT '';
		`,
		Down: `ALTER TABLE articles DROP COLUMN IF EXISTS snapshot_path;`,
	},
}
