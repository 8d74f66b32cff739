package cache

// Schema contains SQL schema definitions for the body archive
const Schema = `
-- Bodies table, one row per message and representation
CREATE TABLE IF NOT EXISTS bodies (
    account TEXT NOT NULL,
    folder TEXT NOT NULL,
    uid INTEGER NOT NULL,
    is_html INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL,
    cached_at INTEGER NOT NULL,
    PRIMARY KEY (account, folder, uid, is_html)
);

CREATE INDEX IF NOT EXISTS idx_bodies_cached_at ON bodies(cached_at);
`
