package store

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Contract opportunities as imported from the procurement portal export.
CREATE TABLE IF NOT EXISTS opportunities (
    notice_id   TEXT PRIMARY KEY,
    title       TEXT NOT NULL DEFAULT '',
    agency      TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    posted_at   TEXT NOT NULL DEFAULT '',
    archived    INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_opportunities_posted ON opportunities(posted_at);

-- One summary attempt result per opportunity. Exactly one of bullets or
-- error is non-empty.
CREATE TABLE IF NOT EXISTS summaries (
    notice_id    TEXT PRIMARY KEY,
    bullets      TEXT NOT NULL DEFAULT '',
    error        TEXT NOT NULL DEFAULT '',
    generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (notice_id) REFERENCES opportunities(notice_id) ON DELETE CASCADE
);

-- One record per bulk run, for the runs listing.
CREATE TABLE IF NOT EXISTS runs (
    run_id      TEXT PRIMARY KEY,
    attempted   INTEGER NOT NULL,
    successful  INTEGER NOT NULL,
    aborted     INTEGER NOT NULL DEFAULT 0,
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
