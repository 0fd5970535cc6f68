package serverdb

// ServerSchemaVersion is the current document database schema version
const ServerSchemaVersion = 2

const serverSchema = `
-- Documents table. seq preserves creation order across updates.
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    data TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, id)
);

-- Schema info table
CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_order ON documents(collection, seq);
`

// Migration defines a document database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations is the list of all document database migrations in order
var Migrations = []Migration{
	// Version 1 is the initial schema - no migration needed
	{
		Version:     2,
		Description: "Add updated_at index for recent-change queries",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);`,
	},
}
