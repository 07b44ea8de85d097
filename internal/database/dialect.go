package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) (string, error)

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertCategoryRecord returns the insert-or-replace statement for one
	// (child_id, category) record, bumping its version. Arguments: child_id,
	// category, play_data, graph_data, developmental_age.
	UpsertCategoryRecord() string

	// InsertCategoryRecordIfAbsent returns an insert that affects no rows when
	// the (child_id, category) record already exists. Same arguments as
	// UpsertCategoryRecord.
	InsertCategoryRecordIfAbsent() string

	// UpsertSetting returns the insert-or-replace statement for a setting.
	// Arguments: name, value.
	UpsertSetting() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// onConflictUpsertRecord works for both SQLite (3.24+) and PostgreSQL
const onConflictUpsertRecord = `
	INSERT INTO category_records (child_id, category, play_data, graph_data, developmental_age, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (child_id, category) DO UPDATE SET
		play_data = excluded.play_data,
		graph_data = excluded.graph_data,
		developmental_age = excluded.developmental_age,
		version = category_records.version + 1,
		updated_at = CURRENT_TIMESTAMP
`

const onConflictInsertRecordIfAbsent = `
	INSERT INTO category_records (child_id, category, play_data, graph_data, developmental_age, version, updated_at)
	VALUES (?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
	ON CONFLICT (child_id, category) DO NOTHING
`

const onConflictUpsertSetting = `
	INSERT INTO settings (name, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (name) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
`
