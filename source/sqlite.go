// Package source provides a concrete record source for the CLI: reading
// rows out of a sqlite3 table, grounded in the teacher project's own
// sqlite connection setup (WAL mode, foreign keys on, busy timeout).
package source

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hpcc-systems/Medley/errors"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/logger"
)

// Row is one record read from the source, paired with its entity id.
type Row struct {
	ID     ids.ID
	Fields map[string]string
}

// Value implements hasher.Record: an absent column reports ok=false.
func (r Row) Value(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// SQLiteSource reads demo/example records out of a sqlite3 database
// file.
type SQLiteSource struct {
	db *sql.DB
}

// Open opens path with the same connection pragmas the teacher's
// db.Open uses: WAL journaling, foreign keys enforced, and a busy
// timeout so concurrent readers don't immediately fail on a locked
// database.
func Open(path string) (*SQLiteSource, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "source: opening %s", path)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "source: connecting to %s", path)
	}
	logger.Infow("opened sqlite source", "path", path)
	return &SQLiteSource{db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// ReadRecords reads every row of table, treating idColumn as the entity
// id (parsed as an unsigned integer) and every other column as a string
// field keyed by its column name.
func (s *SQLiteSource) ReadRecords(table, idColumn string) ([]Row, error) {
	columns, err := s.columnNames(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", quoteColumns(columns), quoteIdent(table))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(err, "source: querying table %s", table)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		scanTargets := make([]interface{}, len(columns))
		values := make([]sql.NullString, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.Wrap(err, "source: scanning row")
		}

		fields := make(map[string]string, len(columns))
		var entityID ids.ID
		for i, col := range columns {
			val := values[i].String
			if col == idColumn {
				var parsed uint64
				if _, err := fmt.Sscanf(val, "%d", &parsed); err != nil {
					return nil, errors.Wrapf(err, "source: parsing id column %q value %q", idColumn, val)
				}
				entityID = ids.ID(parsed)
				continue
			}
			fields[col] = val
		}
		out = append(out, Row{ID: entityID, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "source: iterating rows")
	}
	return out, nil
}

func (s *SQLiteSource) columnNames(table string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, errors.Wrapf(err, "source: reading schema for table %s", table)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, errors.Wrap(err, "source: scanning schema row")
		}
		columns = append(columns, name)
	}
	if len(columns) == 0 {
		return nil, errors.Newf("source: table %s has no columns (does it exist?)", table)
	}
	return columns, nil
}

func quoteIdent(ident string) string {
	return `"` + ident + `"`
}

func quoteColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += quoteIdent(c)
	}
	return out
}
