package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"

	"github.com/LFKoning/reddit-reader/internal/config"
	"github.com/LFKoning/reddit-reader/internal/record"
)

// databaseFile is the SQLite file name under the storage root.
const databaseFile = "reddit.db"

// Base columns written regardless of the field configuration.
var baseColumns = map[string][]string{
	EntitySubmissions: {"id"},
	EntityComments:    {"id", "parent_id", "submission_id"},
}

// SQLiteStorage implements Store using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the database under the storage root and creates
// the submissions and comments tables from the field configuration. Schema
// creation is idempotent.
func NewSQLiteStorage(storagePath string, fields config.Fields) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", filepath.Join(storagePath, databaseFile))
	if err != nil {
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initDB(fields); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database schema
func (s *SQLiteStorage) initDB(fields config.Fields) error {
	for entityType, base := range baseColumns {
		defs := []string{"id TEXT PRIMARY KEY"}
		for _, column := range base[1:] {
			defs = append(defs, column+" TEXT NOT NULL")
		}
		for _, field := range fields.For(entityType) {
			if lo.Contains(base, field) {
				continue
			}
			defs = append(defs, field+" TEXT NULL")
		}

		query := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s);", entityType, strings.Join(defs, ", "),
		)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("creating table %s: %w", entityType, err)
		}
	}

	return nil
}

// SaveSubmission upserts one submission row by id.
func (s *SQLiteStorage) SaveSubmission(rec *record.Record) error {
	return s.save(EntitySubmissions, rec)
}

// SaveComment upserts one comment row by id.
func (s *SQLiteStorage) SaveComment(rec *record.Record) error {
	return s.save(EntityComments, rec)
}

// save writes one record as an insert-or-replace keyed on id.
func (s *SQLiteStorage) save(table string, rec *record.Record) error {
	columns := rec.Columns()
	if len(columns) == 0 {
		return nil
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), marks,
	)

	assignments := lo.FilterMap(columns, func(column string, _ int) (string, bool) {
		return fmt.Sprintf("%s = excluded.%s", column, column), column != "id"
	})
	if len(assignments) > 0 {
		query += " ON CONFLICT(id) DO UPDATE SET " + strings.Join(assignments, ", ")
	} else {
		query += " ON CONFLICT(id) DO NOTHING"
	}

	values := lo.Map(rec.Values(), func(value any, _ int) any {
		return driverValue(value)
	})

	_, err := s.db.Exec(query, values...)
	return err
}

// driverValue converts a projected value into something the SQL driver can
// bind to a TEXT column. JSON numbers arrive as float64; integral ones are
// stored without a fractional part. Composite values are stored as their
// JSON text.
func driverValue(value any) any {
	switch v := value.(type) {
	case nil, string, int, int64, bool, []byte:
		return value
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	text, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(text)
}

// Submissions retrieves all stored submission rows.
func (s *SQLiteStorage) Submissions() ([]Row, error) {
	return s.query("SELECT * FROM submissions")
}

// Comments retrieves the stored comment rows for one submission.
func (s *SQLiteStorage) Comments(submissionID string) ([]Row, error) {
	return s.query("SELECT * FROM comments WHERE submission_id = ?", submissionID)
}

// query runs a SELECT and scans each row into a generic Row map.
func (s *SQLiteStorage) query(query string, args ...any) ([]Row, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := lo.Map(values, func(_ any, i int) any { return &values[i] })
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := Row{}
		for i, column := range columns {
			if text, ok := values[i].([]byte); ok {
				row[column] = string(text)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
