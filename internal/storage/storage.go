package storage

import (
	"os"

	"github.com/LFKoning/reddit-reader/internal/record"
)

// Entity types used for table and directory names.
const (
	EntitySubmissions = "submissions"
	EntityComments    = "comments"
)

// Row is one stored record as returned by queries.
type Row map[string]any

// Store defines the interface for the relational sink.
type Store interface {
	// SaveSubmission upserts one submission row by id.
	SaveSubmission(rec *record.Record) error

	// SaveComment upserts one comment row by id.
	SaveComment(rec *record.Record) error

	// Submissions retrieves all stored submission rows.
	Submissions() ([]Row, error)

	// Comments retrieves the stored comment rows for one submission.
	Comments(submissionID string) ([]Row, error)

	// Close closes the storage connection.
	Close() error
}

// Prepare creates the storage root, removing any existing contents first
// when purge is set.
func Prepare(path string, purge bool) error {
	if purge {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return os.MkdirAll(path, 0o755)
}
