package storage

import (
	"errors"
	"fmt"

	"github.com/LFKoning/reddit-reader/internal/record"
)

// DualWriter persists each record into the relational store and, when
// enabled, the JSON mirror. The two sinks are independent side effects: one
// failing does not prevent the other from being attempted.
type DualWriter struct {
	store  Store
	mirror *JSONStorage
}

// NewDualWriter creates a writer over both sinks. Mirror may be nil to
// disable JSON output.
func NewDualWriter(store Store, mirror *JSONStorage) *DualWriter {
	return &DualWriter{store: store, mirror: mirror}
}

// WriteSubmission persists one projected submission row plus its raw
// mirror. Sink errors are joined so the caller can report and skip.
func (w *DualWriter) WriteSubmission(subreddit, id string, rec *record.Record, raw any) error {
	return w.write(EntitySubmissions, subreddit, id, rec, raw)
}

// WriteComment persists one projected comment row plus its raw mirror.
func (w *DualWriter) WriteComment(subreddit, id string, rec *record.Record, raw any) error {
	return w.write(EntityComments, subreddit, id, rec, raw)
}

func (w *DualWriter) write(entityType, subreddit, id string, rec *record.Record, raw any) error {
	var dbErr, jsonErr error

	switch entityType {
	case EntitySubmissions:
		dbErr = w.store.SaveSubmission(rec)
	case EntityComments:
		dbErr = w.store.SaveComment(rec)
	}
	if dbErr != nil {
		dbErr = fmt.Errorf("saving %s %s: %w", entityType, id, dbErr)
	}

	if w.mirror != nil {
		jsonErr = w.mirror.Save(subreddit, entityType, id, raw)
	}

	return errors.Join(dbErr, jsonErr)
}
