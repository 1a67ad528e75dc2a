package reader

import (
	"go.uber.org/zap"

	"github.com/LFKoning/reddit-reader/internal/config"
	"github.com/LFKoning/reddit-reader/internal/record"
	"github.com/LFKoning/reddit-reader/internal/reddit"
)

// Projector maps raw API objects onto the configured field lists. A field
// missing from the raw object becomes a nil value, never an error; values
// are kept in their native representation.
type Projector struct {
	fields config.Fields
	log    *zap.SugaredLogger
}

// NewProjector creates a Projector for the given field configuration.
func NewProjector(fields config.Fields, log *zap.SugaredLogger) *Projector {
	return &Projector{fields: fields, log: log.With("component", "projector")}
}

// Submission projects one submission. The id column is always present and
// holds the API fullname.
func (p *Projector) Submission(submission *reddit.Submission) *record.Record {
	rec := record.New()
	rec.Set("id", submission.Name)
	p.project(rec, submission.Raw, p.fields.Submissions, submission.Name)
	return rec
}

// Comment projects one flattened comment. The id, parent_id, and
// submission_id columns come from traversal context, not the raw object.
func (p *Projector) Comment(flat *FlatComment) *record.Record {
	rec := record.New()
	rec.Set("id", flat.Comment.Name)
	rec.Set("parent_id", flat.ParentID)
	rec.Set("submission_id", flat.SubmissionID)
	p.project(rec, flat.Comment.Raw, p.fields.Comments, flat.Comment.Name)
	return rec
}

func (p *Projector) project(rec *record.Record, raw map[string]any, fields []string, name string) {
	for _, field := range fields {
		value, ok := raw[field]
		if !ok {
			p.log.Warnw("field missing from record", "field", field, "record", name)
			rec.Set(field, nil)
			continue
		}
		rec.Set(field, value)
	}
}
