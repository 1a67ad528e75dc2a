package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/LFKoning/reddit-reader/internal/config"
	"github.com/LFKoning/reddit-reader/internal/reader"
)

func newProjector(fields config.Fields) *reader.Projector {
	return reader.NewProjector(fields, zap.NewNop().Sugar())
}

func TestProjectSubmission(t *testing.T) {
	projector := newProjector(config.Fields{
		Submissions: []string{"title", "score"},
	})

	sub := submission("t3_abc", 0, map[string]any{
		"title": "Hello",
		"score": float64(12),
		"ups":   float64(13), // not configured, must not appear
	})

	rec := projector.Submission(sub)
	assert.Equal(t, []string{"id", "title", "score"}, rec.Columns())
	assert.Equal(t, []any{"t3_abc", "Hello", float64(12)}, rec.Values())
}

func TestProjectMissingFieldsUseSentinel(t *testing.T) {
	projector := newProjector(config.Fields{
		Submissions: []string{"title", "score", "edited"},
	})

	// Raw record missing every configured field.
	rec := projector.Submission(submission("t3_abc", 0, map[string]any{}))

	assert.Equal(t, []string{"id", "title", "score", "edited"}, rec.Columns())
	for _, field := range []string{"title", "score", "edited"} {
		value, ok := rec.Get(field)
		assert.True(t, ok)
		assert.Nil(t, value)
	}
}

func TestProjectTypedNullKept(t *testing.T) {
	projector := newProjector(config.Fields{
		Submissions: []string{"author_fullname"},
	})

	// A deleted account comes back as an explicit null; treated the same
	// as an absent attribute.
	rec := projector.Submission(submission("t3_abc", 0, map[string]any{
		"author_fullname": nil,
	}))

	value, ok := rec.Get("author_fullname")
	assert.True(t, ok)
	assert.Nil(t, value)
}

func TestProjectIdempotent(t *testing.T) {
	projector := newProjector(config.Fields{
		Submissions: []string{"title", "score", "missing"},
	})
	sub := submission("t3_abc", 0, map[string]any{
		"title": "Hello",
		"score": float64(12),
	})

	first := projector.Submission(sub)
	second := projector.Submission(sub)

	assert.Equal(t, first.Columns(), second.Columns())
	assert.Equal(t, first.Values(), second.Values())
}

func TestProjectCommentInjectsLinkage(t *testing.T) {
	projector := newProjector(config.Fields{
		Comments: []string{"body"},
	})

	flat := &reader.FlatComment{
		Comment:      comment("t1_1", "t3_sub").Comment,
		ParentID:     "t3_sub",
		SubmissionID: "t3_sub",
	}

	rec := projector.Comment(flat)
	assert.Equal(t, []string{"id", "parent_id", "submission_id", "body"}, rec.Columns())
	assert.Equal(t, []any{"t1_1", "t3_sub", "t3_sub", "body of t1_1"}, rec.Values())
}

func TestProjectNoConfiguredFields(t *testing.T) {
	projector := newProjector(config.Fields{})

	rec := projector.Submission(submission("t3_abc", 0, map[string]any{"title": "Hello"}))
	assert.Equal(t, []string{"id"}, rec.Columns())
}
