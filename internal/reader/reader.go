// Package reader coordinates downloads: it fetches submissions through the
// Reddit client, flattens each comment forest, projects the configured
// fields, and hands every record to the dual-sink writer.
package reader

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/LFKoning/reddit-reader/internal/config"
	"github.com/LFKoning/reddit-reader/internal/reddit"
	"github.com/LFKoning/reddit-reader/internal/storage"
)

// Client is the slice of the Reddit API the reader depends on.
type Client interface {
	Expander

	FetchSubmissions(ctx context.Context, subreddit string, limit int) ([]*reddit.Submission, error)
	GetCommentForest(ctx context.Context, submission *reddit.Submission) ([]*reddit.Node, error)
}

// Stats summarizes one download run.
type Stats struct {
	Submissions int `json:"submissions"`
	Comments    int `json:"comments"`
	Skipped     int `json:"skipped"`
}

// Reader downloads subreddit data and persists it.
type Reader struct {
	client    Client
	writer    *storage.DualWriter
	projector *Projector
	log       *zap.SugaredLogger

	// Downloads are strictly sequential; the mutex serializes scheduled
	// runs against HTTP-triggered ones.
	mu sync.Mutex
}

// New creates a Reader over the given client, writer, and field
// configuration.
func New(client Client, writer *storage.DualWriter, fields config.Fields, log *zap.SugaredLogger) *Reader {
	log = log.With("component", "reader")
	return &Reader{
		client:    client,
		writer:    writer,
		projector: NewProjector(fields, log),
		log:       log,
	}
}

// Download fetches up to limit newest submissions from a subreddit and
// persists each one together with its flattened comments. moreComments is
// the per-stub expansion budget; 0 leaves hidden comments unexpanded.
//
// A failed submission or forest fetch skips that submission; a failed
// record write skips that record. Both are reported in Stats.Skipped.
func (r *Reader) Download(ctx context.Context, subreddit string, limit, moreComments int) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Infow("downloading subreddit",
		"subreddit", subreddit, "limit", limit, "more_comments", moreComments,
	)

	submissions, err := r.client.FetchSubmissions(ctx, subreddit, limit)
	if err != nil {
		return nil, err
	}
	r.log.Infow("got submissions", "count", len(submissions))

	stats := &Stats{}
	for _, submission := range submissions {
		r.log.Infow("downloading submission", "submission", submission.Name)

		rec := r.projector.Submission(submission)
		if err := r.writer.WriteSubmission(subreddit, submission.Name, rec, submission.Raw); err != nil {
			r.log.Warnw("writing submission failed", "submission", submission.Name, "error", err)
			stats.Skipped++
		} else {
			stats.Submissions++
		}

		r.downloadComments(ctx, subreddit, submission, moreComments, stats)
	}

	r.log.Infow("finished downloading",
		"subreddit", subreddit,
		"submissions", stats.Submissions, "comments", stats.Comments, "skipped", stats.Skipped,
	)
	return stats, nil
}

// downloadComments flattens and persists the comment tree of one
// submission.
func (r *Reader) downloadComments(
	ctx context.Context,
	subreddit string,
	submission *reddit.Submission,
	moreComments int,
	stats *Stats,
) {
	if !submission.HasComments() {
		return
	}

	forest, err := r.client.GetCommentForest(ctx, submission)
	if err != nil {
		r.log.Warnw("fetching comments failed", "submission", submission.Name, "error", err)
		stats.Skipped++
		return
	}
	if len(forest) == 0 {
		return
	}

	hidden := lo.CountBy(forest, func(node *reddit.Node) bool { return node.IsStub() })
	if hidden > 0 {
		r.log.Infow("found hidden comment stubs", "submission", submission.Name, "count", hidden)
	}

	for flat := range Flatten(ctx, r.client, r.log, submission, forest, moreComments) {
		rec := r.projector.Comment(flat)
		if err := r.writer.WriteComment(subreddit, flat.Comment.Name, rec, flat.Comment.Raw); err != nil {
			r.log.Warnw("writing comment failed", "comment", flat.Comment.Name, "error", err)
			stats.Skipped++
			continue
		}
		stats.Comments++
	}
}
