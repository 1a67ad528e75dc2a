package reader

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/LFKoning/reddit-reader/internal/reddit"
)

// Expander reveals the comments hidden behind a more-comments stub.
type Expander interface {
	MoreChildren(ctx context.Context, linkID string, stub *reddit.MoreStub, budget int) ([]*reddit.Node, error)
}

// FlatComment is one real comment lifted out of the forest, annotated with
// its resolved parent and owning submission.
type FlatComment struct {
	Comment      *reddit.Comment
	ParentID     string
	SubmissionID string
}

// frame is one pending node on the traversal stack.
type frame struct {
	node     *reddit.Node
	parentID string
	// revealed marks nodes that came out of a stub expansion; stubs below
	// them are dropped so expansion stays a single bounded pass.
	revealed bool
}

// Flatten walks one submission's comment forest depth-first, pre-order,
// yielding every real comment in discovery order. Stubs are expanded with a
// single MoreChildren call each when budget is positive, and dropped
// otherwise. The sequence is lazy and not restartable.
func Flatten(
	ctx context.Context,
	expander Expander,
	log *zap.SugaredLogger,
	submission *reddit.Submission,
	forest []*reddit.Node,
	budget int,
) iter.Seq[*FlatComment] {
	return func(yield func(*FlatComment) bool) {
		stack := make([]frame, 0, len(forest))
		push := func(nodes []*reddit.Node, parentID string, revealed bool) {
			// Reversed so the stack pops siblings in forest order.
			for i := len(nodes) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: nodes[i], parentID: parentID, revealed: revealed})
			}
		}
		push(forest, submission.Name, false)

		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if current.node.IsStub() {
				if budget <= 0 || current.revealed {
					continue
				}

				stub := current.node.More
				log.Infow("expanding hidden comments",
					"submission", submission.Name, "count", stub.Count,
				)
				nodes, err := expander.MoreChildren(ctx, submission.Name, stub, budget)
				if err != nil {
					log.Warnw("expanding hidden comments failed",
						"submission", submission.Name, "error", err,
					)
					continue
				}
				push(nodes, current.parentID, true)
				continue
			}

			comment := current.node.Comment
			parentID := current.parentID
			// Expansion returns a flat batch; trust each node's own parent
			// reference there since siblings and replies arrive mixed.
			if current.revealed && comment.ParentID != "" {
				parentID = comment.ParentID
			}

			flat := &FlatComment{
				Comment:      comment,
				ParentID:     parentID,
				SubmissionID: submission.Name,
			}
			if !yield(flat) {
				return
			}

			push(comment.Replies, comment.Name, current.revealed)
		}
	}
}
