package reader_test

import (
	"context"
	"strings"

	"github.com/LFKoning/reddit-reader/internal/reddit"
)

// comment builds a real forest node with optional nested replies.
func comment(name, parentID string, replies ...*reddit.Node) *reddit.Node {
	return &reddit.Node{Comment: &reddit.Comment{
		Raw: map[string]any{
			"name": name,
			"body": "body of " + name,
		},
		ID:       strings.TrimPrefix(name, "t1_"),
		Name:     name,
		ParentID: parentID,
		LinkID:   "t3_sub",
		Body:     "body of " + name,
		Replies:  replies,
	}}
}

// stub builds a more-comments node referencing the given child ids.
func stub(parentID string, children ...string) *reddit.Node {
	return &reddit.Node{More: &reddit.MoreStub{
		Count:    len(children),
		ParentID: parentID,
		Children: children,
	}}
}

func submission(name string, numComments int, raw map[string]any) *reddit.Submission {
	if raw == nil {
		raw = map[string]any{}
	}
	raw["name"] = name
	raw["num_comments"] = float64(numComments)
	return &reddit.Submission{
		Raw:         raw,
		ID:          strings.TrimPrefix(name, "t3_"),
		Name:        name,
		Subreddit:   "golang",
		NumComments: numComments,
	}
}

// fakeExpander serves canned nodes for every expansion and counts calls.
type fakeExpander struct {
	nodes   []*reddit.Node
	err     error
	calls   int
	budgets []int
}

func (f *fakeExpander) MoreChildren(_ context.Context, _ string, _ *reddit.MoreStub, budget int) ([]*reddit.Node, error) {
	f.calls++
	f.budgets = append(f.budgets, budget)
	if f.err != nil {
		return nil, f.err
	}
	return f.nodes, nil
}

// fakeClient implements the reader's Client interface from fixtures.
type fakeClient struct {
	fakeExpander

	submissions []*reddit.Submission
	forests     map[string][]*reddit.Node
	forestErr   error
	fetchErr    error
}

func (f *fakeClient) FetchSubmissions(_ context.Context, _ string, limit int) ([]*reddit.Submission, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.submissions) {
		return f.submissions[:limit], nil
	}
	return f.submissions, nil
}

func (f *fakeClient) GetCommentForest(_ context.Context, sub *reddit.Submission) ([]*reddit.Node, error) {
	if f.forestErr != nil {
		return nil, f.forestErr
	}
	return f.forests[sub.Name], nil
}
