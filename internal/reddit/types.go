package reddit

import (
	"encoding/json"
	"fmt"
)

// Thing kinds used by the Reddit listing API.
const (
	kindComment    = "t1"
	kindSubmission = "t3"
	kindMore       = "more"
)

// thing is the generic kind/data envelope every listing item comes in.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listing is one page of things.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Before   string  `json:"before"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// Submission is a root discussion post. Raw holds the complete data payload
// as returned by the API; the typed fields are the identifiers the download
// pipeline needs regardless of configuration.
type Submission struct {
	Raw map[string]any

	ID          string
	Name        string
	Subreddit   string
	NumComments int
}

// HasComments reports whether the submission may have comments. Only an
// explicit zero count rules them out; an absent count still means the
// forest must be fetched to know.
func (s *Submission) HasComments() bool {
	if count, ok := s.Raw["num_comments"].(float64); ok {
		return count > 0
	}
	return true
}

// Comment is a reply to a submission or to another comment. Replies holds
// the nested forest below it, stubs included.
type Comment struct {
	Raw map[string]any

	ID       string
	Name     string
	ParentID string
	LinkID   string
	Body     string
	Replies  []*Node
}

// MoreStub is a "more comments" placeholder: it references comments that
// exist but were not returned inline. Stubs are expansion markers, never
// data records.
type MoreStub struct {
	Count    int
	ParentID string
	Children []string
}

// Node is one entry in a comment forest: either a real comment or a stub.
type Node struct {
	Comment *Comment
	More    *MoreStub
}

// IsStub reports whether the node is a more-comments placeholder.
func (n *Node) IsStub() bool {
	return n.More != nil
}

func parseSubmission(data json.RawMessage) (*Submission, error) {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing submission data: %w", err)
	}

	return &Submission{
		Raw:         raw,
		ID:          stringField(raw, "id"),
		Name:        stringField(raw, "name"),
		Subreddit:   stringField(raw, "subreddit"),
		NumComments: intField(raw, "num_comments"),
	}, nil
}

// parseNode turns a t1 or more thing into a forest node. Unknown kinds are
// skipped by returning a nil node.
func parseNode(t thing) (*Node, error) {
	switch t.Kind {
	case kindComment:
		comment, err := parseComment(t.Data)
		if err != nil {
			return nil, err
		}
		return &Node{Comment: comment}, nil

	case kindMore:
		stub, err := parseMore(t.Data)
		if err != nil {
			return nil, err
		}
		return &Node{More: stub}, nil

	default:
		return nil, nil
	}
}

func parseComment(data json.RawMessage) (*Comment, error) {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing comment data: %w", err)
	}

	comment := &Comment{
		Raw:      raw,
		ID:       stringField(raw, "id"),
		Name:     stringField(raw, "name"),
		ParentID: stringField(raw, "parent_id"),
		LinkID:   stringField(raw, "link_id"),
		Body:     stringField(raw, "body"),
	}

	// The replies field is either a nested listing or an empty string.
	var envelope struct {
		Replies json.RawMessage `json:"replies"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing comment replies: %w", err)
	}

	replies, err := parseForest(envelope.Replies)
	if err != nil {
		return nil, err
	}
	comment.Replies = replies

	return comment, nil
}

func parseMore(data json.RawMessage) (*MoreStub, error) {
	var stub struct {
		Count    int      `json:"count"`
		ParentID string   `json:"parent_id"`
		Children []string `json:"children"`
	}
	if err := json.Unmarshal(data, &stub); err != nil {
		return nil, fmt.Errorf("parsing more-comments stub: %w", err)
	}

	return &MoreStub{
		Count:    stub.Count,
		ParentID: stub.ParentID,
		Children: stub.Children,
	}, nil
}

// parseForest parses a replies value into forest nodes. Empty, absent, or
// "" values yield a nil forest.
func parseForest(data json.RawMessage) ([]*Node, error) {
	if len(data) == 0 || string(data) == `""` || string(data) == "null" {
		return nil, nil
	}

	var page listing
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("parsing comment listing: %w", err)
	}

	return parseThings(page.Data.Children)
}

func parseThings(things []thing) ([]*Node, error) {
	var nodes []*Node
	for _, t := range things {
		node, err := parseNode(t)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func stringField(raw map[string]any, key string) string {
	if value, ok := raw[key].(string); ok {
		return value
	}
	return ""
}

func intField(raw map[string]any, key string) int {
	// JSON numbers decode as float64.
	if value, ok := raw[key].(float64); ok {
		return int(value)
	}
	return 0
}
