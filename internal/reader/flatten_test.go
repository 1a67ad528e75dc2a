package reader_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/LFKoning/reddit-reader/internal/reader"
	"github.com/LFKoning/reddit-reader/internal/reddit"
)

func flatten(t *testing.T, exp reader.Expander, forest []*reddit.Node, budget int) []*reader.FlatComment {
	t.Helper()
	sub := submission("t3_sub", len(forest), nil)
	return slices.Collect(
		reader.Flatten(context.Background(), exp, zap.NewNop().Sugar(), sub, forest, budget),
	)
}

func names(flats []*reader.FlatComment) []string {
	return lo.Map(flats, func(f *reader.FlatComment, _ int) string { return f.Comment.Name })
}

func TestFlattenEmptyForest(t *testing.T) {
	exp := &fakeExpander{}
	assert.Empty(t, flatten(t, exp, nil, 5))
	assert.Zero(t, exp.calls)
}

func TestFlattenDepthFirstPreOrder(t *testing.T) {
	forest := []*reddit.Node{
		comment("t1_a", "t3_sub",
			comment("t1_b", "t1_a",
				comment("t1_d", "t1_b"),
			),
			comment("t1_c", "t1_a"),
		),
		comment("t1_e", "t3_sub"),
	}

	flats := flatten(t, &fakeExpander{}, forest, 0)
	assert.Equal(t, []string{"t1_a", "t1_b", "t1_d", "t1_c", "t1_e"}, names(flats))

	// Parent and submission linkage follow the traversal context.
	for _, flat := range flats {
		assert.Equal(t, "t3_sub", flat.SubmissionID)
	}
	assert.Equal(t, "t3_sub", flats[0].ParentID)
	assert.Equal(t, "t1_a", flats[1].ParentID)
	assert.Equal(t, "t1_b", flats[2].ParentID)
	assert.Equal(t, "t1_a", flats[3].ParentID)
	assert.Equal(t, "t3_sub", flats[4].ParentID)
}

func TestFlattenZeroBudgetDropsStubs(t *testing.T) {
	exp := &fakeExpander{}
	forest := []*reddit.Node{
		comment("t1_1", "t3_sub"),
		stub("t3_sub", "aaa", "bbb"),
	}

	flats := flatten(t, exp, forest, 0)
	assert.Equal(t, []string{"t1_1"}, names(flats))
	assert.Zero(t, exp.calls, "budget 0 must never expand")
}

func TestFlattenOnlyStubsZeroBudget(t *testing.T) {
	forest := []*reddit.Node{stub("t3_sub", "aaa")}
	assert.Empty(t, flatten(t, &fakeExpander{}, forest, 0))
}

func TestFlattenExpandsStubOnce(t *testing.T) {
	exp := &fakeExpander{nodes: []*reddit.Node{
		comment("t1_2", "t3_sub"),
		comment("t1_3", "t1_1"),
	}}
	forest := []*reddit.Node{
		comment("t1_1", "t3_sub"),
		stub("t3_sub", "2", "3"),
	}

	flats := flatten(t, exp, forest, 5)
	assert.Equal(t, []string{"t1_1", "t1_2", "t1_3"}, names(flats))
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, []int{5}, exp.budgets)

	// Revealed comments keep their own parent reference.
	assert.Equal(t, "t3_sub", flats[0].ParentID)
	assert.Equal(t, "t3_sub", flats[1].ParentID)
	assert.Equal(t, "t1_1", flats[2].ParentID)
}

func TestFlattenRevealedStubsNotExpanded(t *testing.T) {
	exp := &fakeExpander{nodes: []*reddit.Node{
		comment("t1_2", "t3_sub"),
		stub("t3_sub", "zzz"),
	}}
	forest := []*reddit.Node{stub("t3_sub", "2")}

	flats := flatten(t, exp, forest, 3)
	assert.Equal(t, []string{"t1_2"}, names(flats))
	assert.Equal(t, 1, exp.calls, "expansion is a single bounded pass")
}

func TestFlattenExpansionErrorDropsStub(t *testing.T) {
	exp := &fakeExpander{err: errors.New("boom")}
	forest := []*reddit.Node{
		stub("t3_sub", "aaa"),
		comment("t1_1", "t3_sub"),
	}

	flats := flatten(t, exp, forest, 3)
	assert.Equal(t, []string{"t1_1"}, names(flats), "traversal continues past a failed stub")
	assert.Equal(t, 1, exp.calls)
}

func TestFlattenDeletedCommentStillEmitted(t *testing.T) {
	node := comment("t1_1", "t3_sub")
	node.Comment.Body = "[deleted]"
	node.Comment.Raw["body"] = "[deleted]"

	flats := flatten(t, &fakeExpander{}, []*reddit.Node{node}, 0)
	assert.Equal(t, []string{"t1_1"}, names(flats))
}

func TestFlattenStopsWhenConsumerBreaks(t *testing.T) {
	forest := []*reddit.Node{
		comment("t1_1", "t3_sub"),
		comment("t1_2", "t3_sub"),
	}
	sub := submission("t3_sub", 2, nil)

	var seen []string
	for flat := range reader.Flatten(context.Background(), &fakeExpander{}, zap.NewNop().Sugar(), sub, forest, 0) {
		seen = append(seen, flat.Comment.Name)
		break
	}
	assert.Equal(t, []string{"t1_1"}, seen)
}
