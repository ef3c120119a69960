package domain

import (
	"testing"

	"github.com/rybkr/gitgraph/internal/git"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	g := Assemble([]git.CommitNode{
		{
			OID:         "m",
			Parents:     []string{"a", "b"},
			Decorations: git.ParseDecorations("HEAD -> main, origin/main, tag: v2"),
		},
		{
			OID:         "a",
			Parents:     []string{"r"},
			Decorations: git.ParseDecorations("main, tag: v1, tag: v2"),
		},
		{OID: "b", Parents: []string{"r"}, Decorations: git.ParseDecorations("feature")},
		{OID: "r", Parents: []string{}},
	}, 10)

	s := Summarize(g)

	assert.Equal(t, 4, s.Commits)
	assert.Equal(t, 4, s.Edges)
	assert.Equal(t, 1, s.Merges)
	assert.Equal(t, 3, s.Branches) // main, origin/main, feature
	assert.Equal(t, 2, s.Tags)
	assert.Equal(t, "main", s.Head)
	assert.False(t, s.Truncated)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(Assemble(nil, DefaultLimit))
	assert.Equal(t, Summary{}, s)
}
