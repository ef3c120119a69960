package domain

import (
	"strconv"
	"testing"

	"github.com/rybkr/gitgraph/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commits(n int) []git.CommitNode {
	out := make([]git.CommitNode, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, git.CommitNode{
			OID:     "c" + strconv.Itoa(i),
			Parents: []string{"c" + strconv.Itoa(i+1)},
		})
	}
	return out
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{
		-10:     1,
		0:       1,
		1:       1,
		400:     400,
		2000:    2000,
		2001:    2000,
		1000000: 2000,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClampLimit(in), "limit %d", in)
	}
}

func TestFetchLimit(t *testing.T) {
	assert.Equal(t, 401, FetchLimit(400))
	assert.Equal(t, 2, FetchLimit(1))
}

func TestAssembleTruncatesAtFetchLimit(t *testing.T) {
	g := Assemble(commits(4), 3)

	assert.True(t, g.Truncated)
	require.Len(t, g.Commits, 3)
	assert.Equal(t, "c2", g.Commits[2].OID)
	assert.Len(t, g.Edges, 3)
}

func TestAssembleKeepsShortHistory(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		g := Assemble(commits(n), 3)
		assert.False(t, g.Truncated, "n=%d", n)
		assert.Len(t, g.Commits, n)
		assert.NotNil(t, g.Commits)
		assert.NotNil(t, g.Edges)
	}
}

func TestAssembleEdges(t *testing.T) {
	input := []git.CommitNode{
		{OID: "merge", Parents: []string{"left", "right"}},
		{OID: "left", Parents: []string{"base"}},
		{OID: "right", Parents: []string{"base"}},
		{OID: "base", Parents: []string{}},
	}

	g := Assemble(input, 10)

	assert.Equal(t, []Edge{
		{Child: "merge", Parent: "left"},
		{Child: "merge", Parent: "right"},
		{Child: "left", Parent: "base"},
		{Child: "right", Parent: "base"},
	}, g.Edges)
}

func TestAssembleEdgeCountMatchesParents(t *testing.T) {
	input := []git.CommitNode{
		{OID: "a", Parents: []string{"b", "c", "d"}},
		{OID: "b", Parents: []string{"outside-window"}},
		{OID: "c", Parents: nil},
	}
	g := Assemble(input, 3)

	total := 0
	for _, c := range g.Commits {
		total += len(c.Parents)
	}
	assert.Equal(t, total, len(g.Edges))
	assert.Contains(t, g.Edges, Edge{Child: "b", Parent: "outside-window"})
}

func TestAssembleDropsEdgesOfExtraCommit(t *testing.T) {
	input := []git.CommitNode{
		{OID: "a", Parents: []string{"b"}},
		{OID: "b", Parents: []string{"c"}},
	}
	g := Assemble(input, 1)

	assert.True(t, g.Truncated)
	assert.Equal(t, []Edge{{Child: "a", Parent: "b"}}, g.Edges)
}

func TestAssembleClampsLimit(t *testing.T) {
	input := []git.CommitNode{
		{OID: "a", Parents: []string{"b"}},
		{OID: "b", Parents: []string{}},
	}

	for _, limit := range []int{-1, 0} {
		g := Assemble(input, limit)
		assert.True(t, g.Truncated, "limit %d", limit)
		require.Len(t, g.Commits, 1, "limit %d", limit)
		assert.Equal(t, "a", g.Commits[0].OID)
		assert.Equal(t, []Edge{{Child: "a", Parent: "b"}}, g.Edges)
	}

	g := Assemble(commits(MaxLimit+1), MaxLimit+50)
	assert.True(t, g.Truncated)
	assert.Len(t, g.Commits, MaxLimit)
}
