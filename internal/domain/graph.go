package domain

import "github.com/rybkr/gitgraph/internal/git"

const (
	// DefaultLimit is used when no limit is requested.
	DefaultLimit = 400
	// MaxLimit caps how many commits one graph may hold.
	MaxLimit = 2000
)

// GitGraph is the commit graph handed to renderers.
type GitGraph struct {
	Commits   []git.CommitNode `json:"commits" yaml:"commits"`
	Edges     []Edge           `json:"edges" yaml:"edges"`
	Truncated bool             `json:"truncated" yaml:"truncated"`
}

// Edge links a commit to one of its parents.
type Edge struct {
	Child  string `json:"child" yaml:"child"`
	Parent string `json:"parent" yaml:"parent"`
}

// ClampLimit bounds a requested limit to [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchLimit is the number of commits to request so that truncation can
// be detected: one more than the limit.
func FetchLimit(limit int) int {
	return limit + 1
}

// Assemble builds a graph from commits fetched with FetchLimit(limit).
// The limit is clamped first. Reaching the fetch limit marks the graph
// truncated and drops the extra commit. Parents outside the window still
// get an edge.
func Assemble(commits []git.CommitNode, limit int) GitGraph {
	limit = ClampLimit(limit)
	truncated := len(commits) >= FetchLimit(limit)
	if len(commits) > limit {
		commits = commits[:limit]
	}
	if commits == nil {
		commits = []git.CommitNode{}
	}

	edges := make([]Edge, 0, len(commits))
	for _, commit := range commits {
		for _, parent := range commit.Parents {
			edges = append(edges, Edge{
				Child:  commit.OID,
				Parent: parent,
			})
		}
	}

	return GitGraph{
		Commits:   commits,
		Edges:     edges,
		Truncated: truncated,
	}
}
