package domain

// Summary holds the headline counts shown next to a rendered graph.
type Summary struct {
	Commits   int    `json:"commits" yaml:"commits"`
	Edges     int    `json:"edges" yaml:"edges"`
	Merges    int    `json:"merges" yaml:"merges"`
	Branches  int    `json:"branches" yaml:"branches"`
	Tags      int    `json:"tags" yaml:"tags"`
	Head      string `json:"head,omitempty" yaml:"head,omitempty"`
	Truncated bool   `json:"truncated" yaml:"truncated"`
}

// Summarize counts distinct branch and tag names across the graph.
// Branches include local and remote names plus the HEAD target.
func Summarize(g GitGraph) Summary {
	branches := make(map[string]struct{})
	tags := make(map[string]struct{})
	s := Summary{
		Commits:   len(g.Commits),
		Edges:     len(g.Edges),
		Truncated: g.Truncated,
	}

	for _, c := range g.Commits {
		if c.IsMerge() {
			s.Merges++
		}
		d := c.Decorations
		if d.Head != nil {
			s.Head = *d.Head
			branches[*d.Head] = struct{}{}
		}
		for _, b := range d.LocalBranches {
			branches[b] = struct{}{}
		}
		for _, b := range d.RemoteBranches {
			branches[b] = struct{}{}
		}
		for _, tag := range d.Tags {
			tags[tag] = struct{}{}
		}
	}

	s.Branches = len(branches)
	s.Tags = len(tags)
	return s
}
