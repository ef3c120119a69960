package git

// CommitNode is one commit parsed from a log record.
type CommitNode struct {
	OID                string            `json:"oid" yaml:"oid"`
	ShortOID           string            `json:"short_oid" yaml:"short_oid"`
	Parents            []string          `json:"parents" yaml:"parents"`
	Author             string            `json:"author" yaml:"author"`
	AuthorEmail        string            `json:"author_email" yaml:"author_email"`
	RelativeTime       string            `json:"relative_time" yaml:"relative_time"`
	CommittedAt        string            `json:"committed_at" yaml:"committed_at"`
	CommittedTimestamp int64             `json:"committed_timestamp" yaml:"committed_timestamp"`
	Summary            string            `json:"summary" yaml:"summary"`
	Decorations        CommitDecorations `json:"decorations" yaml:"decorations"`
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitNode) IsMerge() bool {
	return len(c.Parents) > 1
}

// CommitDecorations classifies the refs that point at a commit.
// Head is nil unless the commit carries a "HEAD -> <name>" decoration.
type CommitDecorations struct {
	Head           *string  `json:"head" yaml:"head"`
	Tags           []string `json:"tags" yaml:"tags"`
	LocalBranches  []string `json:"local_branches" yaml:"local_branches"`
	RemoteBranches []string `json:"remote_branches" yaml:"remote_branches"`
}

// HeadName returns the HEAD target, or "" when HEAD does not point here.
func (d CommitDecorations) HeadName() string {
	if d.Head == nil {
		return ""
	}
	return *d.Head
}

// Invocation describes one run of the git executable.
type Invocation struct {
	Executable string
	Dir        string
	Env        []string
	MaxCount   int
}
