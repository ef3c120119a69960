package git

import "strings"

const (
	headPrefix = "HEAD -> "
	tagPrefix  = "tag: "
)

// ParseDecorations classifies a comma separated %D decoration string.
//
// Every non-empty token lands in exactly one bucket, checked in order:
// "HEAD -> x" sets Head (the last one wins), "tag: x" is a tag, a token
// containing '/' is a remote branch, anything else is a local branch.
// A local branch whose name contains a slash is therefore reported as remote.
func ParseDecorations(raw string) CommitDecorations {
	decorations := CommitDecorations{
		Tags:           []string{},
		LocalBranches:  []string{},
		RemoteBranches: []string{},
	}

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		switch {
		case strings.HasPrefix(token, headPrefix):
			target := strings.TrimSpace(strings.TrimPrefix(token, headPrefix))
			decorations.Head = &target
		case strings.HasPrefix(token, tagPrefix):
			decorations.Tags = append(decorations.Tags, strings.TrimSpace(strings.TrimPrefix(token, tagPrefix)))
		case strings.Contains(token, "/"):
			decorations.RemoteBranches = append(decorations.RemoteBranches, token)
		default:
			decorations.LocalBranches = append(decorations.LocalBranches, token)
		}
	}

	return decorations
}
