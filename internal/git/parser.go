package git

import (
	"fmt"
	"strconv"
	"strings"
)

const shortOIDLength = 8

// ParseLog splits raw log output produced with LogFormat into commits.
// Blank records are skipped, so a trailing delimiter never yields a node.
// The first malformed record fails the whole parse.
func ParseLog(raw string) ([]CommitNode, error) {
	commits := make([]CommitNode, 0)
	for i, record := range strings.Split(raw, RecordDelimiter) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		commit, err := parseRecord(record)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("record %d: %s", i, err.Reason), Err: err.Err}
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func parseRecord(record string) (CommitNode, *ParseError) {
	fields := strings.Split(record, FieldDelimiter)
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	// git separates entries with a newline after the record delimiter,
	// which ends up at the front of the next hash.
	oid := strings.TrimSpace(field(0))
	if oid == "" {
		return CommitNode{}, NewParseError("missing commit hash")
	}

	timestamp, err := strconv.ParseInt(field(6), 10, 64)
	if err != nil {
		return CommitNode{}, &ParseError{Reason: "timestamp parse error: " + err.Error(), Err: err}
	}

	parents := strings.Fields(field(1))
	if parents == nil {
		parents = []string{}
	}

	return CommitNode{
		OID:                oid,
		ShortOID:           ShortOID(oid),
		Parents:            parents,
		Author:             field(2),
		AuthorEmail:        field(3),
		RelativeTime:       field(4),
		CommittedAt:        field(5),
		CommittedTimestamp: timestamp,
		Summary:            field(7),
		Decorations:        ParseDecorations(field(8)),
	}, nil
}

// ShortOID returns the first eight characters of oid, or all of it when shorter.
func ShortOID(oid string) string {
	runes := []rune(oid)
	if len(runes) <= shortOIDLength {
		return oid
	}
	return string(runes[:shortOIDLength])
}
