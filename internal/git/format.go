package git

import "fmt"

const (
	// FieldDelimiter separates the fields of one record (ASCII unit separator).
	FieldDelimiter = "\x1f"
	// RecordDelimiter terminates each record (ASCII record separator).
	RecordDelimiter = "\x1e"

	// LogFormat emits the nine record fields in parse order:
	// hash, parents, author name, author email, relative commit time,
	// strict ISO-8601 commit time, unix commit time, subject, decorations.
	LogFormat = "%H%x1f%P%x1f%an%x1f%ae%x1f%cr%x1f%cI%x1f%ct%x1f%s%x1f%D%x1e"

	fieldCount = 9
)

// LogArgs returns the git arguments that list up to maxCount commits
// across all refs in LogFormat.
func LogArgs(maxCount int) []string {
	return []string{
		"--no-pager",
		"log",
		"--all",
		"--date-order",
		"--decorate=full",
		"--color=never",
		fmt.Sprintf("--max-count=%d", maxCount),
		"--pretty=format:" + LogFormat,
	}
}
