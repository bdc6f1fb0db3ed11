package sqlgen

import (
	"regexp"
	"strings"
)

var columnNotFoundRe = regexp.MustCompile(`(?i)column\s+"?(\w+)"?\s+not found`)

// MatchColumnNotFound extracts the offending identifier from an execution
// error message, reporting whether the message is a column-not-found error.
func MatchColumnNotFound(errMsg string) (string, bool) {
	m := columnNotFoundRe.FindStringSubmatch(errMsg)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FuzzyMatchColumn finds a known column whose lowercased name contains, or
// is contained by, the bad identifier. First match in schema order wins.
func FuzzyMatchColumn(bad string, columns []string) (string, bool) {
	badLower := strings.ToLower(bad)
	for _, col := range columns {
		colLower := strings.ToLower(col)
		if strings.Contains(colLower, badLower) || strings.Contains(badLower, colLower) {
			return col, true
		}
	}
	return "", false
}

// RewriteColumn replaces every whole-word occurrence of the bad identifier
// in the SQL text with the replacement, case-insensitively.
func RewriteColumn(sqlText, bad, good string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(bad) + `\b`)
	return re.ReplaceAllString(sqlText, good)
}
