package nlq

import (
	"regexp"
	"strconv"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
	"github.com/jinzhu/inflection"

	"github.com/Kesh3805/autobi/pkg/models"
)

var (
	limitPattern    = regexp.MustCompile(`(?i)\b(?:top|first|limit)\s*(\d+)\b`)
	byPhrasePattern = regexp.MustCompile(`(?i)\bby\s+(\w+)`)
)

// columnPattern builds a word-boundary pattern for one column name, with
// underscores optionally spoken as spaces ("order date" matches order_date).
func columnPattern(column string) string {
	parts := strings.Split(strings.ToLower(column), "_")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, `[\s_]?`)
}

// ExtractMentionedColumns returns the known columns mentioned in the
// question, preserving schema declaration order.
func ExtractMentionedColumns(question string, columns []string) []string {
	var mentioned []string
	for _, col := range columns {
		re := regexp.MustCompile(`(?i)\b` + columnPattern(col) + `\b`)
		if re.MatchString(question) {
			mentioned = append(mentioned, col)
		}
	}
	return mentioned
}

// ExtractFilters pulls inline conditions out of the question for every known
// column: string equality ("region is west"), greater-than, and less-than
// phrases. All filters found are later ANDed by the synthesizer. Equality
// values are screened for SQL injection patterns and dropped when flagged.
func ExtractFilters(question string, columns []string) []models.Filter {
	var filters []models.Filter
	for _, col := range columns {
		pat := columnPattern(col)

		eqRe := regexp.MustCompile(`(?i)` + pat + `\s*(?:is|=|equals?)\s*["']?(\w+)["']?`)
		if m := eqRe.FindStringSubmatch(question); m != nil {
			if isSQLi, _ := libinjection.IsSQLi(m[1]); !isSQLi {
				filters = append(filters, models.Filter{
					Column: col, Operator: models.FilterEquals, Value: m[1],
				})
			}
		}

		gtRe := regexp.MustCompile(`(?i)` + pat + `\s*(?:>|greater than|more than|above|over)\s*(\d+(?:\.\d+)?)`)
		if m := gtRe.FindStringSubmatch(question); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				filters = append(filters, models.Filter{
					Column: col, Operator: models.FilterGreaterThan, Value: v,
				})
			}
		}

		ltRe := regexp.MustCompile(`(?i)` + pat + `\s*(?:<|less than|under|below)\s*(\d+(?:\.\d+)?)`)
		if m := ltRe.FindStringSubmatch(question); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				filters = append(filters, models.Filter{
					Column: col, Operator: models.FilterLessThan, Value: v,
				})
			}
		}
	}
	return filters
}

// ExtractLimit returns the row limit requested as "top N", "first N", or
// "limit N", or 0 when the question does not request one.
func ExtractLimit(question string) int {
	m := limitPattern.FindStringSubmatch(question)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FindGroupByDimension returns the dimension the question groups by. A
// mentioned dimension is the starting pick, but an explicit "by <dimension>"
// phrase overrides it, with plural tolerance ("by products" matches product):
// "revenue for region by product" groups by product, not region.
func FindGroupByDimension(question string, mentioned, dimensions []string) string {
	var groupBy string
	for _, col := range mentioned {
		if containsString(dimensions, col) {
			groupBy = col
			break
		}
	}
	for _, dim := range dimensions {
		re := regexp.MustCompile(`(?i)\bby\s+` + columnPattern(dim) + `s?\b`)
		if re.MatchString(question) {
			return dim
		}
	}
	return groupBy
}

// MatchByPhrase looks for a literal "by <word>" phrase and fuzzily matches
// the word against known column names using substring containment both ways.
// The word is singularized first so "by regions" matches a region column.
func MatchByPhrase(question string, columns []string) (string, bool) {
	m := byPhrasePattern.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	word := strings.ToLower(inflection.Singular(m[1]))
	for _, col := range columns {
		colLower := strings.ToLower(col)
		if strings.Contains(colLower, word) || strings.Contains(word, colLower) {
			return col, true
		}
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
