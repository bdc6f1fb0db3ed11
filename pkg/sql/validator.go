// Package sql provides SQL validation utilities.
package sql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

	// ErrCommentToken indicates the query contains a SQL comment token.
	ErrCommentToken = errors.New("SQL comments not allowed")
)

// forbiddenKeywords are write/DDL operations that must never reach the
// execution engine. Matched as whole words on the uppercased SQL.
var forbiddenKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER",
	"CREATE", "TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
}

var forbiddenKeywordRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(forbiddenKeywords))
	for _, kw := range forbiddenKeywords {
		res[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return res
}()

// ValidationResult contains the normalized SQL and any validation error.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize gates synthesized SQL before execution. This is a
// pure syntactic check; it never inspects query semantics.
//
// The validation order is:
//  1. Strip trailing semicolon and whitespace (normalize)
//  2. Reject forbidden write/DDL keywords as whole words
//  3. Reject comment tokens
//  4. Reject multiple statements (any remaining semicolon outside string literals)
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)

	if sqlQuery == "" {
		return ValidationResult{NormalizedSQL: sqlQuery}
	}

	normalized := stripTrailingSemicolon(sqlQuery)

	upper := strings.ToUpper(normalized)
	for _, kw := range forbiddenKeywords {
		if forbiddenKeywordRes[kw].MatchString(upper) {
			return ValidationResult{Error: fmt.Errorf("forbidden operation detected: %s", kw)}
		}
	}

	if strings.Contains(normalized, "--") || strings.Contains(normalized, "/*") || strings.Contains(normalized, "*/") {
		return ValidationResult{Error: ErrCommentToken}
	}

	if err := detectMultipleStatements(normalized); err != nil {
		return ValidationResult{Error: err}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// detectMultipleStatements checks if the SQL contains multiple statements
// by looking for any semicolons outside of string literals. Since the
// trailing semicolon was already stripped, any remaining semicolon
// indicates multiple statements.
func detectMultipleStatements(sqlQuery string) error {
	if hasSemicolonOutsideStrings(sqlQuery) {
		return ErrMultipleStatements
	}
	return nil
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('')
			if char == '\'' && prevChar != '\\' {
				// For SQL standard doubled quote (''), this exits and
				// immediately re-enters on the next quote, which correctly
				// keeps us in the string
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace after it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")

	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}

	return sqlQuery
}
