package sql

import (
	"strings"
	"testing"
)

func TestValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantSQL string
		wantErr string
	}{
		{
			name:    "plain select passes",
			sql:     "SELECT a, b FROM t WHERE a > 5 LIMIT 10",
			wantSQL: "SELECT a, b FROM t WHERE a > 5 LIMIT 10",
		},
		{
			name:    "trailing semicolon is stripped",
			sql:     "SELECT * FROM orders;",
			wantSQL: "SELECT * FROM orders",
		},
		{
			name:    "trailing semicolon with whitespace",
			sql:     "SELECT * FROM orders ;  \n",
			wantSQL: "SELECT * FROM orders",
		},
		{
			name:    "drop rejected",
			sql:     "DROP TABLE x",
			wantErr: "forbidden operation detected: DROP",
		},
		{
			name:    "delete after select rejected",
			sql:     "SELECT 1; DELETE FROM x",
			wantErr: "forbidden operation detected: DELETE",
		},
		{
			name:    "lowercase insert rejected",
			sql:     "insert into t values (1)",
			wantErr: "forbidden operation detected: INSERT",
		},
		{
			name:    "multiple statements rejected",
			sql:     "SELECT 1; SELECT 2",
			wantErr: ErrMultipleStatements.Error(),
		},
		{
			name:    "semicolon inside string literal is fine",
			sql:     "SELECT * FROM t WHERE note = 'a;b'",
			wantSQL: "SELECT * FROM t WHERE note = 'a;b'",
		},
		{
			name:    "line comment rejected",
			sql:     "SELECT 1 -- sneak",
			wantErr: ErrCommentToken.Error(),
		},
		{
			name:    "block comment rejected",
			sql:     "SELECT /* hidden */ 1",
			wantErr: ErrCommentToken.Error(),
		},
		{
			name:    "keyword as substring of identifier passes",
			sql:     "SELECT updated_at FROM t LIMIT 5",
			wantSQL: "SELECT updated_at FROM t LIMIT 5",
		},
		{
			name:    "count alias does not trip exec",
			sql:     "SELECT COUNT(*) AS total_count FROM t",
			wantSQL: "SELECT COUNT(*) AS total_count FROM t",
		},
		{
			name:    "empty input passes through",
			sql:     "   ",
			wantSQL: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.sql)

			if tt.wantErr != "" {
				if result.Error == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(result.Error.Error(), tt.wantErr) {
					t.Errorf("error = %q, want containing %q", result.Error.Error(), tt.wantErr)
				}
				return
			}

			if result.Error != nil {
				t.Fatalf("unexpected error: %v", result.Error)
			}
			if result.NormalizedSQL != tt.wantSQL {
				t.Errorf("normalized = %q, want %q", result.NormalizedSQL, tt.wantSQL)
			}
		})
	}
}

func TestHasSemicolonOutsideStrings(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", false},
		{"SELECT 1; SELECT 2", true},
		{"SELECT 'a;b'", false},
		{`SELECT "col;name" FROM t`, false},
		{"SELECT 'it''s; fine'", false},
		{"SELECT 'open string; ", false},
	}

	for _, tt := range tests {
		if got := hasSemicolonOutsideStrings(tt.sql); got != tt.want {
			t.Errorf("hasSemicolonOutsideStrings(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}
