package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
)

const sqlSystemMessage = `You are a SQL expert. Generate a single DuckDB-compatible SQL query that answers the user's question.

Rules:
1. Return ONLY the SQL query, no explanations.
2. Use only SELECT statements. Never modify data.
3. Always include a LIMIT clause (max 1000 rows) unless the query aggregates to few rows.
4. Use only the columns listed in the schema.
5. If you had to make assumptions, add them as comment lines starting with -- Assumption:`

// generateWithLLM asks the configured model for SQL, handing it the profiled
// schema as context. The response is stripped of code fences and assumption
// comments before being returned as a fixed-confidence plan.
func (g *Generator) generateWithLLM(ctx context.Context, question string, profile *models.TableProfile) (models.SQLPlan, error) {
	prompt := fmt.Sprintf("%s\nQuestion: %s\n\nSQL:", schema.SchemaContext(profile), question)

	raw, err := g.llm.GenerateSQL(ctx, prompt, sqlSystemMessage)
	if err != nil {
		return models.SQLPlan{}, err
	}

	sqlText, assumptions := ExtractSQL(raw)
	if sqlText == "" {
		return models.SQLPlan{}, fmt.Errorf("model returned no SQL")
	}

	g.logger.Debug("LLM generated SQL",
		zap.String("model", g.llm.Model()),
		zap.String("sql", sqlText))

	return models.SQLPlan{SQL: sqlText, Confidence: 0.85, Assumptions: assumptions}, nil
}

// ExtractSQL strips markdown code fences and pulls out "-- Assumption:"
// comment lines from a model response, returning the bare SQL text and the
// collected assumptions.
func ExtractSQL(response string) (string, []string) {
	text := strings.TrimSpace(response)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```sql")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	var sqlLines []string
	var assumptions []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(trimmed, "-- Assumption:"); ok {
			if a := strings.TrimSpace(after); a != "" {
				assumptions = append(assumptions, a)
			}
			continue
		}
		sqlLines = append(sqlLines, line)
	}

	return strings.TrimSpace(strings.Join(sqlLines, "\n")), assumptions
}
