package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
)

// maxSuggestions caps the list returned per table.
const maxSuggestions = 10

// SuggestionService proposes starter questions derived from the semantic
// roles in a table's schema profile.
type SuggestionService struct {
	queries *QueryService
	logger  *zap.Logger
}

func NewSuggestionService(queries *QueryService, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{queries: queries, logger: logger.Named("suggestions")}
}

// Suggest builds up to ten example questions for a table. Role-specific
// suggestions come first; generic ones pad the tail.
func (s *SuggestionService) Suggest(ctx context.Context, table string) ([]string, error) {
	profile, err := s.queries.Profile(ctx, table)
	if err != nil {
		return nil, err
	}
	return suggestionsForProfile(profile), nil
}

func suggestionsForProfile(profile *models.TableProfile) []string {
	measures := profile.MeasureColumns
	dims := profile.DimensionColumns
	dates := profile.DateColumns

	var suggestions []string
	if len(measures) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("What is the total %s?", measures[0]),
			fmt.Sprintf("What is the average %s?", measures[0]))
	}
	if len(dims) > 0 && len(measures) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Show %s by %s", measures[0], dims[0]),
			fmt.Sprintf("Top 10 %s by %s", dims[0], measures[0]))
	}
	if len(dates) > 0 && len(measures) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Trend of %s over time", measures[0]),
			fmt.Sprintf("Show %s by %s", measures[0], dates[0]))
	}
	if len(dims) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Distribution by %s", dims[0]))
		if len(dims) >= 2 {
			suggestions = append(suggestions, fmt.Sprintf("Breakdown by %s and %s", dims[0], dims[1]))
		}
	}

	suggestions = append(suggestions,
		"Show all data",
		"Count of records",
		"Summary statistics")

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
