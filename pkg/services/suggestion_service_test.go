package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
)

func TestSuggest(t *testing.T) {
	qs := newTestService(t, nil)
	ingestOrders(t, qs)
	s := NewSuggestionService(qs, zap.NewNop())

	suggestions, err := s.Suggest(context.Background(), "orders")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"What is the total revenue?",
		"What is the average revenue?",
		"Show revenue by region",
		"Top 10 region by revenue",
		"Trend of revenue over time",
		"Show revenue by order_date",
		"Distribution by region",
		"Show all data",
		"Count of records",
		"Summary statistics",
	}, suggestions)
}

func TestSuggestMissingTable(t *testing.T) {
	qs := newTestService(t, nil)
	s := NewSuggestionService(qs, zap.NewNop())

	_, err := s.Suggest(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSuggestionsForProfileGenericOnly(t *testing.T) {
	profile := &models.TableProfile{TableName: "notes"}
	got := suggestionsForProfile(profile)
	assert.Equal(t, []string{"Show all data", "Count of records", "Summary statistics"}, got)
}

func TestSuggestionsForProfileCapped(t *testing.T) {
	profile := &models.TableProfile{
		MeasureColumns:   []string{"revenue", "quantity"},
		DimensionColumns: []string{"region", "product"},
		DateColumns:      []string{"order_date"},
	}
	got := suggestionsForProfile(profile)
	assert.Len(t, got, 10)
}