package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kesh3805/autobi/pkg/models"
)

func newTestCaches(t *testing.T) *Caches {
	t.Helper()
	c := New(time.Minute, time.Minute)
	t.Cleanup(c.Stop)
	return c
}

func TestSchemaCacheRoundTrip(t *testing.T) {
	c := newTestCaches(t)

	assert.Nil(t, c.GetSchema("orders"))

	profile := &models.TableProfile{TableName: "orders", RowCount: 10}
	c.SetSchema("orders", profile)

	got := c.GetSchema("orders")
	require.NotNil(t, got)
	assert.Same(t, profile, got)
}

func TestQueryCacheKeyedByQuestionAndTable(t *testing.T) {
	c := newTestCaches(t)

	resp := &models.QueryResponse{SQL: "SELECT 1"}
	c.SetQuery("total revenue", "orders", resp)

	assert.Same(t, resp, c.GetQuery("total revenue", "orders"))
	assert.Nil(t, c.GetQuery("total revenue", "sales"), "different table misses")
	assert.Nil(t, c.GetQuery("average revenue", "orders"), "different question misses")
}

func TestInvalidateTable(t *testing.T) {
	c := newTestCaches(t)

	c.SetSchema("orders", &models.TableProfile{TableName: "orders"})
	c.SetSchema("customers", &models.TableProfile{TableName: "customers"})
	c.SetQuery("total revenue", "orders", &models.QueryResponse{})
	c.SetQuery("total revenue", "customers", &models.QueryResponse{})

	c.InvalidateTable("orders")

	assert.Nil(t, c.GetSchema("orders"))
	assert.Nil(t, c.GetQuery("total revenue", "orders"))
	assert.NotNil(t, c.GetSchema("customers"), "other tables keep their entries")
	assert.NotNil(t, c.GetQuery("total revenue", "customers"))
}

func TestStatsAccounting(t *testing.T) {
	c := newTestCaches(t)

	c.GetSchema("orders") // miss
	c.SetSchema("orders", &models.TableProfile{})
	c.GetSchema("orders") // hit
	c.GetSchema("orders") // hit

	stats := c.SchemaStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 66.67, stats.HitRate, 0.01)

	// Query cache counters are independent.
	assert.Equal(t, uint64(0), c.QueryStats().Hits)
}

func TestClearResetsEverything(t *testing.T) {
	c := newTestCaches(t)

	c.SetSchema("orders", &models.TableProfile{})
	c.GetSchema("orders")
	c.Clear()

	stats := c.SchemaStats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, 0.0, stats.HitRate)
}

func TestQueryEntriesExpire(t *testing.T) {
	c := New(time.Minute, 20*time.Millisecond)
	defer c.Stop()

	c.SetQuery("total revenue", "orders", &models.QueryResponse{})
	require.NotNil(t, c.GetQuery("total revenue", "orders"))

	assert.Eventually(t, func() bool {
		return c.GetQuery("total revenue", "orders") == nil
	}, time.Second, 10*time.Millisecond)
}
