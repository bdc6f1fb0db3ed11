// Package cache provides the TTL caches for schema profiles and query
// results, with hit/miss accounting and per-table invalidation.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/Kesh3805/autobi/pkg/models"
)

// Default lifetimes. Schema profiles change only on re-upload; query results
// go stale faster because new uploads replace tables wholesale.
const (
	DefaultSchemaTTL = 10 * time.Minute
	DefaultQueryTTL  = 2 * time.Minute
)

// Stats is a point-in-time snapshot of one cache's effectiveness.
type Stats struct {
	Size    int     `json:"size"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Caches bundles the schema and query caches used by the pipeline.
type Caches struct {
	schemas *ttlcache.Cache[string, *models.TableProfile]
	queries *ttlcache.Cache[string, *models.QueryResponse]

	schemaHits   atomic.Uint64
	schemaMisses atomic.Uint64
	queryHits    atomic.Uint64
	queryMisses  atomic.Uint64
}

// New creates the cache pair and starts their expiration loops.
func New(schemaTTL, queryTTL time.Duration) *Caches {
	if schemaTTL <= 0 {
		schemaTTL = DefaultSchemaTTL
	}
	if queryTTL <= 0 {
		queryTTL = DefaultQueryTTL
	}

	c := &Caches{
		schemas: ttlcache.New(
			ttlcache.WithTTL[string, *models.TableProfile](schemaTTL),
			ttlcache.WithDisableTouchOnHit[string, *models.TableProfile](),
		),
		queries: ttlcache.New(
			ttlcache.WithTTL[string, *models.QueryResponse](queryTTL),
			ttlcache.WithDisableTouchOnHit[string, *models.QueryResponse](),
		),
	}
	go c.schemas.Start()
	go c.queries.Start()
	return c
}

// Stop terminates the expiration loops.
func (c *Caches) Stop() {
	c.schemas.Stop()
	c.queries.Stop()
}

// GetSchema returns a cached profile, or nil on a miss.
func (c *Caches) GetSchema(table string) *models.TableProfile {
	item := c.schemas.Get(schemaKey(table))
	if item == nil {
		c.schemaMisses.Add(1)
		return nil
	}
	c.schemaHits.Add(1)
	return item.Value()
}

// SetSchema caches a table profile.
func (c *Caches) SetSchema(table string, profile *models.TableProfile) {
	c.schemas.Set(schemaKey(table), profile, ttlcache.DefaultTTL)
}

// GetQuery returns a cached pipeline response for a question, or nil.
func (c *Caches) GetQuery(question, table string) *models.QueryResponse {
	item := c.queries.Get(queryKey(question, table))
	if item == nil {
		c.queryMisses.Add(1)
		return nil
	}
	c.queryHits.Add(1)
	return item.Value()
}

// SetQuery caches a pipeline response.
func (c *Caches) SetQuery(question, table string, resp *models.QueryResponse) {
	c.queries.Set(queryKey(question, table), resp, ttlcache.DefaultTTL)
}

// InvalidateTable drops every schema and query entry keyed to the table.
// Called when a table is replaced or removed.
func (c *Caches) InvalidateTable(table string) {
	for _, key := range c.schemas.Keys() {
		if strings.Contains(key, table) {
			c.schemas.Delete(key)
		}
	}
	for _, key := range c.queries.Keys() {
		if strings.Contains(key, table) {
			c.queries.Delete(key)
		}
	}
}

// Clear empties both caches and resets the counters.
func (c *Caches) Clear() {
	c.schemas.DeleteAll()
	c.queries.DeleteAll()
	c.schemaHits.Store(0)
	c.schemaMisses.Store(0)
	c.queryHits.Store(0)
	c.queryMisses.Store(0)
}

// SchemaStats reports the schema cache effectiveness.
func (c *Caches) SchemaStats() Stats {
	return snapshot(c.schemas.Len(), c.schemaHits.Load(), c.schemaMisses.Load())
}

// QueryStats reports the query cache effectiveness.
func (c *Caches) QueryStats() Stats {
	return snapshot(c.queries.Len(), c.queryHits.Load(), c.queryMisses.Load())
}

func snapshot(size int, hits, misses uint64) Stats {
	s := Stats{Size: size, Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total) * 100
	}
	return s
}

func schemaKey(table string) string {
	return "schema:" + table
}

func queryKey(question, table string) string {
	digest := md5.Sum([]byte(question))
	return fmt.Sprintf("query:%s:%s", table, hex.EncodeToString(digest[:]))
}
