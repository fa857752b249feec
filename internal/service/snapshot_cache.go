package service

import (
	"fmt"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
)

const (
	DefaultProfileTTL      = 15 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	Items    int     `json:"items"`
	HitRatio float64 `json:"hit_ratio"`
}

// SnapshotCache keeps team profiles keyed by team and as-of minute. Entries are only
// valid until the next ingestion, which must call Invalidate.
type SnapshotCache struct {
	cache  *cache.Cache
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewSnapshotCache creates a new profile cache
func NewSnapshotCache(ttl, cleanupInterval time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &SnapshotCache{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func profileKey(teamID int64, asOf time.Time) string {
	return fmt.Sprintf("profile:%d:%s", teamID, asOf.UTC().Format("2006-01-02T15:04"))
}

func ratingsKey(asOf time.Time) string {
	return "ratings:" + asOf.UTC().Format("2006-01-02T15:04")
}

// GetProfile returns a cached profile
func (c *SnapshotCache) GetProfile(teamID int64, asOf time.Time) (models.TeamProfile, bool) {
	if v, found := c.cache.Get(profileKey(teamID, asOf)); found {
		if profile, ok := v.(models.TeamProfile); ok {
			c.hits.Add(1)
			metrics.RecordProfileCache(true)
			return profile, true
		}
	}
	c.misses.Add(1)
	metrics.RecordProfileCache(false)
	return models.TeamProfile{}, false
}

// SetProfile stores a profile
func (c *SnapshotCache) SetProfile(teamID int64, asOf time.Time, profile models.TeamProfile) {
	c.cache.Set(profileKey(teamID, asOf), profile, c.ttl)
}

// GetRatings returns cached league ratings
func (c *SnapshotCache) GetRatings(asOf time.Time) (*analytics.LeagueRatings, bool) {
	v, found := c.cache.Get(ratingsKey(asOf))
	if !found {
		return nil, false
	}
	ratings, ok := v.(*analytics.LeagueRatings)
	return ratings, ok
}

// SetRatings stores league ratings
func (c *SnapshotCache) SetRatings(asOf time.Time, ratings *analytics.LeagueRatings) {
	c.cache.Set(ratingsKey(asOf), ratings, c.ttl)
}

// Invalidate drops every entry
func (c *SnapshotCache) Invalidate() {
	c.cache.Flush()
}

// Stats returns hit/miss counters
func (c *SnapshotCache) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	stats := CacheStats{Hits: hits, Misses: misses, Items: c.cache.ItemCount()}
	if total := hits + misses; total > 0 {
		stats.HitRatio = float64(hits) / float64(total)
	}
	return stats
}
