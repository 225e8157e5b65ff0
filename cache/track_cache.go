package cache

import (
	"context"
	"encoding/json"
	"time"

	"blindtest/db"
	"blindtest/logger"
	"blindtest/model"

	"github.com/go-redis/redis/v8"
)

const (
	searchKeyPrefix = "deezer:search:"
	testTrackKey    = "deezer:testtrack"

	searchTTL    = 10 * time.Minute
	testTrackTTL = 24 * time.Hour
)

// TrackCache caches Deezer responses in Redis so repeated moderator
// searches and the test track do not hammer the API. All methods degrade to
// cache misses when Redis is unavailable.
type TrackCache struct {
	rdb *redis.Client
}

// NewTrackCache creates a cache over the shared Redis client. A nil client
// disables caching.
func NewTrackCache() *TrackCache {
	return &TrackCache{rdb: db.RedisClient}
}

// GetSearch returns cached search results for a query.
func (c *TrackCache) GetSearch(ctx context.Context, query string) ([]model.Track, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, searchKeyPrefix+query).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("search cache read failed", logger.ErrorField(err))
		}
		return nil, false
	}
	var tracks []model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, false
	}
	return tracks, true
}

// SetSearch caches search results for a query.
func (c *TrackCache) SetSearch(ctx context.Context, query string, tracks []model.Track) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, searchKeyPrefix+query, data, searchTTL).Err(); err != nil {
		logger.Debug("search cache write failed", logger.ErrorField(err))
	}
}

// GetTestTrack returns the cached test-round track.
func (c *TrackCache) GetTestTrack(ctx context.Context) (model.Track, bool) {
	if c == nil || c.rdb == nil {
		return model.Track{}, false
	}
	data, err := c.rdb.Get(ctx, testTrackKey).Bytes()
	if err != nil {
		return model.Track{}, false
	}
	var track model.Track
	if err := json.Unmarshal(data, &track); err != nil {
		return model.Track{}, false
	}
	return track, true
}

// SetTestTrack caches the test-round track.
func (c *TrackCache) SetTestTrack(ctx context.Context, track model.Track) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(track)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, testTrackKey, data, testTrackTTL).Err(); err != nil {
		logger.Debug("test track cache write failed", logger.ErrorField(err))
	}
}
