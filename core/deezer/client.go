package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"blindtest/cache"
	"blindtest/logger"
	"blindtest/model"
)

// Client talks to the public Deezer API. It is the engine's track-search
// collaborator: failures surface as errors here and are treated as "no
// candidates" upstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.TrackCache
}

// NewClient creates a Deezer client. The cache may be nil.
func NewClient(baseURL string, trackCache *cache.TrackCache) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: trackCache,
	}
}

// deezerTrack is the subset of the Deezer payload this service uses.
type deezerTrack struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Artist  struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title       string `json:"title"`
		Cover       string `json:"cover"`
		CoverMedium string `json:"cover_medium"`
		CoverBig    string `json:"cover_big"`
	} `json:"album"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (t deezerTrack) toModel() model.Track {
	return model.Track{
		ID:          t.ID,
		Title:       t.Title,
		Artist:      t.Artist.Name,
		Album:       t.Album.Title,
		Cover:       t.Album.Cover,
		CoverMedium: t.Album.CoverMedium,
		CoverBig:    t.Album.CoverBig,
		Preview:     t.Preview,
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deezer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deezer status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode deezer response: %w", err)
	}
	return nil
}

// Search queries Deezer and returns candidate tracks.
func (c *Client) Search(ctx context.Context, query string) ([]model.Track, error) {
	if query == "" {
		return nil, nil
	}
	if tracks, ok := c.cache.GetSearch(ctx, query); ok {
		return tracks, nil
	}

	var result struct {
		Data  []deezerTrack `json:"data"`
		Error *apiError     `json:"error"`
	}
	if err := c.get(ctx, "/search?q="+url.QueryEscape(query), &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("deezer error: %s (code %d)", result.Error.Message, result.Error.Code)
	}

	tracks := make([]model.Track, 0, len(result.Data))
	for _, t := range result.Data {
		tracks = append(tracks, t.toModel())
	}
	c.cache.SetSearch(ctx, query, tracks)
	return tracks, nil
}

// Track fetches a single track by id.
func (c *Client) Track(ctx context.Context, id string) (*model.Track, error) {
	var result struct {
		deezerTrack
		Error *apiError `json:"error"`
	}
	if err := c.get(ctx, "/track/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("deezer error: %s (code %d)", result.Error.Message, result.Error.Code)
	}

	track := result.deezerTrack.toModel()
	return &track, nil
}

// testTrackQueries are tried in order until one yields a playable preview.
var testTrackQueries = []string{
	"Top 1 Squeezie",
	"Squeezie Top 1",
	"Top 1 - Squeezie",
	"Top 1 de Squeezie",
}

// TestTrack resolves the canonical test-round track, cached for a day.
func (c *Client) TestTrack(ctx context.Context) (model.Track, error) {
	if track, ok := c.cache.GetTestTrack(ctx); ok {
		return track, nil
	}

	for _, q := range testTrackQueries {
		tracks, err := c.Search(ctx, q)
		if err != nil {
			logger.Warn("test track search failed", logger.String("query", q), logger.ErrorField(err))
			continue
		}
		for _, t := range tracks {
			if t.Preview != "" {
				c.cache.SetTestTrack(ctx, t)
				return t, nil
			}
		}
	}
	return model.Track{}, fmt.Errorf("no playable test track found")
}
