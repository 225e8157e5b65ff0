package deezer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMapsTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "daft punk", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"data":[{
			"id": 3135556,
			"title": "One More Time",
			"preview": "https://cdn.example/p.mp3",
			"artist": {"name": "Daft Punk"},
			"album": {"title": "Discovery", "cover_medium": "https://cdn.example/m.jpg", "cover_big": "https://cdn.example/b.jpg"}
		}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	tracks, err := client.Search(context.Background(), "daft punk")
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	track := tracks[0]
	assert.Equal(t, int64(3135556), track.ID)
	assert.Equal(t, "One More Time", track.Title)
	assert.Equal(t, "Daft Punk", track.Artist)
	assert.Equal(t, "Discovery", track.Album)
	assert.Equal(t, "https://cdn.example/p.mp3", track.Preview)
	assert.Equal(t, "https://cdn.example/b.jpg", track.BestCover())
	assert.Equal(t, "https://cdn.example/m.jpg", track.MediumCover())
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient("http://unused.invalid", nil)
	tracks, err := client.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestSearchSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quota limit exceeded")
}

func TestTrackByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track/42", r.URL.Path)
		fmt.Fprint(w, `{"id": 42, "title": "Around the World", "artist": {"name": "Daft Punk"}, "album": {}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	track, err := client.Track(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), track.ID)
	assert.Equal(t, "Around the World", track.Title)
}

func TestTestTrackSkipsPreviewlessResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First query yields a result without a playable preview; a later one
		// yields a usable track.
		if r.URL.Query().Get("q") == testTrackQueries[0] {
			fmt.Fprint(w, `{"data":[{"id": 1, "title": "Top 1", "artist": {"name": "Squeezie"}, "album": {}}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id": 2, "title": "Top 1", "preview": "https://cdn.example/top1.mp3", "artist": {"name": "Squeezie"}, "album": {}}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	track, err := client.TestTrack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), track.ID)
	assert.Equal(t, "https://cdn.example/top1.mp3", track.Preview)
}
