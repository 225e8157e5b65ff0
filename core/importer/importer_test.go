package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"blindtest/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results map[string][]model.Track
}

func (s stubSearcher) Search(_ context.Context, query string) ([]model.Track, error) {
	return s.results[query], nil
}

func writeSongList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSkipsHeaderAndBlankRows(t *testing.T) {
	path := writeSongList(t, "artist;title\nDaft Punk;One More Time\n;\nSqueezie;Top 1\n")

	imp := New(path, stubSearcher{})
	require.NoError(t, imp.Load())

	entries := imp.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Artist: "Daft Punk", Title: "One More Time"}, entries[0])
	assert.Equal(t, Entry{Artist: "Squeezie", Title: "Top 1"}, entries[1])
}

func TestLoadMissingFile(t *testing.T) {
	imp := New(filepath.Join(t.TempDir(), "absent.csv"), stubSearcher{})
	assert.Error(t, imp.Load())
}

func TestResolveFallsBackAcrossQueries(t *testing.T) {
	path := writeSongList(t, "Daft Punk;One More Time\nNobody;Unfindable\n")

	search := stubSearcher{results: map[string][]model.Track{
		// The artist-first query misses; the title-first one hits but the
		// first candidate has no preview.
		"One More Time Daft Punk": {
			{ID: 1, Title: "One More Time"},
			{ID: 2, Title: "One More Time", Preview: "https://cdn.example/p.mp3"},
		},
	}}

	imp := New(path, search)
	require.NoError(t, imp.Load())

	tracks, unmatched := imp.Resolve(context.Background())
	require.Len(t, tracks, 1)
	assert.Equal(t, int64(2), tracks[0].ID)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "Unfindable", unmatched[0].Title)
}
