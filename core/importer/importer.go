package importer

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"blindtest/logger"
	"blindtest/model"

	"github.com/fsnotify/fsnotify"
)

// Searcher resolves free-text queries to candidate tracks.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Track, error)
}

// Entry is one pre-configured song, read from a semicolon-separated
// "artist;title" CSV.
type Entry struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Importer loads a moderator-maintained CSV song list and resolves it
// against the track-search collaborator. The file is re-read whenever it
// changes on disk.
type Importer struct {
	path   string
	search Searcher

	mu      sync.RWMutex
	entries []Entry
}

// New creates an importer for the given CSV path.
func New(path string, search Searcher) *Importer {
	return &Importer{path: path, search: search}
}

// Load parses the CSV file. A header line starting with "artist" is
// skipped; rows without a title are ignored.
func (i *Importer) Load() error {
	f, err := os.Open(i.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		artist := strings.TrimSpace(row[0])
		title := ""
		if len(row) > 1 {
			title = strings.TrimSpace(row[1])
		}
		if strings.EqualFold(artist, "artist") {
			continue
		}
		if title == "" {
			continue
		}
		entries = append(entries, Entry{Artist: artist, Title: title})
	}

	i.mu.Lock()
	i.entries = entries
	i.mu.Unlock()

	logger.Info("song list loaded",
		logger.String("path", i.path),
		logger.Int("entries", len(entries)))
	return nil
}

// Entries returns the currently loaded song list.
func (i *Importer) Entries() []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]Entry(nil), i.entries...)
}

// Watch reloads the song list whenever the file is rewritten. It returns
// when the context is cancelled.
func (i *Importer) Watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("song list watcher unavailable", logger.ErrorField(err))
		return
	}
	defer watcher.Close()

	// Watch the directory: editors replace files rather than write in place.
	if err := watcher.Add(filepath.Dir(i.path)); err != nil {
		logger.Warn("song list watch failed", logger.String("path", i.path), logger.ErrorField(err))
		return
	}

	target := filepath.Clean(i.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := i.Load(); err != nil {
				logger.Warn("song list reload failed", logger.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("song list watcher error", logger.ErrorField(err))
		}
	}
}

// Resolve looks every entry up on the search collaborator. Entries with no
// match are reported back instead of failing the import.
func (i *Importer) Resolve(ctx context.Context) (tracks []model.Track, unmatched []Entry) {
	for _, entry := range i.Entries() {
		queries := []string{}
		if entry.Artist != "" {
			queries = append(queries,
				entry.Artist+" "+entry.Title,
				entry.Title+" "+entry.Artist)
		}
		queries = append(queries, entry.Title)

		var found *model.Track
		for _, q := range queries {
			candidates, err := i.search.Search(ctx, q)
			if err != nil {
				logger.Warn("import search failed",
					logger.String("query", q),
					logger.ErrorField(err))
				break
			}
			for idx := range candidates {
				if candidates[idx].Preview != "" {
					found = &candidates[idx]
					break
				}
			}
			if found != nil {
				break
			}
		}

		if found == nil {
			unmatched = append(unmatched, entry)
			continue
		}
		tracks = append(tracks, *found)
	}
	return tracks, unmatched
}
