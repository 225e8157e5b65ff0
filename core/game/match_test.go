package game

import (
	"testing"

	"blindtest/model"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "top 1 squeezie", Normalize("  Top 1   Squeezie "))
	assert.Equal(t, "deja vu", Normalize("Déjà Vu"))
	assert.Equal(t, "ain t no sunshine", Normalize("Ain't No Sunshine!"))
	assert.Equal(t, "", Normalize("¿¿??!!"))
	assert.Equal(t, "abc 123", Normalize("ABC-123"))
}

func TestIsCorrect(t *testing.T) {
	track := model.Track{Title: "Top 1", Artist: "Squeezie"}

	tests := []struct {
		name       string
		submission string
		want       bool
	}{
		{"exact title", "top 1", true},
		{"exact artist", "squeezie", true},
		{"artist with noise", "SQUEEZIE!!", true},
		{"verbose answer", "it's Top 1 by Squeezie", true},
		{"title then artist", "top 1 squeezie", true},
		{"artist then title", "squeezie top 1", true},
		{"partial title", "top", false},
		{"empty", "   ", false},
		{"unrelated", "daft punk", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(tt.submission, track))
		})
	}
}

func TestIsCorrectIgnoresDiacritics(t *testing.T) {
	track := model.Track{Title: "Dernière danse", Artist: "Indila"}

	assert.True(t, IsCorrect("derniere danse", track))
	assert.True(t, IsCorrect("DERNIÈRE DANSE", track))
	assert.False(t, IsCorrect("danse", track))
}

func TestIsCorrectEmptyTrackFields(t *testing.T) {
	// A track with no usable metadata must never match, even against an
	// empty-ish submission.
	assert.False(t, IsCorrect("anything", model.Track{}))
	assert.False(t, IsCorrect("", model.Track{Title: "Top 1"}))
}
