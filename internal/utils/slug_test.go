package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "The Forest Hiker", "the-forest-hiker"},
		{"accents", "Café Crémerie Tour", "cafe-cremerie-tour"},
		{"extra spaces", "The  Sea   Explorer", "the-sea-explorer"},
		{"punctuation", "The Snow Adventurer!", "the-snow-adventurer"},
		{"leading trailing", "  The Park Camper  ", "the-park-camper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	assert.Equal(t, Slugify("The City Wanderer"), Slugify("The City Wanderer"))
}
