package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuggestLocation(t *testing.T) {
	locations := []string{"Westlands, Nairobi", "Karen", "Kilimani", "karen", "Nyali, Mombasa"}

	tests := []struct {
		query string
		want  string
	}{
		{"Karren", "Karen"},
		{"kilimanj", "Kilimani"},
		{"Nyali Mombasa", "Nyali, Mombasa"},
		{"Karen", ""},
		{"Kisumu Central Business District", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestLocation(tt.query, locations))
		})
	}
}

func TestSuggestLocationIgnoresAccents(t *testing.T) {
	assert.Equal(t, "Kileleshwa", SuggestLocation("Kilélèswa", []string{"Kileleshwa"}))
	// an exact match once accents are stripped needs no suggestion
	assert.Equal(t, "", SuggestLocation("Kilélèshwa", []string{"Kileleshwa"}))
	assert.Equal(t, "", SuggestLocation("Kile\u0301le\u0300shwa", []string{"Kileleshwa"}))
}

func TestObjectName(t *testing.T) {
	at := time.UnixMilli(1717232400000)
	assert.Regexp(t, `^1717232400000-front_door-[0-9a-f]{8}$`, ObjectName(at, "front door.JPG"))
	assert.Regexp(t, `^1717232400000-kitchen-[0-9a-f]{8}$`, ObjectName(at, `C:\photos\kitchen.png`))
	assert.Regexp(t, `^1717232400000-image-[0-9a-f]{8}$`, ObjectName(at, ".png"))

	// same file, same millisecond
	assert.NotEqual(t, ObjectName(at, "kitchen.png"), ObjectName(at, "kitchen.png"))
}
