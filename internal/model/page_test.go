package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Content(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page Page
		want string
	}{
		{"prefers html", Page{HTML: "<p>Coach</p>", Text: "Coach"}, "<p>Coach</p>"},
		{"falls back to text", Page{Text: "Jane Doe - Head Coach"}, "Jane Doe - Head Coach"},
		{"empty", Page{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.page.Content())
		})
	}
}

func TestPage_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Page{URL: "https://a.edu"}).Empty())
	assert.False(t, (&Page{Text: "x"}).Empty())
	assert.False(t, (&Page{HTML: "<p/>"}).Empty())
}
