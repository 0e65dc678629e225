package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptable(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://goduke.com/sports/football/coaches", true},
		{"https://ohiostatebuckeyes.com/sports/m-baskbl/staff", true},
		{"https://goduke.com/sports/football/roster/coaches/mike-elko/4315", false},
		{"https://gostanford.com/sports/wsoc/coaches/jane-doe/12", false},
		{"https://twitter.com/DukeFOOTBALL", false},
		{"https://x.edu/sports/football/news/article/1", false},
		{"https://www.espn.com/college-football/team", false},
		{"https://www.linkedin.com/in/coach", false},
		{"ftp://goduke.com/staff", false},
		{"/sports/football/coaches", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Acceptable(tt.url))
		})
	}
}

func TestExtractURLs(t *testing.T) {
	text := `Here are the pages:
- https://goduke.com/sports/football/coaches.
- [Staff](https://goduke.com/staff-directory)
- "https://gostanford.com/sports/wsoc/coaches";`

	assert.Equal(t, []string{
		"https://goduke.com/sports/football/coaches",
		"https://goduke.com/staff-directory",
		"https://gostanford.com/sports/wsoc/coaches",
	}, ExtractURLs(text))
}

func TestFilter_DedupPreservesOrder(t *testing.T) {
	in := []string{"https://b.edu/staff", "https://a.edu/staff", " https://b.edu/staff "}
	assert.Equal(t, []string{"https://b.edu/staff", "https://a.edu/staff"}, Filter(in, 0))
}
