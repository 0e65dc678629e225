package model

// Page is a fetched source page.
type Page struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	HTML       string `json:"html,omitempty"`
	Text       string `json:"text"`
	StatusCode int    `json:"status_code"`
	Fetcher    string `json:"fetcher"`
}

// Content returns the markup when the fetcher kept it, otherwise the
// readable text.
func (p *Page) Content() string {
	if p.HTML != "" {
		return p.HTML
	}
	return p.Text
}

// Empty reports whether the page carries neither markup nor text.
func (p *Page) Empty() bool {
	return p.HTML == "" && p.Text == ""
}
