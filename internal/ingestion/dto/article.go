package dto

import "time"

// RawArticle is a fetched news article before matching and scoring. It is
// transient: only derived sentiment records are persisted long-term.
type RawArticle struct {
	Title       string
	Body        string
	Source      string
	SourceURL   string
	PublishedAt time.Time
}

// Text returns the text the sentiment scorer runs on.
func (a RawArticle) Text() string {
	if a.Body == "" {
		return a.Title
	}
	return a.Title + " " + a.Body
}
