package dto

// SentimentHistoryItem is one article-sentiment row in a company's history,
// used by the per-ticker history chart.
type SentimentHistoryItem struct {
	Ticker      string   `json:"ticker"`
	PublishedAt string   `json:"published_at"`
	Polarity    float64  `json:"polarity"`
	Label       string   `json:"label"`
	Confidence  *float64 `json:"confidence,omitempty"`
}
