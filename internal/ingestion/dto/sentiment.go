package dto

// SentimentResult is the outcome of scoring one unit of text.
type SentimentResult struct {
	Polarity   float64 `json:"polarity"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassifierResponse is the JSON shape the external classifier is asked
// to reply with.
type ClassifierResponse struct {
	Polarity   float64 `json:"polarity"`
	Confidence float64 `json:"confidence"`
}
