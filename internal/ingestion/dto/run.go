package dto

// RunStats counts the per-unit outcomes of one batch run. Stored as the
// BatchRun result payload.
type RunStats struct {
	Companies       int `json:"companies"`
	ArticlesFetched int `json:"articles_fetched"`
	ArticlesMatched int `json:"articles_matched"`
	Persisted       int `json:"persisted"`
	DuplicateSkips  int `json:"duplicate_skips"`
	FetchErrors     int `json:"fetch_errors"`
	ScoreErrors     int `json:"score_errors"`
	CompaniesScored int `json:"companies_scored"`
}
