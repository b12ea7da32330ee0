package service

import (
	"strings"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/dto"
)

// MatchCompanies decides which companies an article is relevant to. A
// company matches when any of its keywords appears, case-insensitively, as a
// substring of the article's title or body. An article may match zero
// companies (discarded by the caller), one, or several; each match is an
// independent candidate record. Pure function over immutable inputs;
// result order follows registry order with no duplicate tickers.
func MatchCompanies(article dto.RawArticle, companies []entity.Company) []string {
	haystack := strings.ToLower(article.Title + " " + article.Body)

	var matched []string
	for _, company := range companies {
		for _, keyword := range company.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(keyword)) {
				matched = append(matched, company.Ticker)
				break
			}
		}
	}
	return matched
}
