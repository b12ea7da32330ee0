package service

import (
	"testing"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/dto"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func testCompanies() []entity.Company {
	return []entity.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Keywords: pq.StringArray{"Apple", "AAPL"}},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Keywords: pq.StringArray{"Microsoft", "MSFT"}},
		{Ticker: "TSLA", Name: "Tesla Inc.", Keywords: pq.StringArray{"Tesla", "TSLA"}},
	}
}

func TestMatchCompanies_SingleMatch(t *testing.T) {
	article := dto.RawArticle{Title: "Apple unveils new chip"}

	matched := MatchCompanies(article, testCompanies())

	assert.Equal(t, []string{"AAPL"}, matched)
}

func TestMatchCompanies_FansOutToMultipleCompanies(t *testing.T) {
	article := dto.RawArticle{
		Title: "Apple and Microsoft report earnings",
		Body:  "Both companies beat expectations.",
	}

	matched := MatchCompanies(article, testCompanies())

	assert.Equal(t, []string{"AAPL", "MSFT"}, matched)
}

func TestMatchCompanies_CaseInsensitive(t *testing.T) {
	article := dto.RawArticle{Title: "TESLA deliveries surge in Q3"}

	matched := MatchCompanies(article, testCompanies())

	assert.Equal(t, []string{"TSLA"}, matched)
}

func TestMatchCompanies_MatchesInBody(t *testing.T) {
	article := dto.RawArticle{
		Title: "Tech roundup for the week",
		Body:  "Shares of Microsoft climbed after the announcement.",
	}

	matched := MatchCompanies(article, testCompanies())

	assert.Equal(t, []string{"MSFT"}, matched)
}

func TestMatchCompanies_NoMatch(t *testing.T) {
	article := dto.RawArticle{Title: "Oil prices steady as markets open"}

	matched := MatchCompanies(article, testCompanies())

	assert.Empty(t, matched)
}

func TestMatchCompanies_NoDuplicateTickerWhenSeveralKeywordsHit(t *testing.T) {
	article := dto.RawArticle{Title: "Apple (AAPL) sets new record"}

	matched := MatchCompanies(article, testCompanies())

	assert.Equal(t, []string{"AAPL"}, matched)
}

func TestMatchCompanies_SkipsEmptyKeywords(t *testing.T) {
	companies := []entity.Company{
		{Ticker: "XYZ", Name: "XYZ Corp", Keywords: pq.StringArray{"", "XYZ Corp"}},
	}
	article := dto.RawArticle{Title: "Unrelated headline"}

	matched := MatchCompanies(article, companies)

	assert.Empty(t, matched)
}
