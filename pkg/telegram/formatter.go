package telegram

import (
	"fmt"
	"strings"
	"time"
)

// RankedScore is the subset of a company score needed for notifications.
type RankedScore struct {
	Ticker       string
	Score        float64
	ArticleCount int
	Rank         int
}

// FormatDailyRanking builds the post-run notification message listing the
// top ranked tickers for a date.
func FormatDailyRanking(date time.Time, scores []RankedScore, limit int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*News Sentiment Ranking %s*\n\n", date.Format("2006-01-02")))

	if len(scores) == 0 {
		b.WriteString("No companies scored today.")
		return b.String()
	}

	if limit > len(scores) {
		limit = len(scores)
	}

	for _, s := range scores[:limit] {
		emoji := "⚪️"
		if s.Score > 0 {
			emoji = "🟢"
		} else if s.Score < 0 {
			emoji = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s #%d `%s` score %.2f (%d articles)\n",
			emoji, s.Rank, s.Ticker, s.Score, s.ArticleCount))
	}

	return b.String()
}
