package service

import "errors"

var (
	// ErrRegistryEmpty means the company registry loaded but holds no
	// companies; the run aborts before any work.
	ErrRegistryEmpty = errors.New("company registry is empty")

	// ErrEmptyText means an article carries no text to score. The article
	// is skipped, never persisted with a synthetic neutral score.
	ErrEmptyText = errors.New("article text is empty")

	// ErrNoArticles means a company has no sentiment rows for a date, so no
	// score row is produced for it. Absence of data, not a zero score.
	ErrNoArticles = errors.New("no articles for ticker and date")

	// ErrRunInProgress means another batch run holds the ingestion lock.
	ErrRunInProgress = errors.New("another ingestion run is in progress")
)
