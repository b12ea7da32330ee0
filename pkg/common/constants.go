package common

const (
	RedisStreamScoresUpdated = "scores.updated"
	RedisKeyIngestionLock    = "ingestion:run:lock"
)
