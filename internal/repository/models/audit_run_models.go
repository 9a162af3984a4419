package models

import "time"

// AuditRunRecord is one persisted audit run. JSON columns hold the score,
// the performance series and the recommendations as produced by the run.
type AuditRunRecord struct {
	ID                  string
	UserID              string
	LocationID          string
	Overall             int
	ScoreJSON           []byte
	SeriesJSON          []byte
	RecommendationsJSON []byte
	Insight             string
	DateStart           string
	DateEnd             string
	CreatedAt           time.Time
}
