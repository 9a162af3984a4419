package service

import "time"

// PerformanceMetric is one calendar day of activity for a location.
type PerformanceMetric struct {
	Date              string `json:"date"`
	Views             int    `json:"views"`
	Impressions       int    `json:"impressions"`
	Calls             int    `json:"calls"`
	WebsiteClicks     int    `json:"websiteClicks"`
	DirectionRequests int    `json:"directionRequests"`
}

type ReviewReply struct {
	Comment    string    `json:"comment,omitempty"`
	UpdateTime time.Time `json:"updateTime,omitempty"`
}

type Review struct {
	Rating     int          `json:"rating"`
	CreateTime time.Time    `json:"createTime"`
	Reply      *ReviewReply `json:"reply,omitempty"`
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// AuditScore is the single output artifact of an audit run. Overall is always
// derived from the sub-scores by Aggregate and is never set on its own.
type AuditScore struct {
	Overall           int `json:"overall"`
	Performance       int `json:"performance"`
	Engagement        int `json:"engagement"`
	ProfileCompletion int `json:"profileCompletion"`
	SEOScore          int `json:"seoScore"`
	ReviewScore       int `json:"reviewScore"`
	ReviewReplyScore  int `json:"reviewReplyScore"`
	SearchRank        int `json:"searchRank"`

	ProfileCompletionDetails *ProfileCompletionDetails `json:"profileCompletionDetails,omitempty"`
	SEODetails               *SEODetails               `json:"seoDetails,omitempty"`
	ReviewDetails            *ReviewDetails            `json:"reviewDetails,omitempty"`
}

type ProfileCompletionDetails struct {
	CompletedFields int      `json:"completedFields"`
	TotalFields     int      `json:"totalFields"`
	MissingFields   []string `json:"missingFields"`
}

type SEODetails struct {
	HasDescription bool `json:"hasDescription"`
	HasKeywords    bool `json:"hasKeywords"`
	HasCategories  bool `json:"hasCategories"`
}

type ReviewDetails struct {
	TotalReviews      int     `json:"totalReviews"`
	ReviewsLast30Days int     `json:"reviewsLast30Days"`
	ReviewsPerWeek    float64 `json:"reviewsPerWeek"`
	RepliedReviews    int     `json:"repliedReviews"`
	ReplyRate         float64 `json:"replyRate"`
}

// AuditRun is the record emitted once per successful run.
type AuditRun struct {
	ID                string              `json:"id"`
	UserID            string              `json:"userId"`
	LocationID        string              `json:"locationId"`
	PerformanceSeries []PerformanceMetric `json:"performanceSeries"`
	Score             AuditScore          `json:"score"`
	Recommendations   []string            `json:"recommendations"`
	Insight           string              `json:"insight,omitempty"`
	DateRange         DateRange           `json:"dateRange"`
	Timestamp         time.Time           `json:"timestamp"`
}

// RunRequest asks the orchestrator to audit one location. Profile is the
// snapshot already resident in the caller's session; it is never re-fetched.
type RunRequest struct {
	UserID     string
	LocationID string
	Profile    *ProfileSnapshot
}

type RankQuery struct {
	BusinessName string  `json:"businessName"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PlaceID      string  `json:"placeId,omitempty"`
	Category     string  `json:"category,omitempty"`
}

type RankResult struct {
	Found bool `json:"found"`
	Rank  int  `json:"rank,omitempty"`
}

// RunSummary is the history view of a persisted run.
type RunSummary struct {
	RunID           string     `json:"runId"`
	LocationID      string     `json:"locationId"`
	Score           AuditScore `json:"score"`
	Recommendations []string   `json:"recommendations"`
	DateRange       DateRange  `json:"dateRange"`
	Timestamp       time.Time  `json:"timestamp"`
}
