package service

const (
	WeightPerformance       = 0.15
	WeightEngagement        = 0.15
	WeightProfileCompletion = 0.20
	WeightSEO               = 0.20
	WeightReview            = 0.15
	WeightReviewReply       = 0.15
)

// SubScores are the unrounded inputs to the overall score. Search rank is
// reported separately and never weighted in.
type SubScores struct {
	Performance       float64
	Engagement        float64
	ProfileCompletion float64
	SEO               float64
	Review            float64
	ReviewReply       float64
}

// Aggregate weights the sub-scores and rounds once.
func Aggregate(s SubScores) int {
	overall := WeightPerformance*s.Performance +
		WeightEngagement*s.Engagement +
		WeightProfileCompletion*s.ProfileCompletion +
		WeightSEO*s.SEO +
		WeightReview*s.Review +
		WeightReviewReply*s.ReviewReply

	return int(clampScore(roundHalfUp(overall)))
}

// NewAuditScore rounds the sub-scores for display and derives Overall.
func NewAuditScore(s SubScores, searchRank int) AuditScore {
	return AuditScore{
		Overall:           Aggregate(s),
		Performance:       roundScore(clampScore(s.Performance)),
		Engagement:        roundScore(clampScore(s.Engagement)),
		ProfileCompletion: roundScore(clampScore(s.ProfileCompletion)),
		SEOScore:          roundScore(clampScore(s.SEO)),
		ReviewScore:       roundScore(clampScore(s.Review)),
		ReviewReplyScore:  roundScore(clampScore(s.ReviewReply)),
		SearchRank:        searchRank,
	}
}
