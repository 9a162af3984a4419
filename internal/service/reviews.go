package service

import "time"

const reviewCadenceWindow = 30 * 24 * time.Hour

// ReviewResult carries the unrounded review sub-scores.
type ReviewResult struct {
	ReviewScore      float64
	ReviewReplyScore float64
	Details          ReviewDetails
}

// AnalyzeReviews scores review cadence over the trailing 30 days and the share
// of replied reviews. No reviews means zero, never a fallback.
func AnalyzeReviews(reviews []Review, now time.Time) ReviewResult {
	cutoff := now.Add(-reviewCadenceWindow)

	var recent, replied int
	for _, r := range reviews {
		if r.CreateTime.After(cutoff) {
			recent++
		}
		if r.Reply != nil {
			replied++
		}
	}

	perWeek := float64(recent) / 30 * 7

	var replyRate float64
	if len(reviews) > 0 {
		replyRate = float64(replied) / float64(len(reviews)) * 100
	}

	return ReviewResult{
		ReviewScore:      reviewCadenceScore(perWeek),
		ReviewReplyScore: float64(roundScore(replyRate)),
		Details: ReviewDetails{
			TotalReviews:      len(reviews),
			ReviewsLast30Days: recent,
			ReviewsPerWeek:    perWeek,
			RepliedReviews:    replied,
			ReplyRate:         replyRate,
		},
	}
}

func reviewCadenceScore(perWeek float64) float64 {
	switch {
	case perWeek >= 2:
		return 100
	case perWeek >= 1:
		return 50
	case perWeek > 0:
		return 25
	}
	return 0
}
