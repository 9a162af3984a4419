package service

import (
	"fmt"
	"strings"
)

const (
	lowScoreThreshold = 50
	topRankThreshold  = 10
	maxMissingListed  = 5
)

// BuildRecommendations derives actionable follow-ups from a score, most
// impactful first.
func BuildRecommendations(score AuditScore) []string {
	recs := make([]string, 0, 8)

	if d := score.ProfileCompletionDetails; d != nil && len(d.MissingFields) > 0 {
		missing := d.MissingFields
		if len(missing) > maxMissingListed {
			missing = missing[:maxMissingListed]
		}
		recs = append(recs, fmt.Sprintf("Complete your profile: add %s.", strings.Join(missing, ", ")))
	}

	if d := score.SEODetails; d != nil {
		if !d.HasDescription {
			recs = append(recs, "Write a business description of at least 50 characters.")
		} else if !d.HasKeywords {
			recs = append(recs, "Expand your description past 100 characters with the services customers search for.")
		}
		if !d.HasCategories {
			recs = append(recs, "Set a primary category so you appear in category searches.")
		}
	}

	switch {
	case score.ReviewScore == 0:
		recs = append(recs, "You have no reviews in the last 30 days. Share your review link with recent customers.")
	case score.ReviewScore < lowScoreThreshold:
		recs = append(recs, "Aim for at least two new reviews per week.")
	}

	if d := score.ReviewDetails; d != nil && d.TotalReviews > 0 && score.ReviewReplyScore < 100 {
		unreplied := d.TotalReviews - d.RepliedReviews
		recs = append(recs, fmt.Sprintf("Reply to your %d unanswered review(s).", unreplied))
	}

	if score.Performance < lowScoreThreshold {
		recs = append(recs, "Post updates and photos weekly to increase profile views.")
	}
	if score.Engagement < lowScoreThreshold {
		recs = append(recs, "Add a call-to-action button and keep your phone and website current to raise engagement.")
	}

	if score.SearchRank > topRankThreshold {
		if score.SearchRank == NotFoundRank {
			recs = append(recs, "Your business was not found in local search results. Verify your address and categories.")
		} else {
			recs = append(recs, fmt.Sprintf("You rank #%d locally. Improve relevance to reach the top %d.", score.SearchRank, topRankThreshold))
		}
	}

	return recs
}

// InsightPrompt is the text-generation prompt summarizing a score.
func InsightPrompt(score AuditScore) string {
	var b strings.Builder
	b.WriteString("Summarize this Google Business Profile audit in two sentences for the business owner.\n")
	fmt.Fprintf(&b, "Overall: %d/100\n", score.Overall)
	fmt.Fprintf(&b, "Performance: %d, Engagement: %d\n", score.Performance, score.Engagement)
	fmt.Fprintf(&b, "Profile completion: %d, SEO: %d\n", score.ProfileCompletion, score.SEOScore)
	fmt.Fprintf(&b, "Review cadence: %d, Review replies: %d\n", score.ReviewScore, score.ReviewReplyScore)
	fmt.Fprintf(&b, "Local search rank: %d\n", score.SearchRank)
	return b.String()
}
