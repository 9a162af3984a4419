package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/profile-audit/internal/service"
)

// ReviewsClient reads the review list of a location.
type ReviewsClient struct {
	*client
}

func NewReviewsClient(opts ...Option) (*ReviewsClient, error) {
	c, err := newClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("reviews client: %w", err)
	}
	return &ReviewsClient{client: c}, nil
}

type wireReply struct {
	Comment    string `json:"comment"`
	UpdateTime string `json:"updateTime"`
}

type wireReview struct {
	Rating      *starRating `json:"rating"`
	StarRating  *starRating `json:"starRating"`
	CreateTime  string      `json:"createTime"`
	ReviewReply *wireReply  `json:"reviewReply"`
	Reply       *wireReply  `json:"reply"`
}

type reviewsResponse struct {
	Reviews []wireReview `json:"reviews"`
}

var starNames = map[string]int{"ONE": 1, "TWO": 2, "THREE": 3, "FOUR": 4, "FIVE": 5}

// starRating accepts a number, a numeric string or ONE..FIVE.
type starRating int

func (s *starRating) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*s = starRating(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("star rating: %w", err)
	}
	if v, ok := starNames[strings.ToUpper(str)]; ok {
		*s = starRating(v)
		return nil
	}
	if v, err := strconv.Atoi(str); err == nil {
		*s = starRating(v)
		return nil
	}
	// STAR_RATING_UNSPECIFIED and friends.
	*s = 0
	return nil
}

// FetchReviews returns the reviews in upstream order.
func (c *ReviewsClient) FetchReviews(ctx context.Context, locationID string) ([]service.Review, error) {
	path := fmt.Sprintf("/locations/%s/reviews", url.PathEscape(locationID))

	var resp reviewsResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}

	out := make([]service.Review, 0, len(resp.Reviews))
	for _, r := range resp.Reviews {
		review := service.Review{CreateTime: parseTime(r.CreateTime)}
		switch {
		case r.Rating != nil:
			review.Rating = int(*r.Rating)
		case r.StarRating != nil:
			review.Rating = int(*r.StarRating)
		}

		reply := r.ReviewReply
		if reply == nil {
			reply = r.Reply
		}
		if reply != nil {
			review.Reply = &service.ReviewReply{
				Comment:    reply.Comment,
				UpdateTime: parseTime(reply.UpdateTime),
			}
		}
		out = append(out, review)
	}
	return out, nil
}

// parseTime yields the zero time for missing or malformed timestamps.
func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
