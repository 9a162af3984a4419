package upstream

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/godilite/profile-audit/internal/service"
)

// PerformanceClient reads daily performance metrics.
type PerformanceClient struct {
	*client
}

func NewPerformanceClient(opts ...Option) (*PerformanceClient, error) {
	c, err := newClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("performance client: %w", err)
	}
	return &PerformanceClient{client: c}, nil
}

type dailyMetric struct {
	Date              string `json:"date"`
	Views             *int   `json:"views"`
	Impressions       *int   `json:"impressions"`
	Calls             *int   `json:"calls"`
	WebsiteClicks     *int   `json:"websiteClicks"`
	DirectionRequests *int   `json:"directionRequests"`
}

type performanceResponse struct {
	DailyMetrics []dailyMetric `json:"dailyMetrics"`
}

// FetchDailyMetrics returns the series ascending by date. Absent counters are 0.
func (c *PerformanceClient) FetchDailyMetrics(ctx context.Context, locationID string, dateRange service.DateRange) ([]service.PerformanceMetric, error) {
	q := url.Values{}
	q.Set("startDate", dateRange.StartDate)
	q.Set("endDate", dateRange.EndDate)
	path := fmt.Sprintf("/locations/%s/performance?%s", url.PathEscape(locationID), q.Encode())

	var resp performanceResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetch performance: %w", err)
	}

	out := make([]service.PerformanceMetric, 0, len(resp.DailyMetrics))
	for _, m := range resp.DailyMetrics {
		out = append(out, service.PerformanceMetric{
			Date:              m.Date,
			Views:             orZero(m.Views),
			Impressions:       orZero(m.Impressions),
			Calls:             orZero(m.Calls),
			WebsiteClicks:     orZero(m.WebsiteClicks),
			DirectionRequests: orZero(m.DirectionRequests),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func orZero(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
