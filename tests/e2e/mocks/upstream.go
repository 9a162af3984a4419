package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Upstream fakes the performance, reviews and rank collaborators on one
// server. Locations listed in Down answer every call with 500.
type Upstream struct {
	*httptest.Server

	mu    sync.Mutex
	down  map[string]bool
	calls map[string]int
	Rank  int
}

func NewUpstream(down ...string) *Upstream {
	u := &Upstream{
		down:  make(map[string]bool),
		calls: make(map[string]int),
		Rank:  3,
	}
	for _, id := range down {
		u.down[id] = true
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	return u
}

// Calls reports how many performance requests a location received.
func (u *Upstream) Calls(locationID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[locationID]
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/rank" {
		writeJSON(w, map[string]any{"found": true, "rank": u.Rank})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "locations" {
		http.NotFound(w, r)
		return
	}
	locationID, resource := parts[1], parts[2]

	u.mu.Lock()
	down := u.down[locationID]
	if resource == "performance" {
		u.calls[locationID]++
	}
	u.mu.Unlock()

	if down {
		http.Error(w, `{"error":{"status":"INTERNAL"}}`, http.StatusInternalServerError)
		return
	}

	switch resource {
	case "performance":
		writeJSON(w, map[string]any{"dailyMetrics": dailyMetrics(r.URL.Query().Get("endDate"))})
	case "reviews":
		now := time.Now().UTC()
		writeJSON(w, map[string]any{"reviews": []map[string]any{
			{
				"starRating": "FIVE",
				"createTime": now.Add(-48 * time.Hour).Format(time.RFC3339),
				"reviewReply": map[string]any{
					"comment":    "Thanks!",
					"updateTime": now.Add(-24 * time.Hour).Format(time.RFC3339),
				},
			},
			{"rating": 4, "createTime": now.Add(-72 * time.Hour).Format(time.RFC3339)},
		}})
	default:
		http.NotFound(w, r)
	}
}

func dailyMetrics(endDate string) []map[string]any {
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		end = time.Now().UTC()
	}
	out := make([]map[string]any, 0, 7)
	for i := 6; i >= 0; i-- {
		out = append(out, map[string]any{
			"date":              end.AddDate(0, 0, -i).Format("2006-01-02"),
			"views":             100,
			"impressions":       500,
			"calls":             10,
			"websiteClicks":     10,
			"directionRequests": 5,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
