package grpc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/profile-audit/internal/grpc/mocks"
	"github.com/godilite/profile-audit/internal/scheduler"
	schedmocks "github.com/godilite/profile-audit/internal/scheduler/mocks"
	"github.com/godilite/profile-audit/internal/service"
	"github.com/godilite/profile-audit/internal/session"
)

func req(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func scoringRunner() *schedmocks.MockRunner {
	return &schedmocks.MockRunner{
		RunFunc: func(ctx context.Context, r service.RunRequest) (*service.AuditRun, error) {
			title := ""
			if r.Profile != nil {
				title = r.Profile.Title
			}
			return &service.AuditRun{
				ID:              "run-1",
				UserID:          r.UserID,
				LocationID:      r.LocationID,
				Score:           service.AuditScore{Overall: 72, SearchRank: 4},
				Recommendations: []string{"profile:" + title},
			}, nil
		},
	}
}

func newHandlers(t *testing.T, runner scheduler.Runner, history HistoryService, cache Cacher) (*GRPCHandlers, *session.Manager) {
	t.Helper()
	m := session.NewManager(runner, zap.NewNop(), scheduler.WithInterval(time.Hour))
	t.Cleanup(m.CloseAll)
	if history == nil {
		history = &mocks.MockHistoryService{}
	}
	if cache == nil {
		cache = &mocks.MockCacher{}
	}
	return NewGRPCHandlers(m, history, cache, zap.NewNop(), time.Minute), m
}

func TestNewGRPCHandlers(t *testing.T) {
	m := session.NewManager(scoringRunner(), zap.NewNop())
	history := &mocks.MockHistoryService{}
	cache := &mocks.MockCacher{}

	t.Run("valid parameters", func(t *testing.T) {
		handlers := NewGRPCHandlers(m, history, cache, zap.NewNop(), 5*time.Minute)
		assert.Equal(t, 5*time.Minute, handlers.cacheTTL)
		assert.NotNil(t, handlers.logger)
	})

	t.Run("nil dependencies panic", func(t *testing.T) {
		assert.Panics(t, func() { NewGRPCHandlers(nil, history, cache, zap.NewNop(), time.Minute) })
		assert.Panics(t, func() { NewGRPCHandlers(m, nil, cache, zap.NewNop(), time.Minute) })
		assert.Panics(t, func() { NewGRPCHandlers(m, history, nil, zap.NewNop(), time.Minute) })
	})

	t.Run("non-positive TTL uses default", func(t *testing.T) {
		assert.Equal(t, defaultCacheDuration, NewGRPCHandlers(m, history, cache, nil, 0).cacheTTL)
		assert.Equal(t, defaultCacheDuration, NewGRPCHandlers(m, history, cache, nil, -time.Minute).cacheTTL)
	})
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	h, m := newHandlers(t, scoringRunner(), nil, nil)

	t.Run("open requires user", func(t *testing.T) {
		_, err := h.OpenSession(ctx, req(t, map[string]any{}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("malformed request", func(t *testing.T) {
		_, err := h.OpenSession(ctx, req(t, map[string]any{"userId": 5}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("state before open", func(t *testing.T) {
		_, err := h.GetAuditState(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("open returns initial state", func(t *testing.T) {
		out, err := h.OpenSession(ctx, req(t, map[string]any{"userId": "user-1"}))
		require.NoError(t, err)

		assert.Equal(t, "no_location", out.Fields["status"].GetStringValue())
		assert.True(t, out.Fields["visible"].GetBoolValue())
		assert.True(t, out.Fields["autoRefresh"].GetBoolValue())
		assert.False(t, out.Fields["isRefreshing"].GetBoolValue())
		_, isNull := out.Fields["currentScore"].GetKind().(*structpb.Value_NullValue)
		assert.True(t, isNull)
	})

	t.Run("refresh without location", func(t *testing.T) {
		_, err := h.RequestRefresh(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})

	t.Run("select location runs an audit", func(t *testing.T) {
		_, err := h.SelectLocation(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.SelectLocation(ctx, req(t, map[string]any{
			"userId":     "user-1",
			"locationId": "loc-1",
			"profile":    map[string]any{"title": "Joe's Pizza", "websiteUri": "https://joes.example"},
		}))
		require.NoError(t, err)

		sess, err := m.Get("user-1")
		require.NoError(t, err)
		sess.Scheduler.Wait()

		out, err := h.GetAuditState(ctx, req(t, map[string]any{"userId": "user-1"}))
		require.NoError(t, err)
		assert.Equal(t, "ready", out.Fields["status"].GetStringValue())
		assert.Equal(t, "loc-1", out.Fields["locationId"].GetStringValue())

		score := out.Fields["currentScore"].GetStructValue()
		require.NotNil(t, score)
		assert.Equal(t, float64(72), score.Fields["overall"].GetNumberValue())
		assert.Equal(t, "profile:Joe's Pizza", out.Fields["recommendations"].GetListValue().Values[0].GetStringValue())
		assert.NotEmpty(t, out.Fields["lastUpdatedAt"].GetStringValue())
	})

	t.Run("refresh selected location", func(t *testing.T) {
		_, err := h.RequestRefresh(ctx, req(t, map[string]any{"userId": "user-1"}))
		require.NoError(t, err)
	})

	t.Run("visibility", func(t *testing.T) {
		_, err := h.SetVisibility(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.SetVisibility(ctx, req(t, map[string]any{"userId": "user-1", "visible": false}))
		require.NoError(t, err)

		out, err := h.GetAuditState(ctx, req(t, map[string]any{"userId": "user-1"}))
		require.NoError(t, err)
		assert.False(t, out.Fields["visible"].GetBoolValue())
	})

	t.Run("auto refresh", func(t *testing.T) {
		_, err := h.SetAutoRefresh(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.SetAutoRefresh(ctx, req(t, map[string]any{"userId": "user-1", "enabled": false}))
		require.NoError(t, err)

		out, err := h.GetAuditState(ctx, req(t, map[string]any{"userId": "user-1"}))
		require.NoError(t, err)
		assert.False(t, out.Fields["autoRefresh"].GetBoolValue())
	})

	t.Run("close", func(t *testing.T) {
		_, err := h.CloseSession(ctx, req(t, map[string]any{"userId": ""}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.CloseSession(ctx, req(t, map[string]any{"userId": "user-1"}))
		require.NoError(t, err)

		_, err = h.CloseSession(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.NotFound, status.Code(err))

		_, err = h.GetAuditState(ctx, req(t, map[string]any{"userId": "user-1"}))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestSelectLocation_TotalFailure(t *testing.T) {
	ctx := context.Background()
	runner := &schedmocks.MockRunner{
		RunFunc: func(ctx context.Context, r service.RunRequest) (*service.AuditRun, error) {
			return nil, service.ErrAllSourcesUnavailable
		},
	}
	h, m := newHandlers(t, runner, nil, nil)

	_, err := h.OpenSession(ctx, req(t, map[string]any{"userId": "user-1"}))
	require.NoError(t, err)
	_, err = h.SelectLocation(ctx, req(t, map[string]any{"userId": "user-1", "locationId": "loc-1"}))
	require.NoError(t, err)

	sess, _ := m.Get("user-1")
	sess.Scheduler.Wait()

	out, err := h.GetAuditState(ctx, req(t, map[string]any{"userId": "user-1"}))
	require.NoError(t, err)
	assert.Equal(t, "unavailable", out.Fields["status"].GetStringValue())
}

func summaries(n int) []service.RunSummary {
	out := make([]service.RunSummary, n)
	for i := range out {
		out[i] = service.RunSummary{
			RunID:      fmt.Sprintf("run-%d", i),
			LocationID: "loc-1",
			Score:      service.AuditScore{Overall: 70 + i},
		}
	}
	return out
}

func TestListAuditRuns(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		h, _ := newHandlers(t, scoringRunner(), nil, nil)

		_, err := h.ListAuditRuns(ctx, req(t, map[string]any{}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1", "limit": -1}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1", "limit": 1.5}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("miss fetches and applies limit", func(t *testing.T) {
		history := &mocks.MockHistoryService{
			GetRunHistoryFunc: func(ctx context.Context, locationID string) ([]service.RunSummary, error) {
				return summaries(15), nil
			},
		}
		h, _ := newHandlers(t, scoringRunner(), history, nil)

		out, err := h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1"}))
		require.NoError(t, err)
		assert.Len(t, out.Fields["runs"].GetListValue().Values, defaultRunsLimit)

		out, err = h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1", "limit": 3}))
		require.NoError(t, err)
		runs := out.Fields["runs"].GetListValue().Values
		require.Len(t, runs, 3)
		assert.Equal(t, "run-0", runs[0].GetStructValue().Fields["runId"].GetStringValue())
	})

	t.Run("served from cache", func(t *testing.T) {
		var calls atomic.Int32
		history := &mocks.MockHistoryService{
			GetRunHistoryFunc: func(ctx context.Context, locationID string) ([]service.RunSummary, error) {
				calls.Add(1)
				return summaries(1), nil
			},
		}
		cache := mocks.NewMemoryCacher()
		require.NoError(t, cache.Set(ctx, service.RunHistoryCacheKey("loc-1"), summaries(2), time.Minute))
		h, _ := newHandlers(t, scoringRunner(), history, cache)

		out, err := h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1"}))
		require.NoError(t, err)
		assert.Len(t, out.Fields["runs"].GetListValue().Values, 2)
	})

	t.Run("miss populates cache", func(t *testing.T) {
		history := &mocks.MockHistoryService{
			GetRunHistoryFunc: func(ctx context.Context, locationID string) ([]service.RunSummary, error) {
				return summaries(1), nil
			},
		}
		cache := mocks.NewMemoryCacher()
		h, _ := newHandlers(t, scoringRunner(), history, cache)

		_, err := h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1"}))
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			return cache.Has(service.RunHistoryCacheKey("loc-1"))
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			code codes.Code
		}{
			{"no runs", service.ErrNoRuns, codes.NotFound},
			{"storage failure", fmt.Errorf("%w: locked", service.ErrStorageFailure), codes.Internal},
			{"unknown", errors.New("boom"), codes.Internal},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				history := &mocks.MockHistoryService{
					GetRunHistoryFunc: func(ctx context.Context, locationID string) ([]service.RunSummary, error) {
						return nil, tt.err
					},
				}
				h, _ := newHandlers(t, scoringRunner(), history, nil)

				_, err := h.ListAuditRuns(ctx, req(t, map[string]any{"locationId": "loc-1"}))
				assert.Equal(t, tt.code, status.Code(err))
			})
		}
	})
}

func TestHandleError(t *testing.T) {
	h, _ := newHandlers(t, scoringRunner(), nil, nil)

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := h.handleError(ctx, "op", errors.New("whatever"))
		assert.Equal(t, codes.Canceled, status.Code(err))
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()
		err := h.handleError(ctx, "op", errors.New("whatever"))
		assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	})

	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"no session", session.ErrNoSession, codes.NotFound},
		{"no user", session.ErrNoUser, codes.InvalidArgument},
		{"no location", service.ErrNoLocation, codes.FailedPrecondition},
		{"no runs", service.ErrNoRuns, codes.NotFound},
		{"wrapped storage failure", fmt.Errorf("%w: disk", service.ErrStorageFailure), codes.Internal},
		{"all sources unavailable", service.ErrAllSourcesUnavailable, codes.Unavailable},
		{"unknown", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.handleError(context.Background(), "op", tt.err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestStructConversion(t *testing.T) {
	in := req(t, map[string]any{
		"userId":     "user-1",
		"locationId": "loc-1",
		"profile": map[string]any{
			"title":  "Joe's Pizza",
			"latlng": map[string]any{"latitude": 40.5, "longitude": -73.9},
		},
	})

	var got selectLocationRequest
	require.NoError(t, fromStruct(in, &got))
	require.NotNil(t, got.Profile)
	assert.Equal(t, "Joe's Pizza", got.Profile.Title)
	assert.Equal(t, 40.5, got.Profile.Latlng.Latitude)

	var empty userRequest
	require.NoError(t, fromStruct(nil, &empty))
	assert.Empty(t, empty.UserID)

	out, err := toStruct(listRunsResponse{Runs: summaries(1)})
	require.NoError(t, err)
	assert.Len(t, out.Fields["runs"].GetListValue().Values, 1)
}
