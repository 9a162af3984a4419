package grpc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/profile-audit/api/v1"
	"github.com/godilite/profile-audit/internal/service"
	"github.com/godilite/profile-audit/internal/session"
	"github.com/godilite/profile-audit/internal/store"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	defaultRunsLimit     = 10
)

type userRequest struct {
	UserID string `json:"userId"`
}

type selectLocationRequest struct {
	UserID     string                   `json:"userId"`
	LocationID string                   `json:"locationId"`
	Profile    *service.ProfileSnapshot `json:"profile,omitempty"`
}

type refreshRequest struct {
	UserID     string `json:"userId"`
	LocationID string `json:"locationId"`
}

type visibilityRequest struct {
	UserID  string `json:"userId"`
	Visible *bool  `json:"visible"`
}

type autoRefreshRequest struct {
	UserID  string `json:"userId"`
	Enabled *bool  `json:"enabled"`
}

type listRunsRequest struct {
	LocationID string `json:"locationId"`
	Limit      int    `json:"limit"`
}

type stateResponse struct {
	store.View
	Visible     bool `json:"visible"`
	AutoRefresh bool `json:"autoRefresh"`
}

type listRunsResponse struct {
	Runs []service.RunSummary `json:"runs"`
}

type GRPCHandlers struct {
	pb.UnimplementedAuditServiceServer
	sessions SessionManager
	history  HistoryService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(sessions SessionManager, history HistoryService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if sessions == nil {
		panic("nil SessionManager provided to NewGRPCHandlers")
	}
	if history == nil {
		panic("nil HistoryService provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		sessions: sessions,
		history:  history,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
	}
}

func decode(in *structpb.Struct, dst any) error {
	if err := fromStruct(in, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func requireUser(userID string) error {
	if userID == "" {
		return status.Error(codes.InvalidArgument, "userId is required")
	}
	return nil
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, session.ErrNoSession):
		return status.Error(codes.NotFound, "session not found, call OpenSession first")
	case errors.Is(err, session.ErrNoUser):
		return status.Error(codes.InvalidArgument, "userId is required")
	case errors.Is(err, service.ErrNoLocation):
		return status.Error(codes.FailedPrecondition, "no location selected")
	case errors.Is(err, service.ErrNoRuns):
		s.logger.Info("no audit runs found", zap.String("op", op))
		return status.Error(codes.NotFound, "no audit runs found for the location")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	case errors.Is(err, service.ErrAllSourcesUnavailable):
		return status.Error(codes.Unavailable, "performance data unavailable")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) state(ctx context.Context, op string, sess *session.Session) (*structpb.Struct, error) {
	out, err := toStruct(stateResponse{
		View:        sess.Store.Snapshot(),
		Visible:     sess.Scheduler.Visible(),
		AutoRefresh: sess.Scheduler.AutoRefresh(),
	})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) lookupSession(ctx context.Context, op, userID string) (*session.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return sess, nil
}

func (s *GRPCHandlers) OpenSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Open(req.UserID)
	if err != nil {
		return nil, s.handleError(ctx, "OpenSession", err)
	}
	return s.state(ctx, "OpenSession", sess)
}

func (s *GRPCHandlers) CloseSession(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	if err := s.sessions.Close(req.UserID); err != nil {
		return nil, s.handleError(ctx, "CloseSession", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) SelectLocation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req selectLocationRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.LocationID == "" {
		return nil, status.Error(codes.InvalidArgument, "locationId is required")
	}

	sess, err := s.lookupSession(ctx, "SelectLocation", req.UserID)
	if err != nil {
		return nil, err
	}
	sess.Scheduler.SelectLocation(req.LocationID, req.Profile)
	return s.state(ctx, "SelectLocation", sess)
}

func (s *GRPCHandlers) RequestRefresh(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	var req refreshRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	sess, err := s.lookupSession(ctx, "RequestRefresh", req.UserID)
	if err != nil {
		return nil, err
	}
	if err := sess.Scheduler.RequestRefresh(req.LocationID); err != nil {
		return nil, s.handleError(ctx, "RequestRefresh", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) SetVisibility(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	var req visibilityRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Visible == nil {
		return nil, status.Error(codes.InvalidArgument, "visible is required")
	}

	sess, err := s.lookupSession(ctx, "SetVisibility", req.UserID)
	if err != nil {
		return nil, err
	}
	sess.Scheduler.SetVisible(*req.Visible)
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) SetAutoRefresh(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	var req autoRefreshRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Enabled == nil {
		return nil, status.Error(codes.InvalidArgument, "enabled is required")
	}

	sess, err := s.lookupSession(ctx, "SetAutoRefresh", req.UserID)
	if err != nil {
		return nil, err
	}
	sess.Scheduler.SetAutoRefresh(*req.Enabled)
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) GetAuditState(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	sess, err := s.lookupSession(ctx, "GetAuditState", req.UserID)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, "GetAuditState", sess)
}

func (s *GRPCHandlers) ListAuditRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRunsRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.LocationID == "" {
		return nil, status.Error(codes.InvalidArgument, "locationId is required")
	}
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultRunsLimit
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := service.RunHistoryCacheKey(req.LocationID)
	runs, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]service.RunSummary, error) {
		return s.history.GetRunHistory(fetchCtx, req.LocationID)
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListAuditRuns", err)
	}

	if len(runs) > limit {
		runs = runs[:limit]
	}
	out, err := toStruct(listRunsResponse{Runs: runs})
	if err != nil {
		return nil, s.handleError(ctx, "ListAuditRuns", err)
	}
	return out, nil
}
