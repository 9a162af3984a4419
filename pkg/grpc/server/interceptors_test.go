package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := LoggingInterceptor(zap.New(core))

	info := &grpc.UnaryServerInfo{FullMethod: "/audit.v1.AuditService/GetAuditState"}

	t.Run("successful request", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

		resp, err := interceptor(context.Background(), "req", info, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)

		entry := logs.TakeAll()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "unknown", entry.ContextMap()["client_addr"])
	})

	t.Run("client error logs at warn", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.InvalidArgument, "userId is required")
		}

		_, err := interceptor(context.Background(), "req", info, handler)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		entry := logs.TakeAll()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "InvalidArgument", entry.ContextMap()["status_code"])
	})

	t.Run("server error logs at error", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.Internal, "database error")
		}

		_, err := interceptor(context.Background(), "req", info, handler)
		assert.Equal(t, codes.Internal, status.Code(err))
		assert.Equal(t, zapcore.ErrorLevel, logs.TakeAll()[0].Level)
	})

	t.Run("health checks log at debug", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) { return nil, nil }
		health := &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}

		_, err := interceptor(context.Background(), "req", health, handler)
		require.NoError(t, err)
		assert.Equal(t, zapcore.DebugLevel, logs.TakeAll()[0].Level)
	})
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/audit.v1.AuditService/SelectLocation"}

	t.Run("panic becomes internal", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) {
			var m map[string]int
			m["boom"]++
			return nil, nil
		}

		resp, err := interceptor(context.Background(), "req", info, handler)
		assert.Nil(t, resp)
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("passes through", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) { return 7, nil }

		resp, err := interceptor(context.Background(), "req", info, handler)
		require.NoError(t, err)
		assert.Equal(t, 7, resp)
	})
}

func TestNew_InvalidPort(t *testing.T) {
	_, err := New(WithPort(70000))
	assert.Error(t, err)
}

func TestServerBuilderWithLogging(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server, err := New(
		WithPort(0),
		WithLogger(logger),
		WithLogging(true),
		WithRecovery(true),
	)
	require.NoError(t, err)
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	require.NotNil(t, server.grpcServer)
	require.NotNil(t, server.healthServer)

	server.RegisterServiceWithHealth("audit.v1.AuditService", func(s *grpc.Server) {})
	server.Start()

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthClient := healthpb.NewHealthClient(conn)

	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "audit.v1.AuditService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	server.SetServiceHealth("audit.v1.AuditService", healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "audit.v1.AuditService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
