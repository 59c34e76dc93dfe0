package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/taskflow-server/internal/mocks"
	"github.com/dtroode/taskflow-server/internal/testutil"
)

func servingStatus(t *testing.T, srv *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestChecker_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pingErr error
		want    healthpb.HealthCheckResponse_ServingStatus
	}{
		{name: "store reachable", want: healthpb.HealthCheckResponse_SERVING},
		{name: "store down", pingErr: errors.New("connection refused"), want: healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pinger := mocks.NewPinger(t)
			pinger.On("Ping", mock.Anything).Return(tt.pingErr).Once()

			srv := health.NewServer()
			c := NewChecker(srv, pinger, time.Minute, testutil.MakeNoopLogger())

			assert.Equal(t, tt.want, c.Check(context.Background()))
			assert.Equal(t, tt.want, servingStatus(t, srv, ""))
			assert.Equal(t, tt.want, servingStatus(t, srv, ServiceName))
		})
	}
}

func TestChecker_RunRecoversAndShutsDown(t *testing.T) {
	t.Parallel()

	pinger := mocks.NewPinger(t)
	pinger.On("Ping", mock.Anything).Return(errors.New("down")).Once()
	pinger.On("Ping", mock.Anything).Return(nil)

	srv := health.NewServer()
	c := NewChecker(srv, pinger, 5*time.Millisecond, testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ServiceName))
}
