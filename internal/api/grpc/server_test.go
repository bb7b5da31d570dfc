package grpcapi_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	grpcapi "patient-monitor/internal/api/grpc"
	"patient-monitor/internal/domain"
	"patient-monitor/internal/logging"
)

type stubService struct {
	readings []domain.Reading
	err      error
}

func (s *stubService) Snapshot(context.Context) ([]domain.Reading, error) {
	return s.readings, s.err
}

func newTestClient(t *testing.T, service domain.SnapshotService, registry *prometheus.Registry) grpcapi.VitalsServiceClient {
	t.Helper()

	listener := bufconn.Listen(1024 * 1024)
	opts := grpcapi.Options{Listener: listener, ShutdownTimeout: time.Second}
	if registry != nil {
		opts.Registerer = registry
	}

	server, err := grpcapi.NewServer(logging.Discard(), grpcapi.NewHandler(service), opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-serveErr:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("gRPC server did not stop")
		}
	})

	return grpcapi.NewVitalsServiceClient(conn)
}

func TestSnapshotReturnsReadings(t *testing.T) {
	t.Parallel()

	want := []domain.Reading{
		{DeviceID: 1, Temperature: 37.0, HeartRate: 72, BloodPressure: domain.BloodPressure{Systolic: 120, Diastolic: 80}, Humidity: 45.0, Oxygen: 98},
		{DeviceID: 2, Temperature: 36.6, HeartRate: 64, BloodPressure: domain.BloodPressure{Systolic: 110, Diastolic: 70}, Humidity: 51.3, Oxygen: 99},
	}
	client := newTestClient(t, &stubService{readings: want}, nil)

	resp, err := client.Snapshot(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	first := resp.GetValues()[0].GetStructValue().AsMap()
	assert.Equal(t, "120/80", first["blood_pressure"])
	assert.Equal(t, float64(1), first["id"])

	got, err := grpcapi.DecodeReadings(resp)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotEmptyStore(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &stubService{}, nil)

	resp, err := client.Snapshot(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Empty(t, resp.GetValues())

	got, err := grpcapi.DecodeReadings(resp)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSnapshotTranslatesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{name: "not ready", err: domain.ErrNotReady, wantCode: codes.Unavailable},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: codes.DeadlineExceeded},
		{name: "unexpected", err: errors.New("boom"), wantCode: codes.Internal},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, &stubService{err: tc.err}, nil)

			_, err := client.Snapshot(context.Background(), &emptypb.Empty{})
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, status.Code(err))
		})
	}
}

func TestServerRecordsMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	client := newTestClient(t, &stubService{}, registry)

	_, err := client.Snapshot(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, "grpc_server_handled_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestNewServerReusesRegisteredMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	for i := 0; i < 2; i++ {
		server, err := grpcapi.NewServer(logging.Discard(), grpcapi.NewHandler(&stubService{}), grpcapi.Options{
			Listener:   bufconn.Listen(1024),
			Registerer: registry,
		})
		require.NoError(t, err)
		require.NotNil(t, server)
	}
}

func TestNewServerValidatesArguments(t *testing.T) {
	t.Parallel()

	_, err := grpcapi.NewServer(nil, nil, grpcapi.Options{Address: "127.0.0.1:0"})
	assert.Error(t, err)

	_, err = grpcapi.NewServer(nil, grpcapi.NewHandler(&stubService{}), grpcapi.Options{})
	assert.Error(t, err)
}
