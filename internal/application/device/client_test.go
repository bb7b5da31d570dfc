package device_test

import (
	"context"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-monitor/internal/application/device"
	"patient-monitor/internal/application/generator"
	"patient-monitor/internal/logging"
	"patient-monitor/internal/wire"
)

func newSource(deviceCount int) *generator.Generator {
	return generator.New(generator.Config{
		Interval:    2 * time.Millisecond,
		DeviceCount: deviceCount,
		RandSource:  rand.NewSource(1),
	}, logging.Discard())
}

func runClient(t *testing.T, cfg device.Config, source device.Source) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	client := device.New(cfg, source, logging.Discard())

	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		errCh <- client.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("client did not stop")
		}
	})
	return cancel, errCh
}

func accept(t *testing.T, listener net.Listener) net.Conn {
	t.Helper()

	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := listener.Accept()
		ch <- result{conn, err}
	}()

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		t.Cleanup(func() { _ = r.conn.Close() })
		return r.conn
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for device connection")
		return nil
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func TestClientStreamsReadingsForEveryDevice(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	runClient(t, device.Config{Addr: listener.Addr().String()}, newSource(3))
	conn := accept(t, listener)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	decoder := wire.NewDecoder(conn, 0)
	var ids []int
	for len(ids) < 6 {
		reading, err := decoder.Next()
		require.NoError(t, err)
		ids = append(ids, reading.DeviceID)
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, ids)
}

func TestClientRetriesUntilServerIsReachable(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	runClient(t, device.Config{Addr: addr, RetryBackoff: 20 * time.Millisecond}, newSource(1))

	time.Sleep(60 * time.Millisecond)

	listener, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	defer listener.Close()

	conn := accept(t, listener)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	reading, err := wire.NewDecoder(conn, 0).Next()
	require.NoError(t, err)
	assert.Equal(t, 1, reading.DeviceID)
}

func TestClientReconnectsAfterServerDropsConnection(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	runClient(t, device.Config{Addr: listener.Addr().String(), RetryBackoff: 10 * time.Millisecond}, newSource(2))

	first := accept(t, listener)
	_, err = wire.NewDecoder(first, 0).Next()
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := accept(t, listener)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = wire.NewDecoder(second, 0).Next()
	assert.NoError(t, err)
}

func TestClientStopsDuringBackoff(t *testing.T) {
	t.Parallel()

	cancel, errCh := runClient(t, device.Config{Addr: freeAddr(t), RetryBackoff: time.Hour}, newSource(1))

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("client did not stop while waiting to retry")
	}
}
