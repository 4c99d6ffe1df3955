package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisSink_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("redis integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := DialRedis(ctx, addr)
	require.NoError(t, err)
	defer rdb.Close()

	sink := NewRedisSink(rdb, time.Minute)
	require.NoError(t, sink.Publish(ctx, "ABC", samplePoints()))

	raw, err := rdb.Get(ctx, Key("ABC")).Bytes()
	require.NoError(t, err)
	var got Series
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, samplePoints(), got.Points)

	ttl, err := rdb.TTL(ctx, Key("ABC")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
