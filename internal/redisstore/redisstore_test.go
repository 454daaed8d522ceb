package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/trogers1052/carteira-service/internal/store"
	"github.com/trogers1052/carteira-service/internal/store/storetest"
)

func setupRedis(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	s, err := New(ctx, Config{Addr: endpoint, Prefix: "test"})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s := setupRedis(t)
	storetest.Run(t, s)
}

func TestStore_Keys(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	s := setupRedis(t)

	id, err := s.Create(ctx, "passivos", "", store.Document{"nome": "Cartao"})
	require.NoError(t, err)

	raw, err := s.client.HGet(ctx, "test:passivos", id).Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"nome":"Cartao"}`, raw)

	members, err := s.client.ZRange(ctx, "test:passivos:order", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{id}, members)

	require.NoError(t, s.Delete(ctx, "passivos", id))
	n, err := s.client.ZCard(ctx, "test:passivos:order").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_UnreachableIsFault(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewFromClient(client, "")
	defer s.Close()

	assert.Equal(t, "carteira", s.prefix)

	_, err := s.Get(ctx, "passivos", "p1")
	require.Error(t, err)
	assert.True(t, store.IsFault(err))
	assert.False(t, errors.Is(err, store.ErrNotFound))

	_, err = s.List(ctx, "passivos")
	assert.True(t, store.IsFault(err))

	assert.True(t, store.IsFault(s.Ping(ctx)))
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := New(ctx, Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping redis")
}
