package main

import (
	"context"
	"testing"

	"content-platform/infrastructure/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateSinks_NothingConfigured(t *testing.T) {
	sinks, closeSinks := initiateSinks(context.Background(), configuration.Config{})

	assert.Empty(t, sinks)
	require.NotNil(t, closeSinks)
	assert.NotPanics(t, func() { closeSinks(context.Background()) })
}

func TestInitiateSinks_ClosesOpenedClients(t *testing.T) {
	// The emulator host makes the client skip credentials; nothing dials until use.
	t.Setenv("PUBSUB_EMULATOR_HOST", "127.0.0.1:8085")
	cfg := configuration.Config{Pubsub: configuration.Pubsub{ProjectID: "local", Topic: "content-approved"}}

	sinks, closeSinks := initiateSinks(context.Background(), cfg)

	require.Len(t, sinks, 1)
	assert.Equal(t, "pubsub", sinks[0].Name())
	assert.NotPanics(t, func() { closeSinks(context.Background()) })
}

func TestRedisClientOpt(t *testing.T) {
	opt := redisClientOpt(configuration.RedisClient{Host: "cache", Port: "6380", Username: "u", Password: "p", DatabaseName: "2"})

	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "u", opt.Username)
	assert.Equal(t, "p", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
