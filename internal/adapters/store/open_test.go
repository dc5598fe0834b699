package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dkeye/coderoom/internal/adapters/store/memory"
	"github.com/dkeye/coderoom/internal/adapters/store/redisstore"
	"github.com/dkeye/coderoom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory, RoomTTL: time.Hour, JanitorInterval: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)
	_, ok := s.(Runner)
	assert.True(t, ok)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverRedis, RedisAddr: mr.Addr(), RoomTTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &redisstore.Store{}, s)
	c, ok := s.(Closer)
	require.True(t, ok)
	assert.NoError(t, c.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "etcd"})
	assert.Error(t, err)
}
