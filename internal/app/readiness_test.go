package app

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestBuildReadinessChecks_NotConfigured(t *testing.T) {
	db, red := BuildReadinessChecks(nil, FromGoRedis(nil))
	assert.Nil(t, db)
	assert.Nil(t, red)
}

func TestBuildReadinessChecks_DB(t *testing.T) {
	db, _ := BuildReadinessChecks(pingerFunc(func(context.Context) error { return nil }), nil)
	require.NotNil(t, db)
	assert.NoError(t, db(context.Background()))

	db, _ = BuildReadinessChecks(pingerFunc(func(context.Context) error { return errors.New("refused") }), nil)
	assert.ErrorContains(t, db(context.Background()), "refused")
}

func TestBuildReadinessChecks_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, red := BuildReadinessChecks(nil, FromGoRedis(rdb))
	require.NotNil(t, red)
	assert.NoError(t, red(context.Background()))

	mr.Close()
	assert.Error(t, red(context.Background()))
}
