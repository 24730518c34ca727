package data

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestData_Check(t *testing.T) {
	assert.Empty(t, (&Data{}).Check(context.Background()))

	mr := miniredis.RunT(t)
	rdb := redis.NewFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), logger.NewNop())
	t.Cleanup(func() { _ = rdb.Close() })

	d := &Data{Redis: rdb}
	assert.Empty(t, d.Check(context.Background()))

	mr.Close()
	failed := d.Check(context.Background())
	assert.Contains(t, failed, "redis")
	assert.NotContains(t, failed, "database")
}
