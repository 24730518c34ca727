package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/conf"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/database"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/milvus"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/minio"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

const closeTimeout = 5 * time.Second

// Data 外部资源的连接集合
type Data struct {
	DB     *database.DB
	Redis  *redis.Client // 未开启向量缓存和限流时为 nil
	MinIO  *minio.Client
	Milvus *milvus.Client
}

// NewData 依次建立 PostgreSQL、Redis、MinIO、Milvus 连接，任何一步失败都会释放已建立的连接
func NewData(cfg *conf.Config, log *logger.Logger) (*Data, func(), error) {
	log = logger.OrDefault(log).Named("data")
	d := &Data{}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if d.Milvus != nil {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			if err := d.Milvus.Close(ctx); err != nil {
				log.Warn("failed to close milvus", zap.Error(err))
			}
			cancel()
		}
		if d.Redis != nil {
			if err := d.Redis.Close(); err != nil {
				log.Warn("failed to close redis", zap.Error(err))
			}
		}
		if d.DB != nil {
			if err := d.DB.Close(); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}
	}

	var err error
	if d.DB, err = database.New(&cfg.Database, log); err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if cfg.NeedRedis() {
		if d.Redis, err = redis.New(&cfg.Redis, log); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init redis: %w", err)
		}
	}

	if d.MinIO, err = minio.NewClient(&cfg.MinIO, log); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}

	if d.Milvus, err = milvus.New(context.Background(), &cfg.Milvus.Config, log); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init milvus: %w", err)
	}

	return d, cleanup, nil
}

// Check 检查 PostgreSQL、Redis、Milvus 的连通性，返回失败项及原因，全部正常时为空
func (d *Data) Check(ctx context.Context) map[string]string {
	failed := map[string]string{}
	if d.DB != nil {
		if err := d.DB.HealthCheck(ctx); err != nil {
			failed["database"] = err.Error()
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx); err != nil {
			failed["redis"] = err.Error()
		}
	}
	if d.Milvus != nil {
		if err := d.Milvus.Ping(ctx); err != nil {
			failed["milvus"] = err.Error()
		}
	}
	return failed
}
