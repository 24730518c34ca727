package injector

import (
	"github.com/lk2023060901/doc-qa-backend/internal/conf"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/workerpool"
	"github.com/lk2023060901/doc-qa-backend/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
	WorkerPool *workerpool.Pool
}
