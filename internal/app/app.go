package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go-payroll/internal/config"
	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the connections shared by every module of a process.
type Infra struct {
	Config config.Config
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
	Logger *zap.Logger
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQLDB != nil {
		_ = i.SQLDB.Close()
	}
}

// Connect opens Postgres and, when withRedis is set, Redis.
func Connect(cfg config.Config, logger *zap.Logger, withRedis bool) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	infra := &Infra{Config: cfg, GormDB: gormDB, SQLDB: sqlDB, Logger: logger}

	if withRedis {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rdb
		logger.Info("redis connection established")
	}

	return infra, nil
}

// BuildApp connects the infrastructure and registers every HTTP module on
// router. The returned Infra must be closed by the caller.
func BuildApp(router *gin.Engine, cfg config.Config, logger *zap.Logger) (*Infra, error) {
	infra, err := Connect(cfg, logger, true)
	if err != nil {
		return nil, err
	}

	router.Use(middleware.ContextLogger(logger))
	router.GET("/healthz", middleware.RateLimitByIP(5, 10), healthz(infra))

	if err := registerModules(router, infra); err != nil {
		infra.Close()
		return nil, err
	}

	return infra, nil
}

func healthz(in *Infra) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := in.SQLDB.PingContext(ctx); err != nil {
			contextutil.GetLogger(c.Request.Context(), in.Logger).Warn("health check failed", zap.Error(err))
			response.FromError(c, apperror.Wrap(err, apperror.ErrServiceUnavailable.Code, apperror.ErrServiceUnavailable.Message, apperror.ErrServiceUnavailable.HTTPStatus))
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	}
}
