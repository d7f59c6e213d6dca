package catalog

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	catalogcache "github.com/smallbiznis/counterreport/internal/catalog/cache"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	"github.com/smallbiznis/counterreport/internal/catalog/repository"
	"github.com/smallbiznis/counterreport/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("catalog",
	fx.Provide(NewRedisClient),
	fx.Provide(NewCatalog),
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Redis *redis.Client `optional:"true"`
}

// NewRedisClient returns nil when REDIS_ADDR is unset.
func NewRedisClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
}

// NewCatalog wraps the store with the redis cache when one is configured.
func NewCatalog(p Params) catalogdomain.Catalog {
	store := repository.New(p.DB)
	if p.Redis == nil {
		return store
	}
	return catalogcache.NewRedisCatalog(store, p.Redis, p.Log, 0)
}
