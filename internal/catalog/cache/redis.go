package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	"go.uber.org/zap"
)

const (
	keyTitle       = "catalog:title:%s"
	missingMarker  = "-"
	defaultTTL     = 30 * time.Minute
	defaultMissTTL = time.Minute
)

// RedisCatalog is a read-through cache in front of the catalog store.
// Redis failures degrade to direct reads.
type RedisCatalog struct {
	inner   catalogdomain.Catalog
	client  *redis.Client
	log     *zap.Logger
	ttl     time.Duration
	missTTL time.Duration
}

func NewRedisCatalog(inner catalogdomain.Catalog, client *redis.Client, log *zap.Logger, ttl time.Duration) *RedisCatalog {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCatalog{
		inner:   inner,
		client:  client,
		log:     log.Named("catalog.cache"),
		ttl:     ttl,
		missTTL: defaultMissTTL,
	}
}

func (c *RedisCatalog) Resolve(ctx context.Context, id string) (catalogdomain.Title, error) {
	key := fmt.Sprintf(keyTitle, id)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if raw == missingMarker {
			return catalogdomain.Title{}, fmt.Errorf("%s: %w", id, catalogdomain.ErrTitleNotFound)
		}
		var title catalogdomain.Title
		if jsonErr := json.Unmarshal([]byte(raw), &title); jsonErr == nil {
			return title, nil
		}
		c.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	title, err := c.inner.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrTitleNotFound) {
			c.store(ctx, key, missingMarker, c.missTTL)
		}
		return catalogdomain.Title{}, err
	}
	c.put(ctx, title)
	return title, nil
}

// ListByPress always reads the store and refreshes the per-title entries.
func (c *RedisCatalog) ListByPress(ctx context.Context, press string) ([]catalogdomain.Title, error) {
	titles, err := c.inner.ListByPress(ctx, press)
	if err != nil {
		return nil, err
	}
	for _, title := range titles {
		c.put(ctx, title)
	}
	return titles, nil
}

func (c *RedisCatalog) put(ctx context.Context, title catalogdomain.Title) {
	payload, err := json.Marshal(title)
	if err != nil {
		return
	}
	c.store(ctx, fmt.Sprintf(keyTitle, title.ID), string(payload), c.ttl)
}

func (c *RedisCatalog) store(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
