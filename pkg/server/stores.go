package server

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/config"
	"blog-content-api/internal/database"
	"blog-content-api/internal/store"
	"blog-content-api/internal/store/dynamo"
	"blog-content-api/internal/store/memory"
	redisstore "blog-content-api/internal/store/redis"
	"blog-content-api/internal/store/sqlite"
)

// storeFactory owns the connection for the configured item store backend
// and hands out one store per table.
type storeFactory struct {
	kind   string
	logger *logrus.Logger

	dynamo dynamo.API
	db     *database.ConnectionManager
	redis  *goredis.Client
}

func newStoreFactory(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*storeFactory, error) {
	f := &storeFactory{kind: cfg.Store.Type, logger: logger}

	switch cfg.Store.Type {
	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
			Region:          cfg.AWS.Region,
			Endpoint:        cfg.Store.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		f.dynamo = client

	case "sqlite":
		connCfg := database.DefaultConnectionConfig()
		connCfg.DatabasePath = cfg.Store.SQLitePath
		connCfg.Logger = logger
		cm := database.NewConnectionManager(connCfg)
		if err := cm.Connect(); err != nil {
			return nil, err
		}
		f.db = cm

	case "redis":
		client, err := redisstore.NewClient(ctx, redisstore.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		f.redis = client

	case "memory":

	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}

	logger.WithField("store_type", cfg.Store.Type).Info("Item store backend ready")
	return f, nil
}

// Store returns the item store for table
func (f *storeFactory) Store(table string) store.ItemStore {
	switch {
	case f.dynamo != nil:
		return dynamo.New(f.dynamo, table, f.logger)
	case f.db != nil:
		return sqlite.New(f.db.GetDB(), table, f.logger)
	case f.redis != nil:
		return redisstore.New(f.redis, table, f.logger)
	default:
		return memory.New(table)
	}
}

// HealthCheck pings the backend when it has a cheap way to do so
func (f *storeFactory) HealthCheck(ctx context.Context) error {
	switch {
	case f.db != nil:
		return f.db.HealthCheck()
	case f.redis != nil:
		return f.redis.Ping(ctx).Err()
	}
	return nil
}

// Close releases the backend connection
func (f *storeFactory) Close() error {
	switch {
	case f.db != nil:
		return f.db.Close()
	case f.redis != nil:
		return f.redis.Close()
	}
	return nil
}
