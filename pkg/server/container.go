package server

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"blog-content-api/internal/adapters/storage"
	"blog-content-api/internal/config"
	"blog-content-api/internal/handlers"
	"blog-content-api/internal/models"
	"blog-content-api/internal/services"
	"blog-content-api/pkg/lambda"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	handlers []*handlers.ResourceHandler
	byName   map[string]*handlers.ResourceHandler

	stores  *storeFactory
	storage []storage.FileStorage
}

// NewContainer wires a store, blob storage, service and handler for each
// schema. With no schemas every resource of the API is wired.
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger, schemas ...*models.ResourceSchema) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = config.NewLogger(cfg)
	}
	if len(schemas) == 0 {
		schemas = models.Schemas()
	}

	stores, err := newStoreFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create item store: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		byName: make(map[string]*handlers.ResourceHandler, len(schemas)),
		stores: stores,
	}

	clock := services.SystemClock{}
	ids, err := services.NewIDGenerator(cfg.IDStrategy, clock)
	if err != nil {
		c.Close()
		return nil, err
	}

	for _, schema := range schemas {
		deps := services.ResourceDeps{
			Schema: schema,
			Store:  stores.Store(cfg.TableFor(schema.Name)),
			IDs:    ids,
			Clock:  clock,
			Logger: logger,
		}

		if schema.HasBlob() {
			fs, err := c.newFileStorage(ctx, cfg.BucketFor(schema.Name))
			if err != nil {
				c.Close()
				return nil, fmt.Errorf("failed to create %s storage: %w", schema.Name, err)
			}
			deps.Uploader = services.NewBlobUploader(fs, schema.Blob.Label, logger)
		}

		svc, err := services.NewResourceService(deps)
		if err != nil {
			c.Close()
			return nil, err
		}

		h := handlers.NewResourceHandler(svc, logger)
		c.handlers = append(c.handlers, h)
		c.byName[schema.Name] = h
	}

	logger.WithFields(logrus.Fields{
		"store_type":   cfg.Store.Type,
		"storage_type": cfg.Storage.Type,
		"resources":    len(c.handlers),
	}).Info("Container initialized")

	return c, nil
}

func (c *Container) newFileStorage(ctx context.Context, bucket string) (storage.FileStorage, error) {
	fs, err := storage.Create(ctx, &storage.Config{
		Type:            c.Config.Storage.Type,
		Bucket:          bucket,
		BasePath:        c.Config.Storage.LocalPath,
		BaseURL:         c.Config.Storage.BaseURL,
		Region:          c.Config.AWS.Region,
		Endpoint:        c.Config.Storage.S3Endpoint,
		UsePathStyle:    c.Config.Storage.S3PathStyle,
		Domain:          c.Config.Storage.S3Domain,
		AccessKeyID:     c.Config.AWS.AccessKeyID,
		SecretAccessKey: c.Config.AWS.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	c.storage = append(c.storage, fs)
	return fs, nil
}

// Handler returns the handler for the named resource, e.g. "post"
func (c *Container) Handler(name string) (*handlers.ResourceHandler, bool) {
	h, ok := c.byName[name]
	return h, ok
}

// LambdaRouter returns the API Gateway proxy router for schema. It fails
// when the container was built without that resource.
func (c *Container) LambdaRouter(schema *models.ResourceSchema) (*lambda.Router, error) {
	h, ok := c.Handler(schema.Name)
	if !ok {
		return nil, fmt.Errorf("no handler wired for resource %s", schema.Name)
	}
	return lambda.NewRouter(h, schema.PathParam(), c.Logger), nil
}

// Handlers returns every wired handler in schema order
func (c *Container) Handlers() []*handlers.ResourceHandler {
	return c.handlers
}

// HealthCheck reports whether the item store backend is reachable
func (c *Container) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.stores.HealthCheck(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	var firstErr error
	for _, fs := range c.storage {
		if err := fs.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close storage: %w", err)
		}
	}
	if c.stores != nil {
		if err := c.stores.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close item store: %w", err)
		}
	}
	return firstErr
}
