package config

import (
	"context"

	"github.com/matzehuels/qivalidate/pkg/cache"
	"github.com/matzehuels/qivalidate/pkg/report"
)

// OpenCache opens the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   AppName + ":",
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.CacheDir()
	if err != nil {
		return nil, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// OpenReports opens the configured report store.
func (c *Config) OpenReports(ctx context.Context) (report.Store, error) {
	if c.Reports.Backend == BackendMongo {
		ms, err := report.NewMongoStore(ctx, report.MongoConfig{
			URI:      c.Reports.MongoURI,
			Database: c.Reports.Database,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	dir, err := c.ReportsDir()
	if err != nil {
		return nil, err
	}
	fs, err := report.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}
