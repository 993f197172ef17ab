package gymstats

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/2beens/gymstats/internal/cache"
	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/db"
	"github.com/2beens/gymstats/internal/gymstats/analytics"
	"github.com/2beens/gymstats/internal/gymstats/goals"
	"github.com/2beens/gymstats/internal/gymstats/plateau"
	"github.com/2beens/gymstats/internal/gymstats/progression"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/telemetry/metrics"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const redisCachePrefix = "gymstats"

type OpenBackendsParams struct {
	Config           *config.Config
	PostgresPassword string
	RedisPassword    string
	TracingEnabled   bool
}

// Backends holds the record store, the analytics cache and the optional
// redis client shared by the cache and the rate limiter.
type Backends struct {
	Store         records.Store
	Cache         cache.Cache
	Redis         *redis.Client
	PoolCollector prometheus.Collector

	closers []func() error
}

// OpenBackends connects to the store and cache selected in cfg.
// Callers must Close the returned Backends.
func OpenBackends(ctx context.Context, params OpenBackendsParams) (*Backends, error) {
	cfg := params.Config
	b := &Backends{}

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		b.closers = append(b.closers, func() error {
			log.Debugln("closing db pool ...")
			dbPool.Close()
			return nil
		})

		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		repo := records.NewRepo(dbPool)
		if err := repo.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		b.Store = repo
		b.PoolCollector = db.PoolCollector(dbPool, cfg.PostgresDBName)
	case config.StoreBackendSQLite:
		store, err := records.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("new sqlite store: %w", err)
		}
		b.closers = append(b.closers, store.Close)
		b.Store = store
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}

	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0,
		})
		if params.TracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}
		b.closers = append(b.closers, rdb.Close)

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		}
		b.Redis = rdb
	}

	switch cfg.CacheBackend {
	case config.CacheBackendLocal:
		b.Cache = cache.NewLocalCache(cfg.CacheSizeMegabytes)
	case config.CacheBackendRedis:
		if b.Redis == nil {
			b.Close()
			return nil, fmt.Errorf("redis cache backend requires redis_host")
		}
		b.Cache = cache.NewRedisCache(b.Redis, redisCachePrefix)
	default:
		b.Cache = cache.NewNoopCache()
	}

	log.Debugf("backends ready: store [%s], cache [%s]", cfg.StoreBackend, cfg.CacheBackend)
	return b, nil
}

// Close releases the backends in reverse order of opening.
func (b *Backends) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	b.closers = nil
	return err
}

// NewAnalyticsService builds the analytics service with the progression and
// goal settings from cfg.
func NewAnalyticsService(
	cfg *config.Config,
	store records.Store,
	analyticsCache cache.Cache,
	metricsManager *metrics.Manager,
) (*analytics.Service, error) {
	strategy, err := progression.NewStrategy(
		cfg.Progression.Strategy,
		progression.Config{
			Increment:    cfg.Progression.Increment,
			DeloadFactor: cfg.Progression.DeloadFactor,
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("progression strategy: %w", err)
	}

	return analytics.NewService(analytics.NewServiceParams{
		Repo:      store,
		Cache:     analyticsCache,
		CacheTTL:  time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Metrics:   metricsManager,
		Strategy:  strategy,
		Predictor: goals.NewPredictor(cfg.Goals.Concurrency),
		Detector:  plateau.NewDetector(plateau.DefaultConfig()),
	})
}
