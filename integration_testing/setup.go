//go:build integration

package integration_testing

import (
	"context"
	"fmt"
	"log"

	"github.com/2beens/gymstats/internal"
	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/db"
	"github.com/2beens/gymstats/internal/gymstats"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort = 9000
	serverHost = "localhost"
	dbName     = "gymstats"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

type Suite struct {
	config     *config.Config
	backends   *gymstats.Backends // for seeding, separate from the server's
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite(ctx context.Context) (_ *Suite) {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup(ctx)
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}

	pgPort, err := suite.postgresSetup(ctx)
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}

	suite.config = getTestConfig(redisPort, pgPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  suite.config,
			VersionInfo:             "test-version-info",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		suite.cleanup()
		log.Fatalf("new server: %s", err)
	}

	suite.backends, err = gymstats.OpenBackends(ctx, gymstats.OpenBackendsParams{Config: suite.config})
	if err != nil {
		suite.cleanup()
		log.Fatalf("open seeding backends: %s", err)
	}

	suite.server.Serve(suite.config.Host, suite.config.Port)

	return suite
}

func (s *Suite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	if s.backends != nil {
		if err := s.backends.Close(); err != nil {
			log.Printf("close seeding backends: %s", err)
		}
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                      serverHost,
		Port:                      serverPort,
		PrometheusMetricsHost:     serverHost,
		PrometheusMetricsPort:     "2113",
		LogLevel:                  "debug",
		StoreBackend:              config.StoreBackendPostgres,
		PostgresHost:              "localhost",
		PostgresPort:              postgresPort,
		PostgresDBName:            dbName,
		PostgresUser:              "postgres",
		CacheBackend:              config.CacheBackendRedis,
		CacheTTLSeconds:           60,
		RedisHost:                 "localhost",
		RedisPort:                 redisPort,
		MCPRateLimitAllowedPerMin: 600,
		Progression: config.ProgressionConfig{
			Strategy:     "weekly",
			Increment:    5,
			DeloadFactor: 0.75,
		},
		Goals: config.GoalsConfig{Concurrency: 4},
	}
}

func (s *Suite) redisSetup(ctx context.Context) (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "gymstats-redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	if err := s.dockerPool.Retry(func() error {
		rdb := redis.NewClient(&redis.Options{Addr: "localhost:" + redisPort})
		defer rdb.Close()
		return rdb.Ping(ctx).Err()
	}); err != nil {
		return "", fmt.Errorf("wait for redis: %s", err)
	}

	return redisPort, nil
}

func (s *Suite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + dbName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		pgResource.Close()
	})

	pgPort := pgResource.GetPort("5432/tcp")
	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: pgPort,
		DBName: dbName,
	})
	if err != nil {
		return "", fmt.Errorf("new db pool: %s", err)
	}
	defer pool.Close()

	if err := s.dockerPool.Retry(func() error {
		return pool.Ping(ctx)
	}); err != nil {
		return "", fmt.Errorf("ping db: %s", err)
	}

	log.Printf("postgres ready on port %s\n", pgPort)
	return pgPort, nil
}
