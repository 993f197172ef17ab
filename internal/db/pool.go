package db

import (
	"context"
	"fmt"
	"net/url"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type NewDBPoolParams struct {
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	MaxConns       int32
	TracingEnabled bool
}

func (p NewDBPoolParams) connString() string {
	user := p.DBUser
	if user == "" {
		user = "postgres"
	}
	var userInfo *url.Userinfo
	if p.DBPassword != "" {
		userInfo = url.UserPassword(user, p.DBPassword)
	} else {
		userInfo = url.User(user)
	}
	u := url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%s", p.DBHost, p.DBPort),
		Path:   "/" + p.DBName,
	}
	return u.String()
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(params.connString())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.MaxConns > 0 {
		poolConfig.MaxConns = params.MaxConns
	}
	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return db, nil
}

// PoolCollector exposes pool stats (acquired/idle conns, wait durations) to prometheus.
func PoolCollector(pool *pgxpool.Pool, dbName string) prometheus.Collector {
	return pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": dbName})
}
