// Package main runs the gymstats MCP server over stdio (for local MCP clients).
// The same MCP server is also mounted on the service at /mcp over HTTP,
// so you can use either: stdio (this cmd) or the service URL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/gymstats"
	gymstatsmcp "github.com/2beens/gymstats/internal/gymstats/mcp"
	"github.com/2beens/gymstats/internal/logging"
	"github.com/2beens/gymstats/internal/telemetry/metrics"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// stdout carries the MCP protocol, logs go to stderr or the log file
	logging.Setup(logging.LoggerSetupParams{
		LogFileName: cfg.LogsPath,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})
	if cfg.LogsPath == "" {
		log.SetOutput(os.Stderr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backends, err := gymstats.OpenBackends(ctx, gymstats.OpenBackendsParams{
		Config:           cfg,
		PostgresPassword: os.Getenv("GYMSTATS_POSTGRES_PASS"),
		RedisPassword:    os.Getenv("GYMSTATS_REDIS_PASS"),
	})
	if err != nil {
		log.Fatalf("open backends: %v", err)
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Errorf("close backends: %s", err)
		}
	}()

	service, err := gymstats.NewAnalyticsService(
		cfg,
		backends.Store,
		backends.Cache,
		metrics.NewManager("gymstats", "mcp_stdio", metrics.SetupPrometheus()),
	)
	if err != nil {
		log.Fatalf("analytics service: %v", err)
	}

	server := gymstatsmcp.NewServer(service)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %s", err)
	}
}
