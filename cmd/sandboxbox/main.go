package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/AnEntrypoint/sandboxbox/configs"
	"github.com/AnEntrypoint/sandboxbox/internal/app"
	"github.com/AnEntrypoint/sandboxbox/internal/audit"
	"github.com/AnEntrypoint/sandboxbox/internal/config"
	"github.com/AnEntrypoint/sandboxbox/internal/idempotency"
	"github.com/AnEntrypoint/sandboxbox/internal/log"
	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
	"github.com/AnEntrypoint/sandboxbox/internal/render"
	"github.com/AnEntrypoint/sandboxbox/internal/runtime"
	"github.com/AnEntrypoint/sandboxbox/internal/serverconf"
	"github.com/AnEntrypoint/sandboxbox/internal/startup"
	"github.com/AnEntrypoint/sandboxbox/internal/timeutil"
)

func main() {
	embeddedConfig := flag.String("embedded-config", "", "Use embedded config from configs/ (filename)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel)

	var rendered []byte
	if embeddedConfig != nil && *embeddedConfig != "" {
		raw, err := configs.Load(*embeddedConfig)
		if err != nil {
			logger.Error("load embedded config failed", "error", err)
			os.Exit(1)
		}
		rendered, err = render.RenderBytes(*embeddedConfig, raw)
		if err != nil {
			logger.Error("render config failed", "error", err)
			os.Exit(1)
		}
	} else {
		rendered, err = render.RenderFile(cfg.ConfigPath)
		if err != nil {
			logger.Error("render config failed", "error", err)
			os.Exit(1)
		}
	}

	serverCfg, err := serverconf.Load(rendered)
	if err != nil {
		logger.Error("parse config failed", "error", err)
		os.Exit(1)
	}

	var cache *idempotency.Cache
	if serverCfg.Server.Idempotency.Enabled {
		ttl, err := time.ParseDuration(serverCfg.Server.Idempotency.TTL)
		if err != nil {
			logger.Error("invalid idempotency ttl", "error", err)
			os.Exit(1)
		}
		cache = idempotency.NewCache(ttl, serverCfg.Server.Idempotency.MaxEntries)
	}

	builder := runtime.Builder{
		Logger:           logger,
		Audit:            audit.New(logger),
		Cache:            cache,
		CacheKeyStrategy: serverCfg.Server.Idempotency.KeyStrategy,
		Workdir:          cfg.Workdir,
	}
	server, err := builder.Build(serverCfg)
	if err != nil {
		logger.Error("build server failed", "error", err)
		os.Exit(1)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	go func() {
		sig := <-sigCh
		logger.Warn("shutdown requested", "signal", sig.String())
		cancel()
	}()

	hookRunner := procrun.New(timeutil.ParseDurationOrDefault(serverCfg.Batch.DefaultTimeout, procrun.DefaultTimeout), logger)
	if err := startup.Run(baseCtx, serverCfg.Server.StartupHooks, hookRunner, logger); err != nil {
		logger.Error("startup hooks failed", "error", err)
		os.Exit(1)
	}

	switch serverCfg.Server.Transport {
	case "stdio":
		if err := runStdio(baseCtx, server); err != nil {
			logger.Error("runtime error", "error", err)
			os.Exit(1)
		}
		return
	default:
		if err := runHTTP(baseCtx, cfg, serverCfg, server, logger); err != nil {
			logger.Error("runtime error", "error", err)
			os.Exit(1)
		}
	}
}

func runStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func runHTTP(ctx context.Context, envCfg config.Config, serverCfg *serverconf.Config, server *mcp.Server, logger *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: serverCfg.Server.HTTP.Stateless,
	})

	application, err := app.New(ctx, serverCfg.Server, handler, logger, envCfg.ShutdownTimeout)
	if err != nil {
		return err
	}

	return application.Run(ctx)
}
