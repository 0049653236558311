package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gowri-arun/astraq-kg/pkg/api"
	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/query"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
	"github.com/gowri-arun/astraq-kg/pkg/store"
	redisstore "github.com/gowri-arun/astraq-kg/pkg/store/redis"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("invalid_config", "error", err)
		os.Exit(1)
	}
	slog.Info("system_started", "component", "astrakg-d", "db", config.DBPath, "addr", config.Addr)

	catalog := schema.Default()
	if config.SchemaPath != "" {
		catalog, err = schema.Load(config.SchemaPath)
		if err != nil {
			slog.Error("schema_load_failed", "path", config.SchemaPath, "error", err)
			os.Exit(1)
		}
		slog.Info("schema_loaded", "path", config.SchemaPath)
	}

	st, err := store.NewStore(config.DBPath)
	if err != nil {
		slog.Error("store_init_failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	g, err := st.LoadGraph(loadCtx)
	cancel()
	if err != nil {
		slog.Error("graph_load_failed", "error", err)
		os.Exit(1)
	}
	publishGraphGauges(g)
	slog.Info("graph_loaded", "nodes", totalNodes(g), "edges", totalEdges(g))

	executor := query.NewExecutor(g, catalog)
	server := api.NewServer(executor, g, catalog, st, config.Addr)
	server.SetQueryTimeout(config.QueryTimeout)

	if config.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: config.RedisAddr})
		cache := redisstore.NewResultCache(client, config.CacheTTL)
		// Responses cached by a previous run may describe an older
		// dataset.
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := cache.Flush(flushCtx); err != nil {
			slog.Warn("result_cache_flush_failed", "error", err)
		}
		cancel()
		server.SetResultCache(cache)
		defer client.Close()
		slog.Info("result_cache_enabled", "redis", config.RedisAddr, "ttl", config.CacheTTL.String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		slog.Info("shutdown_initiated", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			slog.Error("server_failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		slog.Error("shutdown_failed", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown_complete")
}

func publishGraphGauges(g *graph.Graph) {
	for _, label := range graph.Labels() {
		query.GraphNodes.WithLabelValues(string(label)).Set(float64(g.NodeCount(label)))
	}
	for _, typ := range graph.EdgeTypes() {
		query.GraphEdges.WithLabelValues(string(typ)).Set(float64(g.EdgeCount(typ)))
	}
}

func totalNodes(g *graph.Graph) int {
	total := 0
	for _, label := range graph.Labels() {
		total += g.NodeCount(label)
	}
	return total
}

func totalEdges(g *graph.Graph) int {
	total := 0
	for _, typ := range graph.EdgeTypes() {
		total += g.EdgeCount(typ)
	}
	return total
}
