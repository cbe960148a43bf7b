// The terminal daemon runs one QuantumEdge trading session: it tracks orders
// in the in-memory store, keeps them fresh by polling, and mirrors pushed
// order updates from the websocket stream.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdaemon "github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"github.com/kayung-developer/QuantumEdge/config"
	"github.com/kayung-developer/QuantumEdge/gateway"
	"github.com/kayung-developer/QuantumEdge/infrastructure/logger"
	"github.com/kayung-developer/QuantumEdge/internal/store"
	"github.com/kayung-developer/QuantumEdge/metrics"
	"github.com/kayung-developer/QuantumEdge/order"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	metricsAddr := flag.String("metricsAddr", "", "override metrics listen address")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Outputs: cfg.Log.Outputs,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	addr := cfg.Metrics.Addr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	if addr != "" {
		metrics.StartMetricsServer(addr, logger.Named(zlog, "metrics"))
		zlog.Info("metrics listening", zap.String("addr", addr))
	}

	client := &gateway.Client{
		BaseURL:    cfg.API.BaseURL,
		AuthToken:  cfg.API.Token,
		HTTPClient: gateway.NewDefaultHTTPClient(),
	}
	if cfg.API.RestRate > 0 {
		client.Limiter = gateway.NewTokenBucketLimiter(cfg.API.RestRate, cfg.API.RestBurst)
	}

	st := store.New(client, store.Options{
		PollInterval: cfg.PollInterval(),
		Logger:       logger.Named(zlog, "store"),
	})
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Stream.Enabled {
		stream := &gateway.Stream{
			Endpoint:  cfg.Stream.Endpoint,
			AuthToken: cfg.API.Token,
			Logger:    logger.Named(zlog, "stream"),
			Handler:   st.ApplyUpdate,
		}
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				zlog.Error("order stream terminated", zap.Error(err))
			}
		}()
	}

	// Config edits take effect on restart; the watcher only surfaces drift.
	watcher := &config.Watcher{Path: *cfgPath}
	go func() {
		err := watcher.Start(ctx, func(config.AppConfig) {
			zlog.Warn("config file changed on disk, restart to apply")
		})
		if err != nil && ctx.Err() == nil {
			zlog.Warn("config watch disabled", zap.Error(err))
		}
	}()

	go logSnapshots(ctx, st, logger.Named(zlog, "display"))

	sdaemon.SdNotify(false, sdaemon.SdNotifyReady)
	go watchdog(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zlog.Info("shutting down", zap.String("signal", sig.String()))
	sdaemon.SdNotify(false, sdaemon.SdNotifyStopping)
	cancel()
	st.StopPolling()
}

// logSnapshots is the headless display consumer: each published snapshot is
// rendered as grouped rows in the structured log.
func logSnapshots(ctx context.Context, st *store.Store, zlog *zap.Logger) {
	sub := st.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			records := make([]order.Order, 0, len(snap))
			for _, e := range snap {
				records = append(records, e.Order)
			}
			for _, g := range order.GroupByParent(records) {
				zlog.Info("order row",
					zap.String("order_id", g.Parent.ID),
					zap.String("symbol", g.Parent.Symbol),
					zap.String("status", string(g.Parent.Status)),
					zap.Float64("requested", g.Parent.QtyRequested),
					zap.Float64("filled", g.ChildQtyFilled()),
					zap.Int("children", len(g.Children)),
					zap.Bool("paper", g.Parent.IsPaperTrade))
			}
		}
	}
}

// watchdog feeds systemd when a watchdog interval is configured.
func watchdog(ctx context.Context) {
	interval, err := sdaemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sdaemon.SdNotify(false, sdaemon.SdNotifyWatchdog)
		}
	}
}
