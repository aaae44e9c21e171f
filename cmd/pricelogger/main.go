package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpulse/internal/agent"
	"btcpulse/internal/cli"
	"btcpulse/internal/config"
	"btcpulse/internal/svc"
)

var (
	configFile = flag.String("f", "etc/btcpulse.yaml", "config file path")
	once       = flag.Bool("once", false, "collect a single price sample and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logx.Errorf("load config: %v", err)
		os.Exit(1)
	}
	cli.LogConfigSummary(cfg)

	ctx := svc.NewServiceContext(cfg)

	collector := agent.NewPriceAgent(ctx.Quotes, ctx.PricesModel,
		agent.WithPriceIntervals(
			time.Duration(cfg.Collector.TickIntervalMinutes)*time.Minute,
			time.Duration(cfg.Collector.ErrorBackoffSeconds)*time.Second,
		),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if _, err := collector.CollectOnce(runCtx); err != nil {
			logx.Errorf("price collection failed: %v", err)
			os.Exit(1)
		}
		return
	}

	logx.Infof("price logger started, sampling every %dm", cfg.Collector.TickIntervalMinutes)
	collector.RunLoop(runCtx)
	logx.Info("price logger stopped")
}
