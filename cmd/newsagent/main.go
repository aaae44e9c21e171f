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

var configFile = flag.String("f", "etc/btcpulse.yaml", "config file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logx.Errorf("load config: %v", err)
		os.Exit(1)
	}
	cli.LogConfigSummary(cfg)

	ctx := svc.NewServiceContext(cfg)
	if ctx.Search == nil {
		logx.Error("news collection requires a search client (set BRAVE_API_KEY)")
		os.Exit(1)
	}

	collector := agent.NewNewsAgent(ctx.Search, ctx.Completer, ctx.NewsModel,
		agent.WithNewsCounts(cfg.News.Queries, cfg.News.Results),
		agent.WithNewsDelay(time.Duration(cfg.News.QueryDelaySeconds)*time.Second),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	total, err := collector.Run(runCtx)
	if err != nil {
		logx.Errorf("news collection failed: %v", err)
		os.Exit(1)
	}
	logx.Infof("news collection finished, %d articles stored", total)
}
