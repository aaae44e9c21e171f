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
	testMode   = flag.Bool("test", false, "send a placeholder email when stored data is insufficient")
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
	if ctx.Sender == nil {
		logx.Error("analysis delivery requires SMTP credentials (set GMAIL_USER and GMAIL_APP_PASSWORD)")
		os.Exit(1)
	}

	analyzer := agent.NewAnalysisAgent(ctx.PricesModel, ctx.NewsModel, ctx.Completer, ctx.Sender,
		agent.WithAnalysisWindow(time.Duration(cfg.Analysis.WindowDays)*24*time.Hour),
		agent.WithAnalysisReadLimit(cfg.Analysis.ReadLimit),
		agent.WithAnalysisTestMode(*testMode || cfg.IsTestEnv()),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := analyzer.Run(runCtx); err != nil {
		logx.Errorf("analysis run failed: %v", err)
		os.Exit(1)
	}
	logx.Info("analysis email delivered")
}
