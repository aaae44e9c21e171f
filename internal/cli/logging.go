package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpulse/internal/config"
	"btcpulse/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		sectionLine("LLM config", cfg.LLM),
		fmt.Sprintf("Search: %s", presence(strings.TrimSpace(cfg.Search.ResolveAPIKey()) != "")),
		fmt.Sprintf("Mail: %s", presence(strings.TrimSpace(cfg.Mail.ResolveUsername()) != "")),
		fmt.Sprintf("Collector tick/backoff: %dm / %ds", cfg.Collector.TickIntervalMinutes, cfg.Collector.ErrorBackoffSeconds),
		fmt.Sprintf("News queries/results: %d / %d", cfg.News.Queries, cfg.News.Results),
		fmt.Sprintf("Analysis window/limit: %dd / %d", cfg.Analysis.WindowDays, cfg.Analysis.ReadLimit),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
