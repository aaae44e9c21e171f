package svc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"btcpulse/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Env:      "test",
		Postgres: config.PostgresConf{DSN: "postgres://localhost:5432/btcpulse?sslmode=disable"},
	}
}

func TestNewServiceContextWithoutCredentials(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "")
	t.Setenv("GMAIL_USER", "")
	t.Setenv("GMAIL_APP_PASSWORD", "")

	svc := NewServiceContext(baseConfig())

	require.NotNil(t, svc.DBConn)
	require.NotNil(t, svc.PricesModel)
	require.NotNil(t, svc.NewsModel)
	require.NotNil(t, svc.Quotes)

	require.Nil(t, svc.Search, "no search key means no searcher")
	require.Nil(t, svc.Completer, "no llm section means no completer")
	require.Nil(t, svc.Sender, "no smtp credentials means no sender")
}

func TestNewServiceContextWithSearchKey(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "brave-test-key")
	t.Setenv("GMAIL_USER", "")
	t.Setenv("GMAIL_APP_PASSWORD", "")

	svc := NewServiceContext(baseConfig())
	require.NotNil(t, svc.Search)
	require.Nil(t, svc.Sender)
}

func TestNewServiceContextWithMailCredentials(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "")
	t.Setenv("GMAIL_USER", "agent@example.com")
	t.Setenv("GMAIL_APP_PASSWORD", "app-password")

	cfg := baseConfig()
	cfg.Mail.Recipient = "hamza@example.com"

	svc := NewServiceContext(cfg)
	require.NotNil(t, svc.Sender)
	require.Nil(t, svc.Search)
}
