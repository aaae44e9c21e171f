package svc

import (
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"btcpulse/internal/config"
	"btcpulse/internal/model"
	"btcpulse/pkg/brave"
	"btcpulse/pkg/coingecko"
	llmpkg "btcpulse/pkg/llm"
	"btcpulse/pkg/mailer"
)

// ServiceContext wires the shared collaborators behind the three pipeline
// entry points. Collaborators whose credentials are absent stay nil; each
// agent degrades or fails accordingly, so the price logger never needs a
// search key and the news collector never needs SMTP credentials.
type ServiceContext struct {
	Config *config.Config

	DBConn      sqlx.SqlConn
	PricesModel model.BtcPricesModel
	NewsModel   model.EcoNewsModel

	Quotes    coingecko.QuoteProvider
	Search    brave.Searcher
	Completer llmpkg.Completer
	Sender    mailer.Sender
}

// NewServiceContext builds the service context from loaded configuration.
// The database connection and price quote client are always constructed;
// optional collaborators are attempted and logged when unavailable.
func NewServiceContext(c *config.Config) *ServiceContext {
	conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)

	svc := &ServiceContext{
		Config:      c,
		DBConn:      conn,
		PricesModel: model.NewBtcPricesModel(conn),
		NewsModel:   model.NewEcoNewsModel(conn),
		Quotes:      coingecko.NewClient(),
	}

	if c.LLM.Value != nil {
		client, err := llmpkg.NewClient(c.LLM.Value)
		if err != nil {
			logx.Errorf("llm client unavailable: %v", err)
		} else {
			svc.Completer = client
		}
	}

	if searcher, err := brave.NewClient(c.Search); err != nil {
		logx.Errorf("search client unavailable: %v", err)
	} else {
		svc.Search = searcher
	}

	if sender, err := mailer.New(c.Mail); err != nil {
		logx.Errorf("mail sender unavailable: %v", err)
	} else {
		svc.Sender = sender
	}

	return svc
}
