package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// ErrNoRowsInserted reports an insert that affected no rows.
var ErrNoRowsInserted = errors.New("model: insert affected no rows")

// BtcPrices maps one row of the btc_prices table. Rows are append-only;
// duplicates across ticks are expected and accepted.
type BtcPrices struct {
	Id        int64     `db:"id"`
	Price     float64   `db:"price"`
	Currency  string    `db:"currency"`
	Timestamp time.Time `db:"timestamp"`
}

// BtcPricesModel is the narrow repository surface for price observations.
type BtcPricesModel interface {
	Insert(ctx context.Context, row *BtcPrices) error
	// FindRecent returns rows with timestamp >= since, newest first,
	// capped at limit.
	FindRecent(ctx context.Context, since time.Time, limit int) ([]BtcPrices, error)
}

type defaultBtcPricesModel struct {
	conn sqlx.SqlConn
}

// NewBtcPricesModel returns a model for the btc_prices table.
func NewBtcPricesModel(conn sqlx.SqlConn) BtcPricesModel {
	return &defaultBtcPricesModel{conn: conn}
}

func (m *defaultBtcPricesModel) Insert(ctx context.Context, row *BtcPrices) error {
	const q = `INSERT INTO btc_prices (price, currency, timestamp) VALUES ($1, $2, $3)`
	result, err := m.conn.ExecCtx(ctx, q, row.Price, row.Currency, row.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("insert btc_prices: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNoRowsInserted
	}
	return nil
}

func (m *defaultBtcPricesModel) FindRecent(ctx context.Context, since time.Time, limit int) ([]BtcPrices, error) {
	const q = `SELECT id, price, currency, timestamp FROM btc_prices WHERE timestamp >= $1 ORDER BY timestamp DESC LIMIT $2`
	var rows []BtcPrices
	if err := m.conn.QueryRowsCtx(ctx, &rows, q, since.UTC(), limit); err != nil {
		return nil, fmt.Errorf("query btc_prices: %w", err)
	}
	return rows, nil
}
