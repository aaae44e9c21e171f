package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// EcoNews maps one row of the eco_news table: a pre-summarized news item
// stored as a formatted text block.
type EcoNews struct {
	Id          int64     `db:"id"`
	Timestamp   time.Time `db:"timestamp"`
	FinanceInfo string    `db:"finance_info"`
}

// EcoNewsModel is the narrow repository surface for news items.
type EcoNewsModel interface {
	Insert(ctx context.Context, row *EcoNews) error
	// FindRecent returns rows with timestamp >= since, newest first,
	// capped at limit.
	FindRecent(ctx context.Context, since time.Time, limit int) ([]EcoNews, error)
}

type defaultEcoNewsModel struct {
	conn sqlx.SqlConn
}

// NewEcoNewsModel returns a model for the eco_news table.
func NewEcoNewsModel(conn sqlx.SqlConn) EcoNewsModel {
	return &defaultEcoNewsModel{conn: conn}
}

func (m *defaultEcoNewsModel) Insert(ctx context.Context, row *EcoNews) error {
	const q = `INSERT INTO eco_news (timestamp, finance_info) VALUES ($1, $2)`
	result, err := m.conn.ExecCtx(ctx, q, row.Timestamp.UTC(), row.FinanceInfo)
	if err != nil {
		return fmt.Errorf("insert eco_news: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNoRowsInserted
	}
	return nil
}

func (m *defaultEcoNewsModel) FindRecent(ctx context.Context, since time.Time, limit int) ([]EcoNews, error) {
	const q = `SELECT id, timestamp, finance_info FROM eco_news WHERE timestamp >= $1 ORDER BY timestamp DESC LIMIT $2`
	var rows []EcoNews
	if err := m.conn.QueryRowsCtx(ctx, &rows, q, since.UTC(), limit); err != nil {
		return nil, fmt.Errorf("query eco_news: %w", err)
	}
	return rows, nil
}
