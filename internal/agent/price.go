package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpulse/internal/model"
	"btcpulse/pkg/coingecko"
)

const (
	// Loop cadence matches the hourly logger: one tick per hour on
	// success, a one minute backoff after an unexpected failure.
	defaultTickInterval = time.Hour
	defaultErrorBackoff = time.Minute

	recentPricesLimit = 24
)

// PriceAgent fetches the current BTC/USD quote and appends one observation
// per tick to the price table.
type PriceAgent struct {
	quotes coingecko.QuoteProvider
	prices model.BtcPricesModel
	out    io.Writer
	now    func() time.Time

	tickInterval time.Duration
	errorBackoff time.Duration
}

// PriceOption configures optional agent behaviour.
type PriceOption func(*PriceAgent)

// WithPriceOutput redirects the console price line, used by tests.
func WithPriceOutput(w io.Writer) PriceOption {
	return func(a *PriceAgent) { a.out = w }
}

// WithPriceClock overrides the timestamp source, used by tests.
func WithPriceClock(now func() time.Time) PriceOption {
	return func(a *PriceAgent) { a.now = now }
}

// WithPriceIntervals overrides the loop cadence.
func WithPriceIntervals(tick, backoff time.Duration) PriceOption {
	return func(a *PriceAgent) {
		if tick > 0 {
			a.tickInterval = tick
		}
		if backoff > 0 {
			a.errorBackoff = backoff
		}
	}
}

// NewPriceAgent constructs the price collector pipeline.
func NewPriceAgent(quotes coingecko.QuoteProvider, prices model.BtcPricesModel, opts ...PriceOption) *PriceAgent {
	a := &PriceAgent{
		quotes:       quotes,
		prices:       prices,
		out:          os.Stdout,
		now:          time.Now,
		tickInterval: defaultTickInterval,
		errorBackoff: defaultErrorBackoff,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CollectOnce performs a single tick: fetch, print, persist. A failed fetch
// aborts the tick before any persistence call. The timestamp is synthesized
// locally; the quote source is never trusted for time.
func (a *PriceAgent) CollectOnce(ctx context.Context) (float64, error) {
	price, err := a.quotes.BitcoinPriceUSD(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("price fetch failed: %v", err)
		return 0, err
	}

	fmt.Fprintf(a.out, "Current Bitcoin price: $%s USD\n", formatUSD(price))

	row := &model.BtcPrices{
		Price:     price,
		Currency:  "USD",
		Timestamp: a.now(),
	}
	if err := a.prices.Insert(ctx, row); err != nil {
		logx.WithContext(ctx).Errorf("price persist failed: %v", err)
		return 0, err
	}

	logx.WithContext(ctx).Infof("stored bitcoin price %.2f USD at %s", price, row.Timestamp.Format(time.RFC3339))
	return price, nil
}

// RunLoop ticks until the context is cancelled, logging and continuing on
// any per-tick failure. After a successful tick the most recent stored
// prices are echoed to the console.
func (a *PriceAgent) RunLoop(ctx context.Context) {
	for {
		wait := a.tickInterval
		if _, err := a.CollectOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = a.errorBackoff
		} else {
			a.printRecent(ctx)
		}

		logx.WithContext(ctx).Infof("next price tick in %s", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (a *PriceAgent) printRecent(ctx context.Context) {
	since := a.now().Add(-defaultTrailingWindow)
	rows, err := a.prices.FindRecent(ctx, since, recentPricesLimit)
	if err != nil {
		logx.WithContext(ctx).Errorf("recent prices read-back failed: %v", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(a.out, "\nRecent Bitcoin Prices:")
	for _, row := range rows {
		fmt.Fprintf(a.out, "%s  $%s\n", row.Timestamp.Format("2006-01-02 15:04:05"), formatUSD(row.Price))
	}
}

// formatUSD renders a dollar amount with two decimals and thousand
// separators, e.g. 42000.55 -> "42,000.55".
func formatUSD(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
