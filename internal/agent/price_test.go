package agent

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectOnce(t *testing.T) {
	quotes := &fakeQuotes{price: 42000.55}
	store := &fakePriceModel{}
	var out bytes.Buffer

	agent := NewPriceAgent(quotes, store, WithPriceOutput(&out))

	before := time.Now()
	price, err := agent.CollectOnce(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 42000.55, price, 0.001)

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	require.InDelta(t, 42000.55, row.Price, 0.001)
	require.Equal(t, "USD", row.Currency)
	require.WithinDuration(t, before, row.Timestamp, 5*time.Second)

	require.Equal(t, "Current Bitcoin price: $42,000.55 USD\n", out.String())
}

func TestCollectOnceFetchFailure(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("HTTP 503")}
	store := &fakePriceModel{}
	var out bytes.Buffer

	agent := NewPriceAgent(quotes, store, WithPriceOutput(&out))

	_, err := agent.CollectOnce(context.Background())
	require.Error(t, err)
	require.Empty(t, store.rows, "a failed fetch must not persist anything")
	require.Empty(t, out.String())
}

func TestCollectOncePersistFailure(t *testing.T) {
	quotes := &fakeQuotes{price: 50000}
	store := &fakePriceModel{insertErr: errors.New("connection refused")}

	agent := NewPriceAgent(quotes, store, WithPriceOutput(&bytes.Buffer{}))

	_, err := agent.CollectOnce(context.Background())
	require.Error(t, err)
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	quotes := &fakeQuotes{price: 42000}
	store := &fakePriceModel{}

	agent := NewPriceAgent(quotes, store,
		WithPriceOutput(&bytes.Buffer{}),
		WithPriceIntervals(5*time.Millisecond, 5*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		agent.RunLoop(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
	require.GreaterOrEqual(t, len(store.rows), 1)
}

func TestRunLoopContinuesAfterError(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("temporary outage")}
	store := &fakePriceModel{}

	agent := NewPriceAgent(quotes, store,
		WithPriceOutput(&bytes.Buffer{}),
		WithPriceIntervals(5*time.Millisecond, 5*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		agent.RunLoop(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	require.GreaterOrEqual(t, quotes.calls, 2, "loop should keep ticking after failures")
	require.Empty(t, store.rows)
}

func TestFormatUSD(t *testing.T) {
	cases := map[float64]string{
		42000.55:    "42,000.55",
		950.5:       "950.50",
		100:         "100.00",
		1234567.891: "1,234,567.89",
		0:           "0.00",
	}
	for in, want := range cases {
		require.Equal(t, want, formatUSD(in))
	}
}
