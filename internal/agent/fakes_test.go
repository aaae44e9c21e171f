package agent

import (
	"context"
	"time"

	"btcpulse/internal/model"
	"btcpulse/pkg/brave"
	"btcpulse/pkg/llm"
)

type fakeQuotes struct {
	price float64
	err   error
	calls int
}

func (f *fakeQuotes) BitcoinPriceUSD(ctx context.Context) (float64, error) {
	f.calls++
	return f.price, f.err
}

type fakePriceModel struct {
	rows      []model.BtcPrices
	insertErr error
	findErr   error
}

func (f *fakePriceModel) Insert(ctx context.Context, row *model.BtcPrices) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, *row)
	return nil
}

func (f *fakePriceModel) FindRecent(ctx context.Context, since time.Time, limit int) ([]model.BtcPrices, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]model.BtcPrices, 0, len(f.rows))
	for _, row := range f.rows {
		if !row.Timestamp.Before(since) {
			out = append(out, row)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeNewsModel struct {
	rows      []model.EcoNews
	insertErr []error // consumed per call, nil entry means success
	findErr   error
}

func (f *fakeNewsModel) Insert(ctx context.Context, row *model.EcoNews) error {
	var err error
	if len(f.insertErr) > 0 {
		err, f.insertErr = f.insertErr[0], f.insertErr[1:]
	}
	if err != nil {
		return err
	}
	f.rows = append(f.rows, *row)
	return nil
}

func (f *fakeNewsModel) FindRecent(ctx context.Context, since time.Time, limit int) ([]model.EcoNews, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := f.rows
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSearcher struct {
	results []brave.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, count int) ([]brave.Result, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCompleter struct {
	text    string
	err     error
	systems []string
	users   []string
	opts    []llm.CompleteOptions
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, opts llm.CompleteOptions) (string, error) {
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeSender struct {
	subjects []string
	bodies   []string
	err      error
}

func (f *fakeSender) Send(ctx context.Context, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}
