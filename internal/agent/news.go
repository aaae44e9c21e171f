package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpulse/internal/model"
	"btcpulse/pkg/brave"
	"btcpulse/pkg/llm"
)

const (
	defaultQueryCount  = 3
	defaultResultCount = 5
	defaultQueryDelay  = 2 * time.Second

	queryGenSystemPrompt = "You are a helpful assistant for generating Bitcoin and finance-related search queries."
	queryGenUserPrompt   = "Generate a specific search query about recent Bitcoin price movements, market trends, or financial integration."

	// Model aliases resolved through the completion client's models map.
	queryModelAlias   = "query"
	summaryModelAlias = "summary"
)

// queryCandidates is the fixed fallback pool used when no generative client
// is configured or the generative call fails.
var queryCandidates = []string{
	"latest Bitcoin price analysis",
	"Bitcoin market trends this week",
	"cryptocurrency finance news Bitcoin",
	"Bitcoin investment strategies",
	"Bitcoin and traditional finance integration",
	"Bitcoin ETF performance",
	"Bitcoin mining profitability",
	"Bitcoin regulatory news",
	"Bitcoin institutional adoption",
}

// NewsAgent searches for recent Bitcoin news, summarizes each hit and
// persists one formatted text block per result.
type NewsAgent struct {
	search brave.Searcher
	llm    llm.Completer // nil disables the generative paths
	news   model.EcoNewsModel
	now    func() time.Time
	pick   func(n int) int

	queryCount  int
	resultCount int
	queryDelay  time.Duration
}

// NewsOption configures optional agent behaviour.
type NewsOption func(*NewsAgent)

// WithNewsCounts overrides how many queries run and how many results each
// query requests.
func WithNewsCounts(queries, results int) NewsOption {
	return func(a *NewsAgent) {
		if queries > 0 {
			a.queryCount = queries
		}
		if results > 0 {
			a.resultCount = results
		}
	}
}

// WithNewsDelay overrides the pause between queries.
func WithNewsDelay(d time.Duration) NewsOption {
	return func(a *NewsAgent) { a.queryDelay = d }
}

// WithNewsClock overrides the timestamp source, used by tests.
func WithNewsClock(now func() time.Time) NewsOption {
	return func(a *NewsAgent) { a.now = now }
}

// WithNewsPicker overrides the random candidate picker, used by tests.
func WithNewsPicker(pick func(n int) int) NewsOption {
	return func(a *NewsAgent) { a.pick = pick }
}

// NewNewsAgent constructs the news collector pipeline. Pass a nil completer
// to always use the fixed query list and raw descriptions.
func NewNewsAgent(search brave.Searcher, completer llm.Completer, news model.EcoNewsModel, opts ...NewsOption) *NewsAgent {
	a := &NewsAgent{
		search:      search,
		llm:         completer,
		news:        news,
		now:         time.Now,
		pick:        rand.Intn,
		queryCount:  defaultQueryCount,
		resultCount: defaultResultCount,
		queryDelay:  defaultQueryDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateQuery produces one search query: generated when a completer is
// available, otherwise a uniform random pick from the fixed candidate list.
// A failed generative call falls back to the random pick.
func (a *NewsAgent) GenerateQuery(ctx context.Context) string {
	if a.llm != nil {
		query, err := a.llm.Complete(ctx, queryGenSystemPrompt, queryGenUserPrompt, llm.CompleteOptions{
			Model:       queryModelAlias,
			MaxTokens:   50,
			Temperature: 0.7,
		})
		if err == nil {
			return strings.Trim(strings.TrimSpace(query), `"'`)
		}
		logx.WithContext(ctx).Errorf("query generation failed, using fixed candidate: %v", err)
	}
	return queryCandidates[a.pick(len(queryCandidates))]
}

// Summarize produces a short summary of one search result. Any failure
// degrades to the raw description; this never aborts the item.
func (a *NewsAgent) Summarize(ctx context.Context, result brave.Result) string {
	if a.llm == nil {
		return fallbackDescription(result)
	}

	prompt := fmt.Sprintf(`Summarize this financial news article about Bitcoin in 2-3 sentences:
Title: %s
Description: %s

Summary:`, result.Title, result.Description)

	summary, err := a.llm.Complete(ctx, "", prompt, llm.CompleteOptions{
		Model:       summaryModelAlias,
		MaxTokens:   100,
		Temperature: 0.3,
	})
	if err != nil {
		logx.WithContext(ctx).Errorf("summarize %q failed, keeping description: %v", result.Title, err)
		return fallbackDescription(result)
	}
	return summary
}

// Run executes the configured number of query rounds and returns the total
// count of persisted records. Per-item failures are logged and skipped;
// there is no transactional grouping.
func (a *NewsAgent) Run(ctx context.Context) (int, error) {
	total := 0
	for i := 0; i < a.queryCount; i++ {
		query := a.GenerateQuery(ctx)
		logx.WithContext(ctx).Infof("searching for: %s", query)

		results, err := a.search.Search(ctx, query, a.resultCount)
		if err != nil {
			logx.WithContext(ctx).Errorf("search %q failed: %v", query, err)
			results = nil
		}

		stored := 0
		for _, result := range results {
			summary := a.Summarize(ctx, result)
			row := &model.EcoNews{
				Timestamp:   a.now(),
				FinanceInfo: formatNewsItem(query, result, summary),
			}
			if err := a.news.Insert(ctx, row); err != nil {
				logx.WithContext(ctx).Errorf("persist news item %q failed: %v", result.Title, err)
				continue
			}
			stored++
		}
		total += stored
		logx.WithContext(ctx).Infof("stored %d items for query: %s", stored, query)

		// Pause between queries to respect search API rate limits.
		if i < a.queryCount-1 && a.queryDelay > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(a.queryDelay):
			}
		}
	}
	return total, nil
}

func fallbackDescription(result brave.Result) string {
	if strings.TrimSpace(result.Description) == "" {
		return "No description available"
	}
	return result.Description
}

func formatNewsItem(query string, result brave.Result, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	fmt.Fprintf(&b, "Title: %s\n", result.Title)
	fmt.Fprintf(&b, "Summary: %s\n", summary)
	fmt.Fprintf(&b, "URL: %s\n", result.URL)
	fmt.Fprintf(&b, "Source: %s\n", result.Source)
	fmt.Fprintf(&b, "Published: %s", result.Published)
	return b.String()
}
