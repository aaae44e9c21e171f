package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpulse/internal/model"
	"btcpulse/pkg/llm"
	"btcpulse/pkg/mailer"
)

const (
	defaultTrailingWindow = 7 * 24 * time.Hour
	defaultReadLimit      = 10

	salutation = "Dear Hamza"
	signature  = "\n\nRegards,\nYour Finance Agent"

	analysisSystemPrompt = `You are a professional financial analyst specializing in cryptocurrency markets, particularly Bitcoin.
You write extremely concise, insightful analysis that identifies important correlations between news and price movements.
Your analysis should be brief (maximum 5 short paragraphs), professionally written, and highly informative.`

	// analysisModelAlias resolves to the heavyweight analysis model through
	// the completion client's models map.
	analysisModelAlias = "analysis"

	analysisErrorNotice = "Error generating Bitcoin market analysis. Please check the system logs."

	placeholderBody = "Dear Hamza,\n\nThis is a test email from your Finance Email Agent. The system is functioning correctly but couldn't find sufficient recent data in the database. Please ensure your data collection agents are running properly.\n\nRegards,\nYour Finance Agent"
)

// ErrInsufficientData reports that one of the two tables held no recent rows.
var ErrInsufficientData = errors.New("agent: insufficient recent data for analysis")

// AnalysisAgent reads back recent news and prices, asks for a short
// professional analysis and delivers it as a single plain-text email.
type AnalysisAgent struct {
	prices model.BtcPricesModel
	news   model.EcoNewsModel
	llm    llm.Completer
	sender mailer.Sender
	now    func() time.Time

	window    time.Duration
	readLimit int
	testMode  bool
}

// AnalysisOption configures optional agent behaviour.
type AnalysisOption func(*AnalysisAgent)

// WithAnalysisWindow overrides the trailing lookback window.
func WithAnalysisWindow(d time.Duration) AnalysisOption {
	return func(a *AnalysisAgent) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithAnalysisReadLimit overrides how many rows are read from each table.
func WithAnalysisReadLimit(n int) AnalysisOption {
	return func(a *AnalysisAgent) {
		if n > 0 {
			a.readLimit = n
		}
	}
}

// WithAnalysisTestMode sends a fixed placeholder email instead of failing
// when recent data is missing.
func WithAnalysisTestMode(enabled bool) AnalysisOption {
	return func(a *AnalysisAgent) { a.testMode = enabled }
}

// WithAnalysisClock overrides the time source, used by tests.
func WithAnalysisClock(now func() time.Time) AnalysisOption {
	return func(a *AnalysisAgent) { a.now = now }
}

// NewAnalysisAgent constructs the analysis and notification pipeline.
func NewAnalysisAgent(prices model.BtcPricesModel, news model.EcoNewsModel, completer llm.Completer, sender mailer.Sender, opts ...AnalysisOption) *AnalysisAgent {
	a := &AnalysisAgent{
		prices:    prices,
		news:      news,
		llm:       completer,
		sender:    sender,
		now:       time.Now,
		window:    defaultTrailingWindow,
		readLimit: defaultReadLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the whole pipeline. It returns ErrInsufficientData when
// either table has no recent rows in normal mode; in test mode a fixed
// placeholder email is sent instead. A failed generative call substitutes a
// fixed error notice and the email still goes out.
func (a *AnalysisAgent) Run(ctx context.Context) error {
	since := a.now().Add(-a.window)

	newsRows, err := a.news.FindRecent(ctx, since, a.readLimit)
	if err != nil {
		logx.WithContext(ctx).Errorf("read eco_news failed: %v", err)
	}
	logx.WithContext(ctx).Infof("retrieved %d eco_news records", len(newsRows))

	priceRows, err := a.prices.FindRecent(ctx, since, a.readLimit)
	if err != nil {
		logx.WithContext(ctx).Errorf("read btc_prices failed: %v", err)
	}
	logx.WithContext(ctx).Infof("retrieved %d btc_prices records", len(priceRows))

	if len(newsRows) == 0 || len(priceRows) == 0 {
		logx.WithContext(ctx).Info("insufficient data to generate analysis")
		if a.testMode {
			return a.send(ctx, placeholderBody)
		}
		return ErrInsufficientData
	}

	contextData := buildAnalysisContext(newsRows, priceRows)
	analysis := a.generateAnalysis(ctx, contextData)
	return a.send(ctx, polishAnalysis(analysis))
}

// buildAnalysisContext concatenates news blocks and price lines into the
// plain-text prompt context: news first, then "Date, Price" lines.
func buildAnalysisContext(news []model.EcoNews, prices []model.BtcPrices) string {
	var b strings.Builder
	b.WriteString("RECENT BITCOIN NEWS:\n\n")
	for _, item := range news {
		b.WriteString(item.FinanceInfo)
		b.WriteString("\n\n")
	}

	b.WriteString("\nRECENT BITCOIN PRICE DATA:\n\n")
	for _, row := range prices {
		fmt.Fprintf(&b, "Date: %s, Price: $%.2f\n", row.Timestamp.Format("2006-01-02"), row.Price)
	}
	return b.String()
}

// generateAnalysis never propagates a failure out of the pipeline; a fixed
// error notice takes the place of the analysis text.
func (a *AnalysisAgent) generateAnalysis(ctx context.Context, contextData string) string {
	if a.llm == nil {
		logx.WithContext(ctx).Error("no completion client configured for analysis")
		return analysisErrorNotice
	}

	userPrompt := fmt.Sprintf(`Based on the following information about Bitcoin news and recent price movements,
create a VERY short, concise, professional analysis email identifying key correlations and insights.
Focus only on the most significant patterns and actionable information.
Be direct and to the point.

CONTEXT DATA:
%s

Please format your response as a professional email to Hamza.`, contextData)

	analysis, err := a.llm.Complete(ctx, analysisSystemPrompt, userPrompt, llm.CompleteOptions{
		Model:       analysisModelAlias,
		MaxTokens:   600,
		Temperature: 0.3,
	})
	if err != nil {
		logx.WithContext(ctx).Errorf("analysis generation failed: %v", err)
		return analysisErrorNotice
	}
	return analysis
}

// polishAnalysis prepends a salutation and appends a signature when the
// generated text lacks them. Idempotent: text that already carries both is
// returned unchanged.
func polishAnalysis(analysis string) string {
	if !strings.HasPrefix(analysis, salutation) && !strings.HasPrefix(analysis, "Hi Hamza") {
		analysis = salutation + ",\n\n" + analysis
	}
	if !strings.Contains(analysis, "Regards") && !strings.Contains(analysis, "Sincerely") {
		analysis += signature
	}
	return analysis
}

func (a *AnalysisAgent) send(ctx context.Context, body string) error {
	subject := fmt.Sprintf("Bitcoin Market Analysis - %s", a.now().Format("2006-01-02"))
	if err := a.sender.Send(ctx, subject, body); err != nil {
		logx.WithContext(ctx).Errorf("send analysis email failed: %v", err)
		return err
	}
	logx.WithContext(ctx).Info("analysis email sent")
	return nil
}
