// Package runner drives one notification run over the unsent news window.
package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yhkim-dev/newsroom-push/internal/dispatcher"
	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// BatchSender delivers one payload to a batch of targets.
type BatchSender interface {
	SendBatch(ctx context.Context, targets []notify.Target, payload notify.Payload) []notify.DeliveryOutcome
}

// Config controls Runner behavior.
type Config struct {
	// Window is the trailing lookback for unsent items. Kept wider than
	// the poll interval so a late scheduler tick cannot skip items; the
	// sent-at mark, not the window, is the idempotency guard.
	Window time.Duration
}

// Runner executes one ingestion pass: fetch unsent items, select
// recipients, dispatch both notification types, mark each item sent.
type Runner struct {
	news        notify.NewsStore
	subscribers notify.SubscriberStore
	sender      BatchSender
	media       *notify.MediaNameCache
	clock       notify.Clock
	cfg         Config
	logger      *zap.Logger
}

// New constructs a Runner.
func New(
	news notify.NewsStore,
	subscribers notify.SubscriberStore,
	sender BatchSender,
	media *notify.MediaNameCache,
	clock notify.Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if cfg.Window <= 0 {
		cfg.Window = 6 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		news:        news,
		subscribers: subscribers,
		sender:      sender,
		media:       media,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run performs one pass. A window-fetch failure fails the whole run;
// per-item failures are isolated into the report so one bad item never
// blocks the rest. Every processed item is marked sent exactly once,
// whether or not its deliveries succeeded.
func (r *Runner) Run(ctx context.Context) (notify.RunReport, error) {
	now := r.clock.Now()
	report := notify.RunReport{}

	items, err := r.news.UnsentSince(ctx, now.Add(-r.cfg.Window))
	if err != nil {
		notify.TotalRuns.WithLabelValues("error").Inc()
		return report, fmt.Errorf("fetch unsent news: %w", err)
	}
	if len(items) == 0 {
		r.logger.Info("no unsent news in window")
		notify.TotalRuns.WithLabelValues("empty").Inc()
		return report, nil
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			notify.TotalRuns.WithLabelValues("error").Inc()
			return report, fmt.Errorf("run canceled: %w", err)
		}
		if err := r.processItem(ctx, item, &report); err != nil {
			r.logger.Error("process news item failed",
				zap.Int64("news_id", item.ID),
				zap.Error(err),
			)
			report.ItemErrors = append(report.ItemErrors, notify.ItemError{
				NewsID: item.ID,
				Error:  err.Error(),
			})
			continue
		}
		report.ProcessedNews++
	}

	notify.TotalRuns.WithLabelValues("ok").Inc()
	r.logger.Info("notification run complete",
		zap.Int("processed", report.ProcessedNews),
		zap.Int("keyword_sent", report.KeywordSent),
		zap.Int("category_sent", report.CategorySent),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (r *Runner) processItem(ctx context.Context, item notify.NewsItem, report *notify.RunReport) error {
	subs, err := r.subscribers.Enabled(ctx)
	if err != nil {
		return fmt.Errorf("fetch subscribers: %w", err)
	}

	now := r.clock.Now()
	keywordRecipients := notify.SelectKeywordRecipients(item, subs, now)
	categoryRecipients := notify.SelectCategoryRecipients(item, subs, now)

	mediaName := ""
	if r.media != nil {
		mediaName = r.media.Resolve(item.OriginalLink)
	}

	r.dispatchKeyword(ctx, item, keywordRecipients, mediaName, report)
	r.dispatchCategory(ctx, item, categoryRecipients, mediaName, report)

	// Marked sent regardless of delivery outcome: at-most-once per item.
	// Failed sends are an accepted loss, never retried.
	if err := r.news.MarkNotified(ctx, item.ID, r.clock.Now()); err != nil {
		return fmt.Errorf("mark news %d notified: %w", item.ID, err)
	}
	return nil
}

// dispatchKeyword batches recipients that matched the same keyword
// list, then delivers the batches concurrently. Payloads are identical
// within a batch, and sends to subscribers with different matches
// overlap instead of waiting on each other; in-flight concurrency is
// capped by the sender, not here.
func (r *Runner) dispatchKeyword(
	ctx context.Context,
	item notify.NewsItem,
	recipients []notify.KeywordRecipient,
	mediaName string,
	report *notify.RunReport,
) {
	if len(recipients) == 0 {
		return
	}

	type keywordGroup struct {
		keywords []string
		targets  []notify.Target
	}
	index := make(map[string]int)
	var groups []*keywordGroup
	for _, recipient := range recipients {
		key := strings.Join(recipient.MatchedKeywords, "\x1f")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, &keywordGroup{keywords: recipient.MatchedKeywords})
		}
		groups[i].targets = append(groups[i].targets, recipient.Target)
	}

	results := make([][]notify.DeliveryOutcome, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(idx int, g *keywordGroup) {
			defer wg.Done()
			payload := notify.ComposeKeywordPayload(item.Title, g.keywords, item.OriginalLink, mediaName)
			results[idx] = r.sender.SendBatch(ctx, g.targets, payload)
		}(i, g)
	}
	wg.Wait()

	for _, outcomes := range results {
		sent, failed := dispatcher.Tally(outcomes)
		report.KeywordSent += sent
		report.Failed += failed
		notify.TotalSent.WithLabelValues("keyword").Add(float64(sent))
	}
}

func (r *Runner) dispatchCategory(
	ctx context.Context,
	item notify.NewsItem,
	targets []notify.Target,
	mediaName string,
	report *notify.RunReport,
) {
	if len(targets) == 0 {
		return
	}
	payload := notify.ComposeCategoryPayload(item.Title, item.Category, item.OriginalLink, mediaName)
	outcomes := r.sender.SendBatch(ctx, targets, payload)
	sent, failed := dispatcher.Tally(outcomes)
	report.CategorySent += sent
	report.Failed += failed
	notify.TotalSent.WithLabelValues("category").Add(float64(sent))
}
