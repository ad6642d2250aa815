package wordlebot

import (
	"context"
	"fmt"
	"time"

	inboxModel "github.com/bloops-games/wordlebot/internal/database/inbox/model"
	"github.com/bloops-games/wordlebot/internal/fetch"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/metrics"
	"github.com/bloops-games/wordlebot/internal/report"
	"github.com/bloops-games/wordlebot/internal/wordle"
)

// trigger label values
const (
	TriggerSchedule = "schedule"
	TriggerBackfill = "backfill"
)

type ResultStore interface {
	FetchAll(ctx context.Context) ([]wordle.Batch, error)
	FetchByDate(ctx context.Context, date string) ([]wordle.Batch, error)
	Insert(ctx context.Context, batch wordle.Batch) (bool, error)
}

type Inbox interface {
	Page(ctx context.Context, since, until time.Time, cursor string, limit int) (fetch.Page[inboxModel.Message], error)
	Prune(ctx context.Context, before time.Time) (int, error)
}

type RosterSource interface {
	Snapshot(ctx context.Context) Snapshot
}

type Poster interface {
	Post(ctx context.Context, chatID int64, text string) error
}

// IngestResult counts what one pass over the inbox did.
type IngestResult struct {
	Messages   int
	Parsed     int
	Inserted   int
	Duplicates int
	Failed     int
}

func NewWorkflow(config *Config, results ResultStore, inbox Inbox, roster RosterSource, poster Poster) (*Workflow, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	return &Workflow{
		results:    results,
		inbox:      inbox,
		roster:     roster,
		poster:     poster,
		chatID:     config.ChatID,
		loc:        loc,
		window:     config.Window,
		offsetDays: config.ResultsOffsetDays,
		retention:  config.InboxRetention,
		pageSize:   config.PageSize,
		backoff:    config.Backoff,
		now:        time.Now,
	}, nil
}

// Workflow moves captured summaries into the result store and turns the
// stored history into reports.
type Workflow struct {
	results ResultStore
	inbox   Inbox
	roster  RosterSource
	poster  Poster

	chatID     int64
	loc        *time.Location
	window     time.Duration
	offsetDays int
	retention  time.Duration
	pageSize   int
	backoff    fetch.Backoff
	now        func() time.Time
}

// resultsDate is the day a summary posted at t reports on.
func (w *Workflow) resultsDate(t time.Time) string {
	return t.In(w.loc).AddDate(0, 0, -w.offsetDays).Format(wordle.DateLayout)
}

// ingest parses every inbox message dated in [since, until) and stores the
// batches. Messages that fail to parse or to store are logged and skipped.
func (w *Workflow) ingest(ctx context.Context, since, until time.Time, roster Snapshot) IngestResult {
	logger := logging.FromContext(ctx).Named("workflow.ingest")

	var res IngestResult
	messages := fetch.Collect(ctx, func(ctx context.Context, cursor string) (fetch.Page[inboxModel.Message], error) {
		return w.inbox.Page(ctx, since, until, cursor, w.pageSize)
	}, w.backoff)

	for _, m := range messages {
		if w.chatID != 0 && m.ChatID != w.chatID {
			continue
		}
		res.Messages++

		s, err := wordle.Parse(ctx, m.Text, roster.Entries)
		if err != nil {
			metrics.ParseOutcomes.WithLabelValues(metrics.OutcomeRejected).Inc()
			logger.Debugf("message %d: %v", m.MessageID, err)
			continue
		}
		metrics.ParseOutcomes.WithLabelValues(metrics.OutcomeParsed).Inc()
		res.Parsed++

		batch := wordle.NewBatch(w.resultsDate(m.Time(w.loc)), s)
		inserted, err := w.results.Insert(ctx, batch)
		switch {
		case err != nil:
			metrics.BatchesStored.WithLabelValues(metrics.OutcomeError).Inc()
			logger.Errorf("store batch of message %d: %v", m.MessageID, err)
			res.Failed++
		case inserted:
			metrics.BatchesStored.WithLabelValues(metrics.OutcomeInserted).Inc()
			res.Inserted++
		default:
			metrics.BatchesStored.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			res.Duplicates++
		}
	}

	logger.Infof("ingested %s..%s: %+v", since.Format(time.RFC3339), until.Format(time.RFC3339), res)

	return res
}

func (w *Workflow) stats(ctx context.Context, roster Snapshot) (wordle.Stats, error) {
	batches, err := w.results.FetchAll(ctx)
	if err != nil {
		return wordle.Stats{}, fmt.Errorf("fetch all results: %w", err)
	}

	start := time.Now()
	stats := wordle.NewAggregator(w.loc, w.now).Aggregate(batches, roster.Names)
	metrics.ObserveSince(metrics.AggregationDuration, start)

	return stats, nil
}

// Report aggregates the stored history and renders the daily report without
// ingesting anything.
func (w *Workflow) Report(ctx context.Context) (string, error) {
	stats, err := w.stats(ctx, w.roster.Snapshot(ctx))
	if err != nil {
		return "", err
	}
	return report.Daily(stats), nil
}

// UserReport renders the card of one player.
func (w *Workflow) UserReport(ctx context.Context, id wordle.UserRef) (string, error) {
	stats, err := w.stats(ctx, w.roster.Snapshot(ctx))
	if err != nil {
		return "", err
	}
	return report.User(stats, id), nil
}

// Backfill ingests the summaries reporting on date, which were posted
// offset days later, and renders the report.
func (w *Workflow) Backfill(ctx context.Context, date string) (IngestResult, string, error) {
	d, err := time.ParseInLocation(wordle.DateLayout, date, w.loc)
	if err != nil {
		return IngestResult{}, "", fmt.Errorf("parse date %q: %w", date, err)
	}

	since := d.AddDate(0, 0, w.offsetDays)
	until := since.AddDate(0, 0, 1)

	roster := w.roster.Snapshot(ctx)
	res := w.ingest(ctx, since, until, roster)

	stats, err := w.stats(ctx, roster)
	if err != nil {
		metrics.WorkflowRuns.WithLabelValues(TriggerBackfill, metrics.OutcomeError).Inc()
		return res, "", err
	}
	metrics.WorkflowRuns.WithLabelValues(TriggerBackfill, metrics.OutcomeOK).Inc()

	return res, report.Daily(stats), nil
}

// Run ingests the trailing window, posts the report to the group and prunes
// the inbox.
func (w *Workflow) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("workflow.Run")

	now := w.now()
	roster := w.roster.Snapshot(ctx)
	w.ingest(ctx, now.Add(-w.window), now, roster)

	stats, err := w.stats(ctx, roster)
	if err != nil {
		return err
	}

	if err := w.poster.Post(ctx, w.chatID, report.Daily(stats)); err != nil {
		return fmt.Errorf("post report: %w", err)
	}

	if w.retention > 0 {
		if _, err := w.inbox.Prune(ctx, now.Add(-w.retention)); err != nil {
			logger.Warnf("prune inbox: %v", err)
		}
	}

	return nil
}

// RunDaily is the scheduled entry point. Errors and panics are logged and the
// day's report is skipped.
func (w *Workflow) RunDaily(ctx context.Context) {
	logger := logging.FromContext(ctx).Named("workflow.RunDaily")

	defer func() {
		if r := recover(); r != nil {
			metrics.WorkflowRuns.WithLabelValues(TriggerSchedule, metrics.OutcomeError).Inc()
			logger.Errorf("recovered from panic: %v", r)
		}
	}()

	if err := w.Run(ctx); err != nil {
		metrics.WorkflowRuns.WithLabelValues(TriggerSchedule, metrics.OutcomeError).Inc()
		logger.Errorf("daily run: %v", err)
		return
	}

	metrics.WorkflowRuns.WithLabelValues(TriggerSchedule, metrics.OutcomeOK).Inc()
}
