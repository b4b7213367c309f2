// Package broker answers score requests arriving over hermes.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/config"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
)

// QueueGroup is shared by every scorecard instance so each request is
// handled once.
const QueueGroup = "scorecard-workers"

var (
	ErrInvalidRequest = errors.New("invalid score request")
	ErrBatchTooLarge  = errors.New("score batch too large")
)

type Broker struct {
	hermes  hermes.Client
	scorers *Scorers
	cfg     *config.Config
	logger  *slog.Logger

	work chan hermes.Message

	requests  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(h hermes.Client, scorers *Scorers, cfg *config.Config, logger *slog.Logger) *Broker {
	return &Broker{
		hermes:  h,
		scorers: scorers,
		cfg:     cfg,
		logger:  logger,
		work:    make(chan hermes.Message, cfg.Broker.Workers),
		stopCh:  make(chan struct{}),
	}
}

// Scorers returns the scorer cache shared with the HTTP API.
func (b *Broker) Scorers() *Scorers { return b.scorers }

// Start subscribes to score requests and profile deletions and starts the
// worker pool.
func (b *Broker) Start(ctx context.Context) error {
	if err := b.hermes.QueueSubscribe(hermes.SubjectScoreRequest, QueueGroup, b.enqueue); err != nil {
		return err
	}
	if err := b.hermes.Subscribe("scorecard.profile.*.deleted", b.handleProfileDeleted); err != nil {
		return err
	}

	for i := 0; i < b.cfg.Broker.Workers; i++ {
		b.wg.Add(1)
		go b.worker(ctx)
	}
	if b.cfg.StatsInterval() > 0 {
		b.wg.Add(1)
		go b.statsLoop(ctx)
	}
	b.logger.Info("broker started", "workers", b.cfg.Broker.Workers)
	return nil
}

func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.wg.Wait()
}

// enqueue runs on the subscription goroutine and blocks while all workers
// are busy.
func (b *Broker) enqueue(msg hermes.Message) {
	select {
	case b.work <- msg:
	case <-b.stopCh:
	}
}

func (b *Broker) worker(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		case msg := <-b.work:
			b.process(ctx, msg)
		}
	}
}

func (b *Broker) process(ctx context.Context, msg hermes.Message) {
	b.requests.Add(1)

	var req hermes.ScoreRequestEvent
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		b.fail(msg, "", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	out, err := b.Handle(ctx, req)
	if err != nil {
		b.fail(msg, req.RequestID, err)
		return
	}
	b.completed.Add(1)
	b.logger.Info("score request completed",
		"request_id", req.RequestID,
		"records", len(req.Records),
		"duration_ms", out.DurationMs,
	)
	b.publish(hermes.SubjectScoreCompleted(req.RequestID), msg.Reply, out)
}

// Handle scores one request.
func (b *Broker) Handle(ctx context.Context, req hermes.ScoreRequestEvent) (hermes.ScoreCompletedEvent, error) {
	start := time.Now()
	if req.RequestID == "" {
		return hermes.ScoreCompletedEvent{}, fmt.Errorf("%w: request_id is required", ErrInvalidRequest)
	}
	if limit := b.cfg.Scoring.MaxBatchSize; len(req.Records) > limit {
		return hermes.ScoreCompletedEvent{}, fmt.Errorf("%w: %d records, limit %d", ErrBatchTooLarge, len(req.Records), limit)
	}

	sc, err := b.Resolve(ctx, req.ProfileID, req.Profile)
	if err != nil {
		return hermes.ScoreCompletedEvent{}, err
	}
	results, err := sc.ScoreBatch(req.Records)
	if err != nil {
		return hermes.ScoreCompletedEvent{}, err
	}
	return hermes.ScoreCompletedEvent{
		RequestID:  req.RequestID,
		ProfileID:  req.ProfileID,
		Results:    results,
		Ranking:    scoring.Rank(results),
		Frontier:   sc.ParetoFrontier(results),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Resolve returns the scorer for a stored profile id or an inline profile.
// Exactly one must be given.
func (b *Broker) Resolve(ctx context.Context, profileID string, inline *profile.Description) (*scoring.Scorer, error) {
	switch {
	case profileID != "" && inline != nil:
		return nil, fmt.Errorf("%w: give profile_id or profile, not both", ErrInvalidRequest)
	case profileID != "":
		id, err := uuid.Parse(profileID)
		if err != nil {
			return nil, fmt.Errorf("%w: profile_id: %w", ErrInvalidRequest, err)
		}
		return b.scorers.Get(ctx, id)
	case inline != nil:
		return b.scorers.Inline(*inline)
	default:
		return nil, fmt.Errorf("%w: profile_id or profile is required", ErrInvalidRequest)
	}
}

func (b *Broker) fail(msg hermes.Message, requestID string, err error) {
	b.failed.Add(1)
	reason := FailureReason(err)
	b.logger.Warn("score request failed", "request_id", requestID, "reason", reason, "error", err)
	if requestID == "" {
		requestID = "unknown"
	}
	b.publish(hermes.SubjectScoreFailed(requestID), msg.Reply, hermes.ScoreFailedEvent{
		RequestID: requestID,
		Reason:    reason,
		Error:     err.Error(),
	})
}

// publish sends evt on subject and, for request/reply callers, to reply.
func (b *Broker) publish(subject, reply string, evt interface{}) {
	if err := b.hermes.Publish(subject, evt); err != nil {
		b.logger.Error("failed to publish", "subject", subject, "error", err)
	}
	if reply != "" {
		if err := b.hermes.Publish(reply, evt); err != nil {
			b.logger.Error("failed to reply", "subject", reply, "error", err)
		}
	}
}

// FailureReason classifies a scoring failure for events and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrBatchTooLarge):
		return "batch_too_large"
	case errors.Is(err, ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, profile.ErrProfileInvalid):
		return "profile_invalid"
	case errors.Is(err, scoring.ErrMissingObjective):
		return "missing_objective"
	default:
		return "scoring_failed"
	}
}

func (b *Broker) handleProfileDeleted(msg hermes.Message) {
	parts := strings.Split(msg.Subject, ".")
	if len(parts) < 4 {
		return
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return
	}
	b.scorers.Evict(id)
	b.logger.Debug("evicted cached scorer", "profile_id", id)
}

func (b *Broker) statsLoop(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.StatsInterval())
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.hermes.Publish(hermes.SubjectStats, b.Stats()); err != nil {
				b.logger.Warn("failed to publish stats", "error", err)
			}
		}
	}
}

func (b *Broker) Stats() hermes.StatsEvent {
	return hermes.StatsEvent{
		Requests:       b.requests.Load(),
		Completed:      b.completed.Load(),
		Failed:         b.failed.Load(),
		CachedProfiles: b.scorers.Len(),
		Timestamp:      time.Now().UTC(),
	}
}
