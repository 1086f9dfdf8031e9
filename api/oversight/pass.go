// api/oversight/pass.go
package oversight

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/arbiter/api/audit"
	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/oracle"
)

// Notifier delivers a suspect flag to operators. Delivery is best-effort.
type Notifier interface {
	NotifyFlag(ctx context.Context, flag *model.Flag) error
}

type job struct {
	ectx          *model.EvaluationContext
	decision      *model.Decision
	correlationID string
}

// Config bounds the oversight pass.
type Config struct {
	Workers       int
	QueueSize     int
	Timeout       time.Duration
	MinConfidence float64
}

// Pass reviews decided requests asynchronously. It never blocks or alters the
// decision path: a full queue drops the newest job, and every reviewer
// failure degrades to a log line.
type Pass struct {
	reviewer oracle.Reviewer
	auditSvc audit.Service
	notifier Notifier
	cfg      Config

	queue   chan job
	wg      sync.WaitGroup
	dropped atomic.Int64
}

func NewPass(reviewer oracle.Reviewer, auditSvc audit.Service, notifier Notifier, cfg Config) *Pass {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Pass{
		reviewer: reviewer,
		auditSvc: auditSvc,
		notifier: notifier,
		cfg:      cfg,
		queue:    make(chan job, cfg.QueueSize),
	}
}

// Start launches the review workers. ctx cancellation stops in-flight reviews
// but queued jobs are still drained until Stop closes the queue.
func (p *Pass) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.queue {
				p.review(ctx, j)
			}
		}()
	}
}

// Submit enqueues a decided request for review. When the queue is full the
// job is dropped on the spot so the caller never waits.
func (p *Pass) Submit(ectx *model.EvaluationContext, decision *model.Decision, correlationID string) {
	select {
	case p.queue <- job{ectx: ectx, decision: decision, correlationID: correlationID}:
	default:
		p.dropped.Add(1)
		logger.Warn("Oversight review dropped",
			zap.Error(arbiter_errors.ErrOversightDegraded),
			zap.String("correlation_id", correlationID),
			zap.Int64("dropped_total", p.dropped.Load()))
	}
}

// Stop closes the queue and waits for workers to drain it.
func (p *Pass) Stop() {
	close(p.queue)
	p.wg.Wait()
}

// Dropped reports how many reviews were shed because the queue was full.
func (p *Pass) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Pass) review(ctx context.Context, j job) {
	reviewCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	resp, err := p.reviewer.Review(reviewCtx, &oracle.ReviewRequest{
		Context:  j.ectx,
		Decision: j.decision,
	})
	if err != nil {
		logger.Warn("Oversight review failed",
			zap.Error(err),
			zap.String("correlation_id", j.correlationID))
		return
	}

	verdict := model.Verdict(strings.ToUpper(resp.Verdict))
	suspect := verdict == model.VerdictSuspect
	rationale := resp.Rationale

	// A clean review of a decision the oracle itself was unsure about is
	// still worth a flag.
	if !suspect && j.decision.ConfidenceScore < p.cfg.MinConfidence {
		suspect = true
		rationale = "decision confidence below oversight threshold"
	}

	if !suspect {
		return
	}

	flag := &model.Flag{
		Verdict:       model.VerdictSuspect,
		Rationale:     rationale,
		Confidence:    resp.Confidence,
		CorrelationID: j.correlationID,
		ReviewedAt:    time.Now().UTC(),
	}

	if err := p.auditSvc.AttachFlag(reviewCtx, j.correlationID, flag); err != nil {
		logger.Error("Failed to attach oversight flag",
			zap.Error(err),
			zap.String("correlation_id", j.correlationID))
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyFlag(reviewCtx, flag); err != nil {
			logger.Warn("Oversight notification failed",
				zap.Error(err),
				zap.String("correlation_id", j.correlationID))
		}
	}
}
