package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox/payloads"
)

const (
	defaultOverdueAfter = 24 * time.Hour
	overdueBatchSize    = 100
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quotedLeadLister interface {
	ListQuotedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Lead, error)
}

type onceEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

type QuoteOverdueJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Leads        quotedLeadLister
	Outbox       onceEmitter
	Metrics      *metrics.LeadMetrics
	OverdueAfter time.Duration
}

// NewQuoteOverdueJob flags QUOTED leads older than the threshold. Each lead is
// flagged at most once.
func NewQuoteOverdueJob(params QuoteOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Leads == nil {
		return nil, fmt.Errorf("lead repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	after := params.OverdueAfter
	if after <= 0 {
		after = defaultOverdueAfter
	}
	return &quoteOverdueJob{
		logg:    params.Logger,
		db:      params.DB,
		leads:   params.Leads,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		after:   after,
		now:     time.Now,
	}, nil
}

type quoteOverdueJob struct {
	logg    *logger.Logger
	db      txRunner
	leads   quotedLeadLister
	outbox  onceEmitter
	metrics *metrics.LeadMetrics
	after   time.Duration
	now     func() time.Time
}

func (j *quoteOverdueJob) Name() string { return "quote-overdue" }

func (j *quoteOverdueJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.after)
	rows, err := j.leads.ListQuotedBefore(ctx, cutoff, overdueBatchSize)
	if err != nil {
		return fmt.Errorf("list quoted leads: %w", err)
	}

	flagged := 0
	for _, lead := range rows {
		var emitted bool
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			emitted, err = j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventLeadQuoteOverdue,
				AggregateType: enums.AggregateLead,
				AggregateID:   lead.ID,
				Actor:         &outbox.ActorRef{Role: string(enums.SenderSystem)},
				OccurredAt:    now,
				Data: payloads.LeadQuoteOverdueEvent{
					LeadID:     lead.ID,
					QuotedAt:   lead.CreatedAt,
					Age:        now.Sub(lead.CreatedAt),
					DetectedAt: now,
				},
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("flag %s: %w", lead.ID, err)
		}
		if emitted {
			flagged++
			j.logg.Info(j.logg.WithLeadID(ctx, lead.ID), "quote overdue")
		}
	}
	j.metrics.AddOverdue(flagged)

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"checked": len(rows),
		"flagged": flagged,
	}), "quote overdue scan complete")
	return nil
}
