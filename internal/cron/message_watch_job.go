package cron

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
)

type leadFinder interface {
	FindByID(ctx context.Context, id string) (*models.Lead, error)
}

type LeadMessageWatchJobParams struct {
	Logger  *logger.Logger
	Leads   leadFinder
	Counts  CountStore
	LeadIDs []string
	Metrics *metrics.LeadMetrics
}

// NewLeadMessageWatchJob polls each watched lead and reports growth in its
// message thread. The first observation of a lead only records a baseline.
func NewLeadMessageWatchJob(params LeadMessageWatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Leads == nil {
		return nil, fmt.Errorf("lead repository required")
	}
	counts := params.Counts
	if counts == nil {
		counts = NewMemoryCountStore()
	}
	ids := make([]string, 0, len(params.LeadIDs))
	for _, id := range params.LeadIDs {
		if id = strings.ToUpper(strings.TrimSpace(id)); id != "" {
			ids = append(ids, id)
		}
	}
	return &leadMessageWatchJob{
		logg:    params.Logger,
		leads:   params.Leads,
		counts:  counts,
		ids:     ids,
		metrics: params.Metrics,
	}, nil
}

type leadMessageWatchJob struct {
	logg    *logger.Logger
	leads   leadFinder
	counts  CountStore
	ids     []string
	metrics *metrics.LeadMetrics
}

func (j *leadMessageWatchJob) Name() string { return "lead-message-watch" }

func (j *leadMessageWatchJob) Run(ctx context.Context) error {
	var errs error
	for _, id := range j.ids {
		if err := j.check(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errs
}

func (j *leadMessageWatchJob) check(ctx context.Context, id string) error {
	leadCtx := j.logg.WithLeadID(ctx, id)
	lead, err := j.leads.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			j.logg.Warn(leadCtx, "watched lead not found")
			return nil
		}
		return err
	}

	current := len(lead.Messages)
	previous, seen, err := j.counts.Load(ctx, id)
	if err != nil {
		return err
	}
	if seen && current <= previous {
		return nil
	}
	if seen {
		added := current - previous
		j.metrics.AddNewMessages(id, added)
		last := lead.Messages[current-1]
		j.logg.Info(j.logg.WithFields(leadCtx, map[string]any{
			"new_messages":  added,
			"message_count": current,
			"last_sender":   last.Sender,
		}), "new lead messages")
	}
	return j.counts.Save(ctx, id, current)
}
