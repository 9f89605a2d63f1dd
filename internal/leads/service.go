package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox/payloads"
)

const (
	InitialSystemMessage = "New lead created via web form"
	maxCreateAttempts    = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes lead operations.
type Service interface {
	Create(ctx context.Context, req CreateLeadRequest) (*LeadDTO, error)
	Get(ctx context.Context, id string) (*LeadDTO, error)
	List(ctx context.Context, filter Filter) ([]LeadDTO, error)
	AppendMessage(ctx context.Context, id, message string) (*LeadDTO, error)
	SendFinalQuote(ctx context.Context, id, content string) (*LeadDTO, error)
	UpdateStatus(ctx context.Context, id string, status enums.LeadStatus) (*LeadDTO, error)
	Stats(ctx context.Context) (Stats, error)
	FollowUps(ctx context.Context) (FollowUps, error)
	SeedDemo(ctx context.Context) (int, error)
}

type ServiceParams struct {
	Repo    *Repository
	Tx      txRunner
	Outbox  eventEmitter
	Metrics *metrics.LeadMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    *Repository
	tx      txRunner
	outbox  eventEmitter
	metrics *metrics.LeadMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("lead repository required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox service required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateLeadRequest) (*LeadDTO, error) {
	if _, err := enums.ParseUrgency(string(req.Urgency)); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid urgency").
			WithDetails(map[string]string{"urgency": "must be one of emergency, urgent, soon, flexible"})
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		var created *models.Lead
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			count, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			now := s.now()
			lead := req.toModel(FormatID(count+1+int64(attempt)), now, models.LeadMessage{
				ID:        uuid.NewString(),
				Sender:    enums.SenderSystem,
				Message:   InitialSystemMessage,
				Timestamp: now,
			})
			if err := repo.Create(ctx, lead); err != nil {
				return err
			}
			created = lead
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventLeadCreated,
				AggregateType: enums.AggregateLead,
				AggregateID:   lead.ID,
				Actor:         &outbox.ActorRef{Role: string(enums.SenderCustomer)},
				OccurredAt:    now,
				Data: payloads.LeadCreatedEvent{
					LeadID:    lead.ID,
					FullName:  strings.TrimSpace(lead.FirstName + " " + lead.LastName),
					Phone:     lead.Phone,
					Vehicle:   strings.TrimSpace(lead.Make + " " + lead.Model),
					Urgency:   lead.Urgency,
					CreatedAt: lead.CreatedAt,
				},
			})
		})
		if err == nil {
			s.metrics.IncCreated()
			return FromModel(created), nil
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lead")
		}
		if _, findErr := s.repo.FindByPhone(ctx, strings.TrimSpace(req.Phone)); findErr == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a lead with this phone number already exists")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a lead id, please retry")
}

func (s *service) Get(ctx context.Context, id string) (*LeadDTO, error) {
	lead, err := s.repo.FindByID(ctx, normalizeID(id))
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(lead), nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]LeadDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}
	return Apply(FromModels(rows), filter), nil
}

// AppendMessage adds an owner message. Links are replaced with a placeholder
// so stale checkout URLs never reach the customer through free text.
func (s *service) AppendMessage(ctx context.Context, id, message string) (*LeadDTO, error) {
	clean := quotes.StripLinks(message)
	if clean == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required").
			WithDetails(map[string]string{"message": "must not be empty"})
	}
	return s.appendOwnerMessage(ctx, normalizeID(id), clean, false)
}

// SendFinalQuote appends the composed quote verbatim, links included, and
// moves a NEW lead to QUOTED.
func (s *service) SendFinalQuote(ctx context.Context, id, content string) (*LeadDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required").
			WithDetails(map[string]string{"message_content": "must not be empty"})
	}
	dto, err := s.appendOwnerMessage(ctx, normalizeID(id), content, true)
	if err != nil {
		return nil, err
	}
	s.metrics.IncQuoteSent()
	return dto, nil
}

func (s *service) appendOwnerMessage(ctx context.Context, id, text string, quote bool) (*LeadDTO, error) {
	var updated *models.Lead
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lead, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		msg := models.LeadMessage{
			ID:        uuid.NewString(),
			Sender:    enums.SenderOwner,
			Message:   text,
			Timestamp: now,
		}
		lead.Messages = lead.Messages.Append(msg)
		previous := lead.Status
		if quote && lead.Status == enums.LeadStatusNew {
			lead.Status = enums.LeadStatusQuoted
		}
		if err := repo.UpdateThread(ctx, lead); err != nil {
			return err
		}
		updated = lead

		events := []outbox.DomainEvent{{
			EventType: enums.EventLeadMessageAppended,
			Data: payloads.LeadMessageAppendedEvent{
				LeadID:       lead.ID,
				MessageID:    msg.ID,
				Sender:       msg.Sender,
				MessageCount: len(lead.Messages),
			},
		}}
		if quote {
			events = append(events, outbox.DomainEvent{
				EventType: enums.EventLeadQuoteSent,
				Data: payloads.LeadQuoteSentEvent{
					LeadID:         lead.ID,
					Phone:          lead.Phone,
					MessageContent: text,
				},
			})
		}
		if previous != lead.Status {
			events = append(events, statusChanged(lead.ID, previous, lead.Status))
		}
		return s.emitAll(ctx, tx, lead.ID, now, events)
	})
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(updated), nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status enums.LeadStatus) (*LeadDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
			WithDetails(map[string]string{"status": fmt.Sprintf("must be one of %v", enums.LeadStatuses())})
	}
	var updated *models.Lead
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lead, err := repo.FindByIDForUpdate(ctx, normalizeID(id))
		if err != nil {
			return err
		}
		updated = lead
		if lead.Status == status {
			return nil
		}
		previous := lead.Status
		lead.Status = status
		if err := repo.UpdateThread(ctx, lead); err != nil {
			return err
		}
		return s.emitAll(ctx, tx, lead.ID, s.now(), []outbox.DomainEvent{statusChanged(lead.ID, previous, status)})
	})
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(updated), nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(all, s.now()), nil
}

func (s *service) FollowUps(ctx context.Context) (FollowUps, error) {
	all, err := s.List(ctx, Filter{})
	if err != nil {
		return FollowUps{}, err
	}
	return BuildFollowUps(all, s.now()), nil
}

// SeedDemo inserts the demo leads when the table is empty and returns how many were written.
func (s *service) SeedDemo(ctx context.Context) (int, error) {
	inserted := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, lead := range DemoLeads(s.now()) {
			lead := lead
			if err := repo.Create(ctx, &lead); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed demo leads")
	}
	if inserted > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "count", inserted), "demo leads seeded")
	}
	return inserted, nil
}

func (s *service) emitAll(ctx context.Context, tx *gorm.DB, leadID string, at time.Time, events []outbox.DomainEvent) error {
	for _, event := range events {
		event.AggregateType = enums.AggregateLead
		event.AggregateID = leadID
		event.OccurredAt = at
		if event.Actor == nil {
			event.Actor = &outbox.ActorRef{Role: string(enums.SenderOwner)}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

func statusChanged(id string, from, to enums.LeadStatus) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType: enums.EventLeadStatusChanged,
		Data:      payloads.LeadStatusChangedEvent{LeadID: id, From: from, To: to},
	}
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func mapLookupError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lead storage")
}
