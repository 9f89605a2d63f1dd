package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
)

const defaultPollInterval = 15 * time.Second

// Source reports where the session's leads came from.
type Source string

const (
	SourceAPI  Source = "api"
	SourceDemo Source = "demo"
)

type leadAPI interface {
	Login(ctx context.Context, password string) (*auth.TokenResponse, error)
	SetToken(token string)
	ListLeads(ctx context.Context) ([]leads.LeadDTO, error)
	GetLead(ctx context.Context, id string) (*leads.LeadDTO, error)
	AddMessage(ctx context.Context, id, message string) (*leads.LeadDTO, error)
}

type SessionParams struct {
	API          leadAPI
	Backoff      Backoff
	DemoFallback bool
	PollInterval time.Duration
	Logger       *logger.Logger
	Now          func() time.Time
}

// Session is the owner's local view of the pipeline: the loaded leads, the
// compose drafts and the auth token.
type Session struct {
	api          leadAPI
	backoff      Backoff
	demoFallback bool
	pollInterval time.Duration
	logg         *logger.Logger
	now          func() time.Time

	mu      sync.RWMutex
	leads   []leads.LeadDTO
	drafts  map[string]string
	pending map[string]leads.LeadDTO
	source  Source
}

func NewSession(params SessionParams) (*Session, error) {
	if params.API == nil {
		return nil, errors.New("api client required")
	}
	b := params.Backoff
	if b.Attempts <= 0 {
		b = DefaultBackoff()
	}
	poll := params.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		api:          params.API,
		backoff:      b,
		demoFallback: params.DemoFallback,
		pollInterval: poll,
		logg:         params.Logger,
		now:          now,
		drafts:       map[string]string{},
		pending:      map[string]leads.LeadDTO{},
	}, nil
}

// Authenticate exchanges the owner password for a bearer token.
func (s *Session) Authenticate(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	tokens, err := s.api.Login(ctx, password)
	if err != nil {
		return err
	}
	s.api.SetToken(tokens.AccessToken)
	return nil
}

// Bootstrap loads every lead, retrying with backoff. When all attempts fail
// and the demo fallback is on, the demo leads are loaded instead.
func (s *Session) Bootstrap(ctx context.Context) (Source, error) {
	var loaded []leads.LeadDTO
	err := s.backoff.Retry(ctx, func(ctx context.Context) error {
		rows, err := s.api.ListLeads(ctx)
		if err != nil {
			s.warn(ctx, "lead fetch failed", err)
			if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				return Stop(err)
			}
			return err
		}
		loaded = rows
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) || !s.demoFallback {
			return "", err
		}
		s.warn(ctx, "using demo leads", err)
		s.replaceAll(leads.DemoLeadDTOs(s.now()), SourceDemo)
		return SourceDemo, nil
	}
	s.replaceAll(loaded, SourceAPI)
	return SourceAPI, nil
}

// View applies the list pipeline to the loaded leads.
func (s *Session) View(filter leads.Filter) []leads.LeadDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leads.Apply(s.leads, filter)
}

// Lead returns a copy of the loaded lead.
func (s *Session) Lead(id string) (leads.LeadDTO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.leads[i], true
	}
	return leads.LeadDTO{}, false
}

func (s *Session) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// FollowUps and Stats are computed over the loaded leads.
func (s *Session) FollowUps() leads.FollowUps {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leads.BuildFollowUps(s.leads, s.now())
}

func (s *Session) Stats() leads.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leads.ComputeStats(s.leads, s.now())
}

func (s *Session) SetDraft(leadID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[normalizeID(leadID)] = text
}

func (s *Session) Draft(leadID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts[normalizeID(leadID)]
}

// SendMessage posts the lead's draft with links replaced. The draft is
// cleared only when the server accepted the message.
func (s *Session) SendMessage(ctx context.Context, leadID string) (*leads.LeadDTO, error) {
	id := normalizeID(leadID)
	text := quotes.StripLinks(s.Draft(id))
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	updated, err := s.api.AddMessage(ctx, id, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, id)
	if held, ok := s.pending[id]; ok && len(held.Messages) <= len(updated.Messages) {
		delete(s.pending, id)
	}
	s.upsert(*updated)
	s.mu.Unlock()
	return updated, nil
}

// ApplySnapshot replaces the local copy of a lead unless the snapshot has
// fewer messages than what is already shown. It reports whether it applied.
func (s *Session) ApplySnapshot(snapshot leads.LeadDTO) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(snapshot.ID); i >= 0 && len(snapshot.Messages) < len(s.leads[i].Messages) {
		return false
	}
	s.upsert(snapshot)
	return true
}

// Watch polls one lead until ctx ends. When the thread grows, the snapshot is
// held as pending and onNew receives it with the number of new messages; the
// loaded lead stays as it is until Pull. A lead that was not loaded yet only
// sets the baseline on its first poll.
func (s *Session) Watch(ctx context.Context, leadID string, onNew func(leads.LeadDTO, int)) error {
	id := normalizeID(leadID)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pollOnce(ctx, id, onNew)
		}
	}
}

func (s *Session) pollOnce(ctx context.Context, id string, onNew func(leads.LeadDTO, int)) {
	snapshot, err := s.api.GetLead(ctx, id)
	if err != nil {
		s.warn(ctx, "lead poll failed", err)
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.upsert(*snapshot)
		s.mu.Unlock()
		return
	}
	seen := len(s.leads[i].Messages)
	if held, ok := s.pending[id]; ok && len(held.Messages) > seen {
		seen = len(held.Messages)
	}
	added := len(snapshot.Messages) - seen
	if added > 0 {
		s.pending[id] = *snapshot
	}
	s.mu.Unlock()

	if added > 0 && onNew != nil {
		onNew(*snapshot, added)
	}
}

// Pending returns the newest polled snapshot not pulled into view yet.
func (s *Session) Pending(leadID string) (leads.LeadDTO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.pending[normalizeID(leadID)]
	return lead, ok
}

// Pull moves the pending snapshot of a lead into view. It reports false when
// nothing was pending or the snapshot is older than what is shown.
func (s *Session) Pull(leadID string) bool {
	id := normalizeID(leadID)
	s.mu.Lock()
	snapshot, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.ApplySnapshot(snapshot)
}

func (s *Session) replaceAll(rows []leads.LeadDTO, source Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append([]leads.LeadDTO(nil), rows...)
	s.source = source
}

// upsert expects s.mu to be held.
func (s *Session) upsert(lead leads.LeadDTO) {
	if i := s.indexOf(lead.ID); i >= 0 {
		s.leads[i] = lead
		return
	}
	s.leads = append(s.leads, lead)
}

func (s *Session) indexOf(id string) int {
	id = normalizeID(id)
	for i := range s.leads {
		if strings.EqualFold(s.leads[i].ID, id) {
			return i
		}
	}
	return -1
}

func (s *Session) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
