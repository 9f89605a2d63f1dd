package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
)

type fakeAPI struct {
	token      string
	listErrs   []error
	listCalls  int
	rows       []leads.LeadDTO
	addErr     error
	sent       []string
	snapshot   *leads.LeadDTO
	loginError error
}

func (f *fakeAPI) Login(_ context.Context, password string) (*auth.TokenResponse, error) {
	if f.loginError != nil {
		return nil, f.loginError
	}
	return &auth.TokenResponse{AccessToken: "token-for-" + password}, nil
}

func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) ListLeads(context.Context) ([]leads.LeadDTO, error) {
	f.listCalls++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return nil, err
	}
	return f.rows, nil
}

func (f *fakeAPI) GetLead(context.Context, string) (*leads.LeadDTO, error) {
	if f.snapshot == nil {
		return nil, errors.New("no snapshot")
	}
	lead := *f.snapshot
	return &lead, nil
}

func (f *fakeAPI) AddMessage(_ context.Context, id, message string) (*leads.LeadDTO, error) {
	f.sent = append(f.sent, message)
	if f.addErr != nil {
		return nil, f.addErr
	}
	for _, row := range f.rows {
		if row.ID == id {
			row.Messages = append(append([]leads.MessageDTO(nil), row.Messages...), leads.MessageDTO{
				ID:      "new",
				Sender:  enums.SenderOwner,
				Message: message,
			})
			return &row, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
}

var sessionNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, api *fakeAPI, demo bool) *Session {
	t.Helper()
	b := DefaultBackoff()
	b.sleep = func(context.Context, time.Duration) error { return nil }
	s, err := NewSession(SessionParams{
		API:          api,
		Backoff:      b,
		DemoFallback: demo,
		Now:          func() time.Time { return sessionNow },
	})
	require.NoError(t, err)
	return s
}

func TestAuthenticateStoresToken(t *testing.T) {
	api := &fakeAPI{}
	s := newTestSession(t, api, false)

	require.NoError(t, s.Authenticate(context.Background(), "pw"))
	require.Equal(t, "token-for-pw", api.token)

	err := s.Authenticate(context.Background(), " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBootstrapRetriesUntilSuccess(t *testing.T) {
	unavailable := pkgerrors.New(pkgerrors.CodeDependency, "down")
	api := &fakeAPI{
		listErrs: []error{unavailable, unavailable},
		rows:     leads.DemoLeadDTOs(sessionNow)[:2],
	}
	s := newTestSession(t, api, false)

	source, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceAPI, source)
	require.Equal(t, 3, api.listCalls)
	require.Len(t, s.View(leads.Filter{}), 2)
}

func TestBootstrapFallsBackToDemo(t *testing.T) {
	down := pkgerrors.New(pkgerrors.CodeDependency, "down")
	api := &fakeAPI{listErrs: []error{down, down, down, down, down}}

	s := newTestSession(t, api, true)
	source, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceDemo, source)
	require.Equal(t, 5, api.listCalls)
	require.Len(t, s.View(leads.Filter{}), 4)
	require.Equal(t, SourceDemo, s.Source())

	strict := newTestSession(t, &fakeAPI{listErrs: []error{down, down, down, down, down}}, false)
	_, err = strict.Bootstrap(context.Background())
	require.Error(t, err)
}

func TestSendMessageKeepsDraftOnFailure(t *testing.T) {
	api := &fakeAPI{rows: leads.DemoLeadDTOs(sessionNow), addErr: pkgerrors.New(pkgerrors.CodeDependency, "down")}
	s := newTestSession(t, api, false)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	s.SetDraft("gls-001", "Pay at https://pay.example.com/x today")
	_, err = s.SendMessage(context.Background(), "GLS-001")
	require.Error(t, err)
	require.Equal(t, "Pay at https://pay.example.com/x today", s.Draft("GLS-001"))
	require.Equal(t, []string{"Pay at [Payment Link] today"}, api.sent)
}

func TestSendMessageClearsDraftAndReplacesLead(t *testing.T) {
	api := &fakeAPI{rows: leads.DemoLeadDTOs(sessionNow)}
	s := newTestSession(t, api, false)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	s.SetDraft("GLS-001", "See you at 9")
	updated, err := s.SendMessage(context.Background(), "GLS-001")
	require.NoError(t, err)
	require.Len(t, updated.Messages, 2)
	require.Empty(t, s.Draft("GLS-001"))

	local, ok := s.Lead("GLS-001")
	require.True(t, ok)
	require.Len(t, local.Messages, 2)

	_, err = s.SendMessage(context.Background(), "GLS-001")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestApplySnapshotRefusesFewerMessages(t *testing.T) {
	api := &fakeAPI{rows: leads.DemoLeadDTOs(sessionNow)}
	s := newTestSession(t, api, false)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	stale, _ := s.Lead("GLS-004")
	stale.Messages = stale.Messages[:1]
	require.False(t, s.ApplySnapshot(stale))
	kept, _ := s.Lead("GLS-004")
	require.Len(t, kept.Messages, 3)

	fresh := kept
	fresh.Status = enums.LeadStatusCompleted
	require.True(t, s.ApplySnapshot(fresh))
	got, _ := s.Lead("GLS-004")
	require.Equal(t, enums.LeadStatusCompleted, got.Status)
}

func TestPollOnceReportsNewMessages(t *testing.T) {
	rows := leads.DemoLeadDTOs(sessionNow)
	api := &fakeAPI{rows: rows}
	s := newTestSession(t, api, false)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	grown := rows[1]
	grown.Messages = append(append([]leads.MessageDTO(nil), grown.Messages...), leads.MessageDTO{ID: "x", Sender: enums.SenderCustomer, Message: "Sounds good"})
	api.snapshot = &grown

	var added []int
	s.pollOnce(context.Background(), "GLS-002", func(_ leads.LeadDTO, n int) { added = append(added, n) })
	s.pollOnce(context.Background(), "GLS-002", func(_ leads.LeadDTO, n int) { added = append(added, n) })
	require.Equal(t, []int{1}, added)
}

func TestPollOnceLeavesLoadedLeadUntilPulled(t *testing.T) {
	rows := leads.DemoLeadDTOs(sessionNow)
	api := &fakeAPI{rows: rows}
	s := newTestSession(t, api, false)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	before, _ := s.Lead("GLS-002")

	grown := rows[1]
	grown.Messages = append(append([]leads.MessageDTO(nil), grown.Messages...), leads.MessageDTO{ID: "x", Sender: enums.SenderCustomer, Message: "Any update?"})
	api.snapshot = &grown

	s.pollOnce(context.Background(), "GLS-002", nil)
	shown, _ := s.Lead("GLS-002")
	require.Len(t, shown.Messages, len(before.Messages))
	held, ok := s.Pending("GLS-002")
	require.True(t, ok)
	require.Len(t, held.Messages, len(before.Messages)+1)

	require.True(t, s.Pull("gls-002"))
	shown, _ = s.Lead("GLS-002")
	require.Len(t, shown.Messages, len(before.Messages)+1)
	_, ok = s.Pending("GLS-002")
	require.False(t, ok)
	require.False(t, s.Pull("GLS-002"))
}

func TestBootstrapStopsRetryingWhenUnauthorized(t *testing.T) {
	denied := pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")
	api := &fakeAPI{listErrs: []error{denied, denied, denied, denied, denied}}
	s := newTestSession(t, api, true)

	_, err := s.Bootstrap(context.Background())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	require.Equal(t, 1, api.listCalls)
	require.Empty(t, s.View(leads.Filter{}))
}

func TestViewAndCounters(t *testing.T) {
	api := &fakeAPI{rows: leads.DemoLeadDTOs(sessionNow)}
	s := newTestSession(t, api, false)
	_, err := s.Bootstrap(context.Background())
	require.NoError(t, err)

	hot := s.View(leads.Filter{Sort: enums.LeadSortUrgency})
	require.Equal(t, "GLS-003", hot[0].ID)
	require.Equal(t, 4, s.Stats().Total)
	require.Len(t, s.FollowUps().Urgent, 2)
}
