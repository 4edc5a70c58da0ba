package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/internal/core/views"
	"github.com/google/uuid"
)

var (
	ErrBusy           = errors.New("a submission from this form is already in progress")
	ErrValidation     = errors.New("invalid input")
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownAction  = errors.New("unknown action")
)

// Form guards. A form accepts one submission at a time.
const (
	formRefresh       = "refresh"
	formAddRecord     = "addRecord"
	formFamily        = "familyDetails"
	formRecord        = "recordDetails"
	formSecondary     = "manageSecondaryMembers"
	formAddVisit      = "addVisit"
	formVisits        = "memberVisits"
	formCheckIn       = "checkIn"
	formRenewalEmails = "renewalEmails"
	formExpiry        = "expiryUpdate"
	formTodays        = "todaysVisitors"
)

// ConsoleService is the single owner of the console state. Remote calls run
// outside the lock; the record listing is replaced wholesale after every
// mutation.
type ConsoleService struct {
	api      ports.MembershipAPI
	activity ports.ActivityRecorder
	notifier ports.ChangeNotifier
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time

	mu             sync.Mutex
	state          viewstate.State
	records        []domain.Member
	search         views.Search
	visitsToday    int
	visits         []time.Time
	todaysVisitors []domain.VisitorGroup
	draft          views.PreviewDraft
	message        *views.Message
	busy           int
	inFlight       map[string]bool
}

var _ ports.ConsoleService = (*ConsoleService)(nil)

type Option func(*ConsoleService)

// WithActivityRecorder records an activity event after each successful change.
func WithActivityRecorder(r ports.ActivityRecorder) Option {
	return func(s *ConsoleService) { s.activity = r }
}

// WithNotifier announces every state change to connected renderers.
func WithNotifier(n ports.ChangeNotifier) Option {
	return func(s *ConsoleService) { s.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ConsoleService) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ConsoleService) { s.logger = l }
}

func NewConsoleService(api ports.MembershipAPI, loc *time.Location, opts ...Option) *ConsoleService {
	if loc == nil {
		loc = time.Local
	}
	s := &ConsoleService{
		api:      api,
		loc:      loc,
		now:      time.Now,
		logger:   slog.Default(),
		state:    viewstate.Initial(),
		inFlight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "console")
	return s
}

// Current returns the view of the active screen.
func (s *ConsoleService) Current() views.Console {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *ConsoleService) viewLocked() views.Console {
	return views.Build(views.Snapshot{
		State:          s.state,
		Records:        s.records,
		Search:         s.search,
		VisitsToday:    s.visitsToday,
		Visits:         s.visits,
		TodaysVisitors: s.todaysVisitors,
		Draft:          s.draft,
		Message:        s.message,
		Busy:           s.busy > 0,
		Now:            s.now(),
		Location:       s.loc,
	})
}

// Dispatch applies one action. The returned view reflects the state after
// the action whether or not it failed.
func (s *ConsoleService) Dispatch(ctx context.Context, action viewstate.Action) (views.Console, error) {
	start := time.Now()
	err := s.apply(ctx, action)
	observeAction(action.ActionType(), err, time.Since(start))

	if err != nil && !errors.Is(err, ErrBusy) {
		s.logger.Warn("action failed", "action", action.ActionType(), "error", err)
	}

	s.mu.Lock()
	view := s.viewLocked()
	s.mu.Unlock()

	if s.notifier != nil && !errors.Is(err, ErrBusy) {
		s.notifier.NotifyChange(string(view.Screen), action.ActionType())
	}
	return view, err
}

func (s *ConsoleService) apply(ctx context.Context, action viewstate.Action) error {
	switch a := action.(type) {
	case viewstate.RefreshData:
		return s.refresh(ctx)
	case viewstate.UpdateExpiredMemberships:
		return s.updateExpiredMemberships(ctx)
	case viewstate.SendRenewalEmails:
		return s.sendRenewalEmails(ctx)
	case viewstate.ShowTodaysVisitors:
		return s.showTodaysVisitors(ctx)
	case viewstate.DismissTodaysVisitors:
		s.mu.Lock()
		s.todaysVisitors = nil
		s.mu.Unlock()
		return nil
	case viewstate.SetSearch:
		s.mu.Lock()
		s.search = views.Search{Query: a.Query, IncludeInactive: a.IncludeInactive}
		s.mu.Unlock()
		return nil

	case viewstate.OpenAddRecord:
		return s.navigate(func(st viewstate.State) (viewstate.State, error) {
			s.draft = views.PreviewDraft{}
			return st.EnterAddRecord()
		})
	case viewstate.CancelAddRecord:
		return s.navigate(viewstate.State.CloseAddRecord)
	case viewstate.PreviewMemberID:
		s.mu.Lock()
		s.draft = views.PreviewDraft{Name: a.Name, LastName: a.LastName}
		s.mu.Unlock()
		return nil
	case viewstate.SubmitAddRecord:
		return s.submitAddRecord(ctx, a)

	case viewstate.OpenFamily:
		return s.openFamily(a.FamilyID)
	case viewstate.CloseFamily:
		return s.navigate(viewstate.State.CloseFamily)
	case viewstate.RenewMembership:
		return s.renewMembership(ctx)
	case viewstate.CheckInFamily:
		return s.checkInFamily(ctx, a)

	case viewstate.OpenRecord:
		return s.openRecord(a.Member)
	case viewstate.SaveRecord:
		return s.saveRecord(ctx, a.Form)
	case viewstate.DeleteRecord:
		return s.deleteRecord(ctx)
	case viewstate.CloseRecord:
		return s.navigate(viewstate.State.CloseRecord)

	case viewstate.OpenManageSecondary:
		return s.navigate(func(st viewstate.State) (viewstate.State, error) {
			return st.EnterManageSecondary(st.Focus.FamilyID)
		})
	case viewstate.AddSecondaryMember:
		return s.addSecondaryMember(ctx, a)
	case viewstate.DeleteSecondaryMember:
		return s.deleteSecondaryMember(ctx, a)
	case viewstate.CloseManageSecondary:
		return s.navigate(viewstate.State.CloseManageSecondary)

	case viewstate.OpenAddVisit:
		return s.openAddVisit(a.Member)
	case viewstate.SubmitVisit:
		return s.submitVisit(ctx, a)
	case viewstate.CancelAddVisit:
		return s.navigate(viewstate.State.CloseAddVisit)

	case viewstate.OpenMemberVisits:
		return s.openMemberVisits(ctx, a.Member)
	case viewstate.PrevMonth:
		return s.navigate(func(st viewstate.State) (viewstate.State, error) { return st.ShiftMonth(-1) })
	case viewstate.NextMonth:
		return s.navigate(func(st viewstate.State) (viewstate.State, error) { return st.ShiftMonth(1) })
	case viewstate.CloseMemberVisits:
		return s.navigate(func(st viewstate.State) (viewstate.State, error) {
			next, err := st.CloseMemberVisits()
			if err == nil {
				s.visits = nil
			}
			return next, err
		})
	}
	return fmt.Errorf("%w: %T", ErrUnknownAction, action)
}

// navigate runs a local transition under the lock. On failure the state is
// kept and the error becomes the current message.
func (s *ConsoleService) navigate(step func(viewstate.State) (viewstate.State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := step(s.state)
	if err != nil {
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	s.state = next
	return nil
}

// acquire claims form for one submission and raises the busy indicator. The
// returned release must run when the submission ends.
func (s *ConsoleService) acquire(form string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[form] {
		return nil, fmt.Errorf("%w: %s", ErrBusy, form)
	}
	s.inFlight[form] = true
	s.busy++
	setBusyGauge(s.busy)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inFlight, form)
		s.busy--
		setBusyGauge(s.busy)
	}, nil
}

func (s *ConsoleService) snapshotState() (viewstate.State, []domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.records
}

func (s *ConsoleService) setMessage(kind views.MessageKind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMessageLocked(kind, text)
}

func (s *ConsoleService) setMessageLocked(kind views.MessageKind, text string) {
	s.message = &views.Message{Kind: kind, Text: text}
}

// fail reports a failed remote call and leaves the view-state as it was.
func (s *ConsoleService) fail(prefix string, err error) error {
	s.setMessage(views.MessageError, fmt.Sprintf("%s: %v", prefix, err))
	return err
}

// reload fetches the full listing and today's visit count. A failing count
// is logged and leaves the previous count in place.
func (s *ConsoleService) reload(ctx context.Context) ([]domain.Member, int, error) {
	records, err := s.api.FetchRecords(ctx)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	count := s.visitsToday
	s.mu.Unlock()
	if n, err := s.api.VisitsTodayCount(ctx); err != nil {
		s.logger.Warn("fetching today's visit count failed", "error", err)
	} else {
		count = n
	}
	return records, count, nil
}

// commit reloads the listing after a successful mutation and then applies
// the forward transition. If the reload fails the state stays put.
func (s *ConsoleService) commit(ctx context.Context, kind views.MessageKind, text string, step func(viewstate.State) (viewstate.State, error)) error {
	records, count, err := s.reload(ctx)
	if err != nil {
		return s.fail(text+" Refreshing data failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.visitsToday = count
	s.setMessageLocked(kind, text)
	if step == nil {
		return nil
	}
	next, err := step(s.state)
	if err != nil {
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	s.state = next
	return nil
}

func (s *ConsoleService) record(ctx context.Context, evt ports.ActivityEvent) {
	if s.activity == nil {
		return
	}
	evt.ID = uuid.NewString()
	evt.OccurredAt = s.now().UTC()
	if err := s.activity.RecordActivity(ctx, evt); err != nil {
		s.logger.Error("recording activity failed", "type", evt.Type, "error", err)
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
