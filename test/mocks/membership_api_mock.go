package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
)

// MockMembershipAPI implements ports.MembershipAPI in memory.
// Mutations only record the call; tests set Records to whatever the next
// fetch should return.
type MockMembershipAPI struct {
	mu sync.Mutex

	Records        []domain.Member
	VisitsToday    int
	TodaysVisitors []domain.VisitorGroup
	Visits         map[domain.MemberKey][]string
	AddRecordID    string

	// Error injection
	FetchError         error
	CountError         error
	GroupedError       error
	VisitsError        error
	AddVisitError      error
	AddRecordError     error
	AddSecondaryError  error
	UpdateError        error
	DeleteError        error
	ExpiryError        error
	RenewalEmailsError error
	// FailAddVisitAfter makes AddVisit fail once this many calls succeeded.
	// Zero disables it.
	FailAddVisitAfter int

	// Call tracking
	FetchCalls        int
	AddVisitCalls     []domain.Visit
	AddRecordCalls    []domain.NewRecord
	AddSecondaryCalls []domain.NewSecondaryMember
	UpdateCalls       []UpdateCall
	DeleteCalls       []DeleteCall
	ExpiryCalls       int
	RenewalEmailCalls int

	// Block, when set, is received from before every mutating call returns.
	Block chan struct{}
}

type UpdateCall struct {
	FamilyID string
	Update   domain.RecordUpdate
}

type DeleteCall struct {
	FamilyID string
	Member   *domain.MemberKey
}

var _ ports.MembershipAPI = (*MockMembershipAPI)(nil)

var ErrMockUnavailable = errors.New("membership api unavailable")

func NewMockMembershipAPI(records ...domain.Member) *MockMembershipAPI {
	return &MockMembershipAPI{
		Records:     records,
		Visits:      make(map[domain.MemberKey][]string),
		AddRecordID: "NewMe",
	}
}

func (m *MockMembershipAPI) wait(ctx context.Context) error {
	m.mu.Lock()
	block := m.Block
	m.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockMembershipAPI) FetchRecords(ctx context.Context) ([]domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	out := make([]domain.Member, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

func (m *MockMembershipAPI) VisitsTodayCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountError != nil {
		return 0, m.CountError
	}
	return m.VisitsToday, nil
}

func (m *MockMembershipAPI) VisitsTodayGrouped(ctx context.Context) ([]domain.VisitorGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GroupedError != nil {
		return nil, m.GroupedError
	}
	return m.TodaysVisitors, nil
}

func (m *MockMembershipAPI) MemberVisits(ctx context.Context, member domain.MemberKey) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VisitsError != nil {
		return nil, m.VisitsError
	}
	return m.Visits[member], nil
}

func (m *MockMembershipAPI) AddVisit(ctx context.Context, visit domain.Visit) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddVisitError != nil {
		return "", m.AddVisitError
	}
	if m.FailAddVisitAfter > 0 && len(m.AddVisitCalls) >= m.FailAddVisitAfter {
		return "", ErrMockUnavailable
	}
	m.AddVisitCalls = append(m.AddVisitCalls, visit)
	return "Visit added successfully", nil
}

func (m *MockMembershipAPI) AddRecord(ctx context.Context, record domain.NewRecord) (ports.AddRecordResult, error) {
	if err := m.wait(ctx); err != nil {
		return ports.AddRecordResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddRecordError != nil {
		return ports.AddRecordResult{}, m.AddRecordError
	}
	m.AddRecordCalls = append(m.AddRecordCalls, record)
	return ports.AddRecordResult{Message: "Record added successfully", MemberID: m.AddRecordID}, nil
}

func (m *MockMembershipAPI) AddSecondaryMember(ctx context.Context, member domain.NewSecondaryMember) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddSecondaryError != nil {
		return "", m.AddSecondaryError
	}
	m.AddSecondaryCalls = append(m.AddSecondaryCalls, member)
	return "Secondary member added successfully", nil
}

func (m *MockMembershipAPI) UpdateRecord(ctx context.Context, familyID string, update domain.RecordUpdate) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return "", m.UpdateError
	}
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{FamilyID: familyID, Update: update})
	return "Record updated successfully", nil
}

func (m *MockMembershipAPI) DeleteRecord(ctx context.Context, familyID string, member *domain.MemberKey) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return "", m.DeleteError
	}
	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{FamilyID: familyID, Member: member})
	return "Record deleted successfully", nil
}

func (m *MockMembershipAPI) UpdateExpiredMemberships(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExpiryCalls++
	if m.ExpiryError != nil {
		return "", m.ExpiryError
	}
	return "Expired memberships updated", nil
}

func (m *MockMembershipAPI) SendRenewalEmails(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RenewalEmailCalls++
	if m.RenewalEmailsError != nil {
		return "", m.RenewalEmailsError
	}
	return "Renewal emails sent", nil
}

// SetRecords replaces what the next FetchRecords returns.
func (m *MockMembershipAPI) SetRecords(records ...domain.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = records
}

// GetAddVisitCalls returns a copy of the recorded visits.
func (m *MockMembershipAPI) GetAddVisitCalls() []domain.Visit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Visit, len(m.AddVisitCalls))
	copy(out, m.AddVisitCalls)
	return out
}
