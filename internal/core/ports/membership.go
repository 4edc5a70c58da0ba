package ports

import (
	"context"

	"github.com/AchilleasB/membership-console/internal/core/domain"
)

// AddRecordResult is the reply of POST /add_record.
type AddRecordResult struct {
	Message  string `json:"message"`
	MemberID string `json:"member_id"`
}

// MembershipAPI is the remote API that owns every member and visit record.
// Mutating calls return the API's confirmation message.
type MembershipAPI interface {
	FetchRecords(ctx context.Context) ([]domain.Member, error)
	VisitsTodayCount(ctx context.Context) (int, error)
	VisitsTodayGrouped(ctx context.Context) ([]domain.VisitorGroup, error)
	MemberVisits(ctx context.Context, member domain.MemberKey) ([]string, error)

	AddVisit(ctx context.Context, visit domain.Visit) (string, error)
	AddRecord(ctx context.Context, record domain.NewRecord) (AddRecordResult, error)
	AddSecondaryMember(ctx context.Context, member domain.NewSecondaryMember) (string, error)
	UpdateRecord(ctx context.Context, familyID string, update domain.RecordUpdate) (string, error)
	// DeleteRecord removes one secondary member when member is non-nil and the
	// whole family otherwise.
	DeleteRecord(ctx context.Context, familyID string, member *domain.MemberKey) (string, error)
	UpdateExpiredMemberships(ctx context.Context) (string, error)
	SendRenewalEmails(ctx context.Context) (string, error)
}

// RecordCache keeps the last fetched record listing.
type RecordCache interface {
	GetRecords(ctx context.Context) ([]domain.Member, bool, error)
	SetRecords(ctx context.Context, records []domain.Member) error
	Invalidate(ctx context.Context) error
}

// CacheInvalidator is implemented by MembershipAPI decorators that cache
// reads. An explicit refresh invalidates before fetching.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}
