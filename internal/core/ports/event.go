package ports

import (
	"context"
	"time"
)

type ActivityType string

const (
	ActivityMemberAdded       ActivityType = "member.added"
	ActivityMemberUpdated     ActivityType = "member.updated"
	ActivityMemberDeleted     ActivityType = "member.deleted"
	ActivityFamilyDeleted     ActivityType = "family.deleted"
	ActivitySecondaryAdded    ActivityType = "secondary.added"
	ActivitySecondaryDeleted  ActivityType = "secondary.deleted"
	ActivityMembershipRenewed ActivityType = "membership.renewed"
	ActivityVisitRecorded     ActivityType = "visit.recorded"
	ActivityFamilyCheckedIn   ActivityType = "family.checked_in"
	ActivityRenewalEmailsSent ActivityType = "renewal_emails.sent"
	ActivityExpiryUpdated     ActivityType = "memberships.expiry_updated"
)

// ActivityEvent describes one successful change made through the console.
type ActivityEvent struct {
	ID         string       `json:"id"`
	Type       ActivityType `json:"type"`
	FamilyID   string       `json:"family_id,omitempty"`
	Name       string       `json:"name,omitempty"`
	LastName   string       `json:"last_name,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// ActivityRecorder stores activity events, typically in a transactional outbox.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, evt ActivityEvent) error
}

// ActivityPublisher delivers activity events to downstream consumers.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, evt ActivityEvent) error
}

// ChangeNotifier tells connected renderers that the console state changed.
type ChangeNotifier interface {
	NotifyChange(screen, action string)
}
