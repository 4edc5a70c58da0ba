package viewstate

import "github.com/AchilleasB/membership-console/internal/core/domain"

// Action is a user command dispatched to the console. Each concrete type
// names one interaction of the console screens.
type Action interface {
	ActionType() string
}

// RecordForm carries the values of the record details form. Only the fields
// the focused role may edit are sent to the API.
type RecordForm struct {
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	Birthday       string `json:"birthday"`
	Gender         *bool  `json:"gender"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	ZipCode        string `json:"zip_code"`
	FoundingFamily bool   `json:"founding_family"`
	MemStartDate   string `json:"mem_start_date"`
	ActiveFlag     bool   `json:"active_flag"`
}

type (
	RefreshData              struct{}
	UpdateExpiredMemberships struct{}
	SendRenewalEmails        struct{}
	ShowTodaysVisitors       struct{}
	DismissTodaysVisitors    struct{}

	SetSearch struct {
		Query           string
		IncludeInactive bool
	}

	OpenAddRecord   struct{}
	CancelAddRecord struct{}
	// PreviewMemberID updates the family id preview while the form is filled.
	PreviewMemberID struct {
		Name     string
		LastName string
	}
	SubmitAddRecord struct {
		Record domain.NewRecord
	}

	OpenFamily struct {
		FamilyID string
	}
	CloseFamily     struct{}
	RenewMembership struct{}
	CheckInFamily   struct {
		FamilyID string
		People   int
	}

	OpenRecord struct {
		Member domain.MemberKey
	}
	SaveRecord struct {
		Form RecordForm
	}
	DeleteRecord struct{}
	CloseRecord  struct{}

	OpenManageSecondary struct{}
	AddSecondaryMember  struct {
		Name     string
		LastName string
		Phone    string
		Birthday string
		Gender   *bool
	}
	DeleteSecondaryMember struct {
		Name     string
		LastName string
	}
	CloseManageSecondary struct{}

	OpenAddVisit struct {
		Member domain.MemberKey
	}
	SubmitVisit struct {
		// VisitDatetime is a datetime-local value, YYYY-MM-DDTHH:MM.
		VisitDatetime string
	}
	CancelAddVisit struct{}

	OpenMemberVisits struct {
		Member domain.MemberKey
	}
	PrevMonth         struct{}
	NextMonth         struct{}
	CloseMemberVisits struct{}
)

func (RefreshData) ActionType() string              { return "refresh_data" }
func (UpdateExpiredMemberships) ActionType() string { return "update_expired_memberships" }
func (SendRenewalEmails) ActionType() string        { return "send_renewal_emails" }
func (ShowTodaysVisitors) ActionType() string       { return "show_todays_visitors" }
func (DismissTodaysVisitors) ActionType() string    { return "dismiss_todays_visitors" }
func (SetSearch) ActionType() string                { return "set_search" }
func (OpenAddRecord) ActionType() string            { return "open_add_record" }
func (CancelAddRecord) ActionType() string          { return "cancel_add_record" }
func (PreviewMemberID) ActionType() string          { return "preview_member_id" }
func (SubmitAddRecord) ActionType() string          { return "submit_add_record" }
func (OpenFamily) ActionType() string               { return "open_family" }
func (CloseFamily) ActionType() string              { return "close_family" }
func (RenewMembership) ActionType() string          { return "renew_membership" }
func (CheckInFamily) ActionType() string            { return "check_in_family" }
func (OpenRecord) ActionType() string               { return "open_record" }
func (SaveRecord) ActionType() string               { return "save_record" }
func (DeleteRecord) ActionType() string             { return "delete_record" }
func (CloseRecord) ActionType() string              { return "close_record" }
func (OpenManageSecondary) ActionType() string      { return "open_manage_secondary" }
func (AddSecondaryMember) ActionType() string       { return "add_secondary_member" }
func (DeleteSecondaryMember) ActionType() string    { return "delete_secondary_member" }
func (CloseManageSecondary) ActionType() string     { return "close_manage_secondary" }
func (OpenAddVisit) ActionType() string             { return "open_add_visit" }
func (SubmitVisit) ActionType() string              { return "submit_visit" }
func (CancelAddVisit) ActionType() string           { return "cancel_add_visit" }
func (OpenMemberVisits) ActionType() string         { return "open_member_visits" }
func (PrevMonth) ActionType() string                { return "prev_month" }
func (NextMonth) ActionType() string                { return "next_month" }
func (CloseMemberVisits) ActionType() string        { return "close_member_visits" }
