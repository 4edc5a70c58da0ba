// Package views derives the JSON view models the renderer paints. Every
// function here is pure: it reads a Snapshot of the console state and
// recomputes classifications against the snapshot's clock.
package views

import (
	"time"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
)

type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageWarning MessageKind = "warning"
	MessageError   MessageKind = "error"
	MessageInfo    MessageKind = "info"
)

// Message is the transient notice shown after an action.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
}

type Search struct {
	Query           string `json:"query"`
	IncludeInactive bool   `json:"include_inactive"`
}

// Snapshot is everything a view is derived from.
type Snapshot struct {
	State          viewstate.State
	Records        []domain.Member
	Search         Search
	VisitsToday    int
	Visits         []time.Time
	TodaysVisitors []domain.VisitorGroup
	Draft          PreviewDraft
	Message        *Message
	Busy           bool
	Now            time.Time
	Location       *time.Location
}

type PreviewDraft struct {
	Name     string
	LastName string
}

// Console is the full view model for the active screen.
type Console struct {
	Screen         viewstate.Screen      `json:"screen"`
	Focus          viewstate.Focus       `json:"focus"`
	Counts         domain.Counts         `json:"counts"`
	Search         Search                `json:"search"`
	Busy           bool                  `json:"busy"`
	Message        *Message              `json:"message,omitempty"`
	TodaysVisitors []domain.VisitorGroup `json:"todays_visitors,omitempty"`

	Home      *HomeView      `json:"home,omitempty"`
	AddRecord *AddRecordView `json:"add_record,omitempty"`
	Family    *FamilyView    `json:"family,omitempty"`
	Record    *RecordView    `json:"record,omitempty"`
	Secondary *SecondaryView `json:"secondary,omitempty"`
	AddVisit  *AddVisitView  `json:"add_visit,omitempty"`
	Visits    *VisitsView    `json:"visits,omitempty"`
}

type HomeRow struct {
	MemberID       string                `json:"member_id"`
	Name           string                `json:"name"`
	LastName       string                `json:"last_name"`
	Expires        string                `json:"membership_expires"`
	Status         string                `json:"status"`
	Classification domain.Classification `json:"classification"`
}

type HomeView struct {
	Rows []HomeRow `json:"rows"`
}

type AddRecordView struct {
	PreviewMemberID string `json:"preview_member_id"`
}

// MemberCard summarizes one member inside a family listing.
type MemberCard struct {
	Key       domain.MemberKey `json:"key"`
	Name      string           `json:"name"`
	LastName  string           `json:"last_name"`
	IsPrimary bool             `json:"is_primary"`
	Phone     string           `json:"phone"`
	Birthday  string           `json:"birthday"`
	Gender    string           `json:"gender"`
}

type FamilyView struct {
	FamilyID       string                `json:"family_id"`
	Primary        MemberCard            `json:"primary"`
	Members        []MemberCard          `json:"members"`
	Email          string                `json:"email"`
	Address        string                `json:"address"`
	City           string                `json:"city"`
	State          string                `json:"state"`
	ZipCode        string                `json:"zip_code"`
	MemStartDate   string                `json:"mem_start_date"`
	Expires        string                `json:"membership_expires"`
	Status         string                `json:"status"`
	Classification domain.Classification `json:"classification"`
}

// RecordView pre-fills the record details form. Dates are in input format.
type RecordView struct {
	Key               domain.MemberKey     `json:"key"`
	IsPrimary         bool                 `json:"is_primary"`
	Values            viewstate.RecordForm `json:"values"`
	MembershipExpires string               `json:"membership_expires"`
	Editable          []domain.Field       `json:"editable"`
}

type SecondaryView struct {
	FamilyID    string       `json:"family_id"`
	PrimaryName string       `json:"primary_name"`
	Members     []MemberCard `json:"members"`
}

type AddVisitView struct {
	Member          domain.MemberKey `json:"member"`
	DisplayName     string           `json:"display_name"`
	DefaultDatetime string           `json:"default_datetime"`
}

type VisitsView struct {
	Member                domain.MemberKey      `json:"member"`
	DisplayName           string                `json:"display_name"`
	VisitsSinceMembership int                   `json:"visits_since_membership"`
	Calendar              domain.Calendar       `json:"calendar"`
	History               []domain.HistoryEntry `json:"history"`
}
