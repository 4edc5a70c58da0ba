// Package viewstate models which console screen is active and which entity
// it is focused on. States are values: every transition returns a new State
// and leaves the receiver untouched when it fails.
package viewstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/AchilleasB/membership-console/internal/core/domain"
)

type Screen string

const (
	Home                   Screen = "home"
	AddRecord              Screen = "addRecord"
	FamilyDetails          Screen = "familyDetails"
	RecordDetails          Screen = "recordDetails"
	ManageSecondaryMembers Screen = "manageSecondaryMembers"
	AddVisit               Screen = "addVisit"
	MemberVisits           Screen = "memberVisits"
)

var (
	ErrInvalidTransition = errors.New("invalid screen transition")
	ErrMissingFocus      = errors.New("missing focus for screen")
)

// transitions lists the screens reachable from each screen.
var transitions = map[Screen][]Screen{
	Home:                   {Home, AddRecord, FamilyDetails},
	AddRecord:              {Home, FamilyDetails, ManageSecondaryMembers},
	FamilyDetails:          {Home, FamilyDetails, RecordDetails, ManageSecondaryMembers, AddVisit, MemberVisits},
	RecordDetails:          {Home, FamilyDetails},
	ManageSecondaryMembers: {FamilyDetails, ManageSecondaryMembers},
	AddVisit:               {FamilyDetails},
	MemberVisits:           {FamilyDetails, MemberVisits},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to Screen) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Focus holds the entity ids the active screen works on. Fields are only
// meaningful while their owning screen (or a screen stacked on it) is active.
type Focus struct {
	FamilyID        string           `json:"family_id,omitempty"`
	Record          domain.MemberKey `json:"record"`
	RecordIsPrimary bool             `json:"record_is_primary,omitempty"`
	AddVisitMember  domain.MemberKey `json:"add_visit_member"`
	VisitsMember    domain.MemberKey `json:"visits_member"`
	VisitsMemStart  time.Time        `json:"visits_mem_start"`
	CalendarMonth   domain.Month     `json:"calendar_month"`
}

type State struct {
	Screen Screen `json:"screen"`
	Focus  Focus  `json:"focus"`
}

// Initial is the state the console starts in.
func Initial() State {
	return State{Screen: Home}
}

func (s State) transition(to Screen, focus Focus) (State, error) {
	if !CanTransition(s.Screen, to) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Screen, to)
	}
	if err := validate(to, focus); err != nil {
		return s, err
	}
	return State{Screen: to, Focus: focus}, nil
}

func validate(to Screen, f Focus) error {
	switch to {
	case FamilyDetails, ManageSecondaryMembers:
		if f.FamilyID == "" {
			return fmt.Errorf("%w: %s needs a family id", ErrMissingFocus, to)
		}
	case RecordDetails:
		if f.Record.IsZero() {
			return fmt.Errorf("%w: %s needs family id, name and last name", ErrMissingFocus, to)
		}
	case AddVisit:
		if f.AddVisitMember.IsZero() {
			return fmt.Errorf("%w: %s needs a member", ErrMissingFocus, to)
		}
	case MemberVisits:
		if f.VisitsMember.IsZero() {
			return fmt.Errorf("%w: %s needs a member", ErrMissingFocus, to)
		}
	}
	return nil
}

// GoHome returns to the home screen and drops all focus.
func (s State) GoHome() (State, error) {
	return s.transition(Home, Focus{})
}

func (s State) EnterAddRecord() (State, error) {
	return s.transition(AddRecord, Focus{})
}

// CloseAddRecord abandons the add-record form.
func (s State) CloseAddRecord() (State, error) {
	if s.Screen != AddRecord {
		return s, fmt.Errorf("%w: close add record from %s", ErrInvalidTransition, s.Screen)
	}
	return s.GoHome()
}

// EnterFamily focuses familyID on the family details screen. Any focus owned
// by stacked screens is dropped.
func (s State) EnterFamily(familyID string) (State, error) {
	return s.transition(FamilyDetails, Focus{FamilyID: familyID})
}

// CloseFamily leaves family details for home and clears the family focus.
func (s State) CloseFamily() (State, error) {
	if s.Screen != FamilyDetails {
		return s, fmt.Errorf("%w: close family from %s", ErrInvalidTransition, s.Screen)
	}
	return s.GoHome()
}

// EnterRecord opens one member. The role is fixed for the life of the screen.
func (s State) EnterRecord(key domain.MemberKey, isPrimary bool) (State, error) {
	return s.transition(RecordDetails, Focus{
		FamilyID:        key.FamilyID,
		Record:          key,
		RecordIsPrimary: isPrimary,
	})
}

// CloseRecord returns to the record's family.
func (s State) CloseRecord() (State, error) {
	if s.Screen != RecordDetails {
		return s, fmt.Errorf("%w: close record from %s", ErrInvalidTransition, s.Screen)
	}
	return s.EnterFamily(s.Focus.Record.FamilyID)
}

func (s State) EnterManageSecondary(familyID string) (State, error) {
	return s.transition(ManageSecondaryMembers, Focus{FamilyID: familyID})
}

func (s State) CloseManageSecondary() (State, error) {
	if s.Screen != ManageSecondaryMembers {
		return s, fmt.Errorf("%w: close secondary members from %s", ErrInvalidTransition, s.Screen)
	}
	return s.EnterFamily(s.Focus.FamilyID)
}

func (s State) EnterAddVisit(member domain.MemberKey) (State, error) {
	return s.transition(AddVisit, Focus{FamilyID: member.FamilyID, AddVisitMember: member})
}

func (s State) CloseAddVisit() (State, error) {
	if s.Screen != AddVisit {
		return s, fmt.Errorf("%w: close add visit from %s", ErrInvalidTransition, s.Screen)
	}
	return s.EnterFamily(s.Focus.AddVisitMember.FamilyID)
}

// EnterMemberVisits opens the visit calendar of member on month. memStart is
// the family's membership start or the zero time when unknown.
func (s State) EnterMemberVisits(member domain.MemberKey, memStart time.Time, month domain.Month) (State, error) {
	return s.transition(MemberVisits, Focus{
		FamilyID:       member.FamilyID,
		VisitsMember:   member,
		VisitsMemStart: memStart,
		CalendarMonth:  month,
	})
}

// ShiftMonth moves the displayed calendar month by delta months.
func (s State) ShiftMonth(delta int) (State, error) {
	if s.Screen != MemberVisits {
		return s, fmt.Errorf("%w: change month from %s", ErrInvalidTransition, s.Screen)
	}
	f := s.Focus
	for ; delta < 0; delta++ {
		f.CalendarMonth = f.CalendarMonth.Prev()
	}
	for ; delta > 0; delta-- {
		f.CalendarMonth = f.CalendarMonth.Next()
	}
	return s.transition(MemberVisits, f)
}

func (s State) CloseMemberVisits() (State, error) {
	if s.Screen != MemberVisits {
		return s, fmt.Errorf("%w: close visits from %s", ErrInvalidTransition, s.Screen)
	}
	return s.EnterFamily(s.Focus.VisitsMember.FamilyID)
}
