package views

import (
	"strings"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
)

const foundingFamilyLabel = "Founding Family"

// Build derives the view model of the active screen. Screens whose focused
// records vanished after a reload render without their section; the service
// reports that case before it gets here.
func Build(s Snapshot) Console {
	counts := domain.CountActive(s.Records)
	counts.VisitsToday = s.VisitsToday

	c := Console{
		Screen:         s.State.Screen,
		Focus:          s.State.Focus,
		Counts:         counts,
		Search:         s.Search,
		Busy:           s.Busy,
		Message:        s.Message,
		TodaysVisitors: s.TodaysVisitors,
	}

	switch s.State.Screen {
	case viewstate.Home:
		c.Home = BuildHome(s)
	case viewstate.AddRecord:
		c.AddRecord = &AddRecordView{PreviewMemberID: domain.PreviewMemberID(s.Draft.Name, s.Draft.LastName)}
	case viewstate.FamilyDetails:
		c.Family = BuildFamily(s, s.State.Focus.FamilyID)
	case viewstate.RecordDetails:
		c.Record = BuildRecord(s)
	case viewstate.ManageSecondaryMembers:
		c.Secondary = BuildSecondary(s)
	case viewstate.AddVisit:
		c.AddVisit = BuildAddVisit(s)
	case viewstate.MemberVisits:
		c.Visits = BuildVisits(s)
	}
	return c
}

// BuildHome lists the filtered primary members with their status flags.
func BuildHome(s Snapshot) *HomeView {
	today := domain.Today(s.Now)
	primaries := domain.FilterFamilies(s.Records, s.Search.Query, s.Search.IncludeInactive)

	rows := make([]HomeRow, 0, len(primaries))
	for _, p := range primaries {
		family := domain.FamilyMembers(s.Records, p.MemberID)
		rows = append(rows, HomeRow{
			MemberID:       p.MemberID,
			Name:           p.Name,
			LastName:       p.LastName,
			Expires:        expiresLabel(p),
			Status:         domain.ActiveLabel(p, today),
			Classification: domain.Classify(p, family, today),
		})
	}
	return &HomeView{Rows: rows}
}

// BuildFamily returns nil when the family has no primary member.
func BuildFamily(s Snapshot, familyID string) *FamilyView {
	members := domain.FamilyMembers(s.Records, familyID)
	primary, ok := domain.PrimaryOf(members, familyID)
	if !ok {
		return nil
	}
	today := domain.Today(s.Now)

	sorted := domain.SortFamilyMembers(members)
	cards := make([]MemberCard, 0, len(sorted))
	for _, m := range sorted {
		cards = append(cards, card(m))
	}

	return &FamilyView{
		FamilyID:       familyID,
		Primary:        card(primary),
		Members:        cards,
		Email:          orNA(primary.Email),
		Address:        orNA(primary.Address),
		City:           orNA(primary.City),
		State:          orNA(primary.State),
		ZipCode:        orNA(primary.ZipCode),
		MemStartDate:   domain.DisplayDate(primary.MemStartDate),
		Expires:        expiresLabel(primary),
		Status:         domain.ActiveLabel(primary, today),
		Classification: domain.Classify(primary, members, today),
	}
}

func BuildRecord(s Snapshot) *RecordView {
	key := s.State.Focus.Record
	m, ok := domain.FindMember(s.Records, key)
	if !ok {
		return nil
	}
	isPrimary := s.State.Focus.RecordIsPrimary

	// Family-level values live on the primary record.
	family := m
	if p, ok := domain.PrimaryOf(s.Records, key.FamilyID); ok {
		family = p
	}

	values := viewstate.RecordForm{
		Name:     m.Name,
		LastName: m.LastName,
		Phone:    deref(m.Phone),
		Birthday: domain.InputDate(m.Birthday),
		Gender:   m.Gender,
	}
	if isPrimary {
		values.Email = deref(family.Email)
		values.Address = deref(family.Address)
		values.City = deref(family.City)
		values.State = deref(family.State)
		values.ZipCode = deref(family.ZipCode)
		values.FoundingFamily = family.FoundingFamily
		values.MemStartDate = domain.InputDate(family.MemStartDate)
		values.ActiveFlag = family.ActiveFlag
	}

	return &RecordView{
		Key:               key,
		IsPrimary:         isPrimary,
		Values:            values,
		MembershipExpires: expiresLabel(family),
		Editable:          viewstate.EditableFields(isPrimary, family.FoundingFamily),
	}
}

func BuildSecondary(s Snapshot) *SecondaryView {
	familyID := s.State.Focus.FamilyID
	members := domain.FamilyMembers(s.Records, familyID)
	v := &SecondaryView{FamilyID: familyID, Members: []MemberCard{}}
	if p, ok := domain.PrimaryOf(members, familyID); ok {
		v.PrimaryName = p.FullName()
	}
	for _, m := range domain.Secondaries(members) {
		v.Members = append(v.Members, card(m))
	}
	return v
}

func BuildAddVisit(s Snapshot) *AddVisitView {
	key := s.State.Focus.AddVisitMember
	return &AddVisitView{
		Member:          key,
		DisplayName:     strings.TrimSpace(key.Name + " " + key.LastName),
		DefaultDatetime: domain.FormatDateTimeLocalForInput(s.Now, s.Location),
	}
}

func BuildVisits(s Snapshot) *VisitsView {
	f := s.State.Focus
	return &VisitsView{
		Member:                f.VisitsMember,
		DisplayName:           strings.TrimSpace(f.VisitsMember.Name + " " + f.VisitsMember.LastName),
		VisitsSinceMembership: domain.VisitsSince(s.Visits, f.VisitsMemStart),
		Calendar:              domain.MonthGrid(f.CalendarMonth, s.Visits, s.Now, s.Location),
		History:               domain.VisitHistory(s.Visits, s.Location),
	}
}

func card(m domain.Member) MemberCard {
	return MemberCard{
		Key:       m.Key(),
		Name:      m.Name,
		LastName:  m.LastName,
		IsPrimary: m.PrimaryMember,
		Phone:     domain.FormatPhone(m.Phone),
		Birthday:  domain.DisplayDate(m.Birthday),
		Gender:    genderLabel(m.Gender),
	}
}

func genderLabel(g *bool) string {
	switch {
	case g == nil:
		return domain.NoValue
	case *g:
		return "Male"
	default:
		return "Female"
	}
}

func expiresLabel(m domain.Member) string {
	if m.FoundingFamily {
		return foundingFamilyLabel
	}
	return domain.DisplayDate(m.MembershipExpires)
}

func orNA(p *string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return domain.NoValue
	}
	return *p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
