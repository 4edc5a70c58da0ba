package views_test

import (
	"testing"
	"time"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/internal/core/views"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

var now = time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)

func fixture() []domain.Member {
	return []domain.Member{
		{
			MemberID: "SmiAn", Name: "Ann", LastName: "Smith", PrimaryMember: true, ActiveFlag: true,
			Email: strp("ann@example.com"), Address: strp("1 Main"), City: strp("Town"), State: strp("IL"),
			ZipCode: strp("60601"), MembershipExpires: strp("2024-06-30"), MemStartDate: strp("2023-06-01"),
			Phone: strp("5551234567"), Gender: boolp(false),
		},
		{MemberID: "SmiAn", Name: "Zed", LastName: "Smith", SecondaryMember: true, Birthday: strp("2016-06-15")},
		{MemberID: "SmiAn", Name: "Bea", LastName: "Smith", SecondaryMember: true},
		{
			MemberID: "FouFr", Name: "Fred", LastName: "Founder", PrimaryMember: true, ActiveFlag: false,
			FoundingFamily: true,
		},
	}
}

func TestBuild_Home(t *testing.T) {
	c := views.Build(views.Snapshot{
		State:       viewstate.Initial(),
		Records:     fixture(),
		VisitsToday: 7,
		Now:         now,
		Location:    time.UTC,
	})

	if c.Home == nil {
		t.Fatal("expected home view")
	}
	if c.Family != nil || c.Record != nil {
		t.Error("expected only the home section")
	}
	if c.Counts.ActiveFamilies != 1 || c.Counts.ActiveMembers != 3 || c.Counts.VisitsToday != 7 {
		t.Errorf("unexpected counts %+v", c.Counts)
	}
	if len(c.Home.Rows) != 1 {
		t.Fatalf("expected 1 active row, got %d", len(c.Home.Rows))
	}

	row := c.Home.Rows[0]
	if !row.Classification.ExpiringThisMonth || !row.Classification.BirthdayToday {
		t.Errorf("expected expiring and birthday flags, got %+v", row.Classification)
	}
	if row.Expires != "06/30/2024" || row.Status != "Active" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestBuild_HomeFoundingFamily(t *testing.T) {
	c := views.Build(views.Snapshot{
		State:   viewstate.Initial(),
		Records: fixture(),
		Search:  views.Search{Query: "found", IncludeInactive: true},
		Now:     now,
	})

	if len(c.Home.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(c.Home.Rows))
	}
	row := c.Home.Rows[0]
	if row.Expires != "Founding Family" || row.Status != "Active" || !row.Classification.Founding {
		t.Errorf("unexpected founding row %+v", row)
	}
}

func TestBuild_FamilyOrdersPrimaryFirst(t *testing.T) {
	state, err := viewstate.Initial().EnterFamily("SmiAn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := views.Build(views.Snapshot{State: state, Records: fixture(), Now: now})
	if c.Family == nil {
		t.Fatal("expected family view")
	}

	var names []string
	for _, m := range c.Family.Members {
		names = append(names, m.Name)
	}
	want := []string{"Ann", "Bea", "Zed"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if c.Family.Primary.Phone != "(555) 123-4567" || c.Family.Primary.Gender != "Female" {
		t.Errorf("unexpected primary card %+v", c.Family.Primary)
	}
	if c.Family.MemStartDate != "06/01/2023" {
		t.Errorf("expected 06/01/2023, got %q", c.Family.MemStartDate)
	}
}

func TestBuild_RecordByRole(t *testing.T) {
	s, _ := viewstate.Initial().EnterFamily("SmiAn")

	secondary, err := s.EnterRecord(domain.MemberKey{FamilyID: "SmiAn", Name: "Zed", LastName: "Smith"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := views.Build(views.Snapshot{State: secondary, Records: fixture(), Now: now})
	if c.Record == nil {
		t.Fatal("expected record view")
	}
	if len(c.Record.Editable) != 5 {
		t.Errorf("expected 5 editable fields for a secondary, got %v", c.Record.Editable)
	}
	if c.Record.Values.Email != "" {
		t.Error("secondary form must not carry family contact values")
	}
	if c.Record.Values.Birthday != "2016-06-15" {
		t.Errorf("expected input-format birthday, got %q", c.Record.Values.Birthday)
	}

	primary, _ := s.EnterRecord(domain.MemberKey{FamilyID: "SmiAn", Name: "Ann", LastName: "Smith"}, true)
	c = views.Build(views.Snapshot{State: primary, Records: fixture(), Now: now})
	if c.Record.Values.Email != "ann@example.com" || c.Record.Values.MemStartDate != "2023-06-01" {
		t.Errorf("unexpected primary values %+v", c.Record.Values)
	}
	if c.Record.MembershipExpires != "06/30/2024" {
		t.Errorf("expected expiry display 06/30/2024, got %q", c.Record.MembershipExpires)
	}
}

func TestBuild_Visits(t *testing.T) {
	s, _ := viewstate.Initial().EnterFamily("SmiAn")
	start, _ := domain.ParseDate("2024-06-01", time.UTC)
	s, err := s.EnterMemberVisits(domain.MemberKey{FamilyID: "SmiAn", Name: "Ann", LastName: "Smith"}, start, domain.Month{Year: 2024, Month: time.June})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	visits := []time.Time{
		time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC),
	}
	c := views.Build(views.Snapshot{State: s, Records: fixture(), Visits: visits, Now: now, Location: time.UTC})

	if c.Visits == nil {
		t.Fatal("expected visits view")
	}
	if c.Visits.VisitsSinceMembership != 2 {
		t.Errorf("expected 2 visits since membership, got %d", c.Visits.VisitsSinceMembership)
	}
	if !c.Visits.Calendar.Days[14].IsToday || !c.Visits.Calendar.Days[14].IsVisited {
		t.Error("expected June 15 to be today and visited")
	}
	if len(c.Visits.History) != 3 || c.Visits.History[0].Number != 3 {
		t.Errorf("unexpected history %+v", c.Visits.History)
	}
	if c.Visits.DisplayName != "Ann Smith" {
		t.Errorf("expected display name 'Ann Smith', got %q", c.Visits.DisplayName)
	}
}

func TestBuild_AddRecordPreview(t *testing.T) {
	s, _ := viewstate.Initial().EnterAddRecord()
	c := views.Build(views.Snapshot{State: s, Draft: views.PreviewDraft{Name: "john", LastName: "doe"}, Now: now})
	if c.AddRecord == nil || c.AddRecord.PreviewMemberID != "DoeJo" {
		t.Errorf("expected preview DoeJo, got %+v", c.AddRecord)
	}
}
