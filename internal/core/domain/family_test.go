package domain_test

import (
	"testing"

	"github.com/AchilleasB/membership-console/internal/core/domain"
)

func family(id, last string, active bool, secondaries ...string) []domain.Member {
	out := []domain.Member{{MemberID: id, Name: "Pat", LastName: last, PrimaryMember: true, ActiveFlag: active}}
	for _, name := range secondaries {
		out = append(out, domain.Member{MemberID: id, Name: name, LastName: last, SecondaryMember: true})
	}
	return out
}

func TestCountActive(t *testing.T) {
	records := family("SmiPa", "Smith", true, "Tom", "Sue")

	got := domain.CountActive(records)
	if got.ActiveMembers != 3 || got.ActiveFamilies != 1 {
		t.Errorf("expected 3 members in 1 family, got %+v", got)
	}

	records[0].ActiveFlag = false
	got = domain.CountActive(records)
	if got.ActiveMembers != 0 || got.ActiveFamilies != 0 {
		t.Errorf("expected no active counts, got %+v", got)
	}
}

func TestCountActive_FamilyWithoutPrimary(t *testing.T) {
	records := append(family("SmiPa", "Smith", true, "Tom"),
		domain.Member{MemberID: "OrpXx", Name: "Lost", LastName: "Orphan", SecondaryMember: true, ActiveFlag: true},
	)

	got := domain.CountActive(records)
	if got.ActiveFamilies != 1 || got.ActiveMembers != 2 {
		t.Errorf("expected orphan family to contribute nothing, got %+v", got)
	}
}

func TestGroupFamilies_FirstSeenOrder(t *testing.T) {
	records := []domain.Member{
		{MemberID: "B", Name: "b1"},
		{MemberID: "A", Name: "a1", PrimaryMember: true},
		{MemberID: "B", Name: "b2", PrimaryMember: true},
	}

	families := domain.GroupFamilies(records)
	if len(families) != 2 {
		t.Fatalf("expected 2 families, got %d", len(families))
	}
	if families[0].ID != "B" || families[1].ID != "A" {
		t.Errorf("expected order B, A; got %s, %s", families[0].ID, families[1].ID)
	}
	p, ok := families[0].Primary()
	if !ok || p.Name != "b2" {
		t.Errorf("expected primary b2, got %+v (ok=%v)", p, ok)
	}
}

func TestSortFamilyMembers_PrimaryFirst(t *testing.T) {
	members := []domain.Member{
		{MemberID: "X", Name: "zoe", LastName: "Adams", SecondaryMember: true},
		{MemberID: "X", Name: "Bob", LastName: "Young", PrimaryMember: true},
		{MemberID: "X", Name: "Amy", LastName: "adams", SecondaryMember: true},
		{MemberID: "X", Name: "Carl", LastName: "Ängel", SecondaryMember: true},
	}

	got := domain.SortFamilyMembers(members)
	want := []string{"Bob", "Amy", "zoe", "Carl"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
	if members[0].Name != "zoe" {
		t.Error("input slice must not be reordered")
	}
}
