package domain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Family is the set of records sharing one member_id, in listing order.
type Family struct {
	ID      string   `json:"member_id"`
	Members []Member `json:"members"`
}

// Primary returns the family's primary member. A family without one is
// tolerated and reports false.
func (f Family) Primary() (Member, bool) {
	for _, m := range f.Members {
		if m.PrimaryMember {
			return m, true
		}
	}
	return Member{}, false
}

// IsActive reports whether the primary member carries active_flag.
func (f Family) IsActive() bool {
	p, ok := f.Primary()
	return ok && p.ActiveFlag
}

// GroupFamilies groups records by member_id, keeping first-seen order.
func GroupFamilies(records []Member) []Family {
	index := make(map[string]int)
	var families []Family
	for _, r := range records {
		i, ok := index[r.MemberID]
		if !ok {
			i = len(families)
			index[r.MemberID] = i
			families = append(families, Family{ID: r.MemberID})
		}
		families[i].Members = append(families[i].Members, r)
	}
	return families
}

// FamilyMembers returns the records of one family.
func FamilyMembers(records []Member, familyID string) []Member {
	var out []Member
	for _, r := range records {
		if r.MemberID == familyID {
			out = append(out, r)
		}
	}
	return out
}

// PrimaryOf finds the primary member of familyID in records.
func PrimaryOf(records []Member, familyID string) (Member, bool) {
	for _, r := range records {
		if r.MemberID == familyID && r.PrimaryMember {
			return r, true
		}
	}
	return Member{}, false
}

// Counts are the organization-wide totals shown on the home screen.
type Counts struct {
	ActiveFamilies int `json:"active_families"`
	ActiveMembers  int `json:"active_members"`
	VisitsToday    int `json:"visits_today"`
}

// CountActive counts families whose primary is active and every member of
// those families, secondaries included.
func CountActive(records []Member) Counts {
	var c Counts
	for _, f := range GroupFamilies(records) {
		if f.IsActive() {
			c.ActiveFamilies++
			c.ActiveMembers += len(f.Members)
		}
	}
	return c
}

// SortFamilyMembers orders a family for display: the primary first, then by
// last name and first name using locale collation.
func SortFamilyMembers(members []Member) []Member {
	out := make([]Member, len(members))
	copy(out, members)
	// Collators keep internal buffers and cannot be shared across goroutines.
	nameCollator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PrimaryMember != b.PrimaryMember {
			return a.PrimaryMember
		}
		if c := nameCollator.CompareString(a.LastName, b.LastName); c != 0 {
			return c < 0
		}
		return nameCollator.CompareString(a.Name, b.Name) < 0
	})
	return out
}

// Secondaries returns the non-primary members of a family in display order.
func Secondaries(members []Member) []Member {
	var out []Member
	for _, m := range SortFamilyMembers(members) {
		if !m.PrimaryMember {
			out = append(out, m)
		}
	}
	return out
}
