package domain

import (
	"sort"
	"strings"
)

// FilterFamilies returns the primary members of every family matching query,
// ordered by last name, first name and member id, case-insensitively.
//
// A non-empty query matches a family when any of its members' last names
// contains it. Without includeInactive the family's primary must also be
// active. An empty query selects each primary member directly, filtered only
// on that record's own active flag.
func FilterFamilies(records []Member, query string, includeInactive bool) []Member {
	query = strings.ToLower(strings.TrimSpace(query))

	var matched map[string]bool
	if query != "" {
		matched = make(map[string]bool)
		for _, r := range records {
			if !strings.Contains(strings.ToLower(r.LastName), query) {
				continue
			}
			if includeInactive {
				matched[r.MemberID] = true
				continue
			}
			if p, ok := PrimaryOf(records, r.MemberID); ok && p.ActiveFlag {
				matched[r.MemberID] = true
			}
		}
	}

	var out []Member
	for _, r := range records {
		if !r.PrimaryMember {
			continue
		}
		if matched != nil {
			if matched[r.MemberID] {
				out = append(out, r)
			}
			continue
		}
		if includeInactive || r.ActiveFlag {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lessByName(out[i], out[j])
	})
	return out
}

func lessByName(a, b Member) bool {
	if x, y := strings.ToLower(a.LastName), strings.ToLower(b.LastName); x != y {
		return x < y
	}
	if x, y := strings.ToLower(a.Name), strings.ToLower(b.Name); x != y {
		return x < y
	}
	return strings.ToLower(a.MemberID) < strings.ToLower(b.MemberID)
}
