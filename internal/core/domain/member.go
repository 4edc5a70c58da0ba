package domain

import (
	"encoding/json"
	"strings"
)

// Member is one row of the joined members/family listing returned by GET /data.
// Family-level fields (address, email, membership dates, flags) are only
// authoritative on the primary member of a family.
type Member struct {
	MemberID          string  `json:"member_id"`
	Name              string  `json:"name"`
	LastName          string  `json:"last_name"`
	Phone             *string `json:"phone"`
	Birthday          *string `json:"birthday"`
	Gender            *bool   `json:"gender"`
	PrimaryMember     bool    `json:"primary_member"`
	SecondaryMember   bool    `json:"secondary_member"`
	Address           *string `json:"address"`
	City              *string `json:"city"`
	State             *string `json:"state"`
	ZipCode           *string `json:"zip_code"`
	Email             *string `json:"email"`
	FoundingFamily    bool    `json:"founding_family"`
	MemStartDate      *string `json:"mem_start_date"`
	MembershipExpires *string `json:"membership_expires"`
	ActiveFlag        bool    `json:"active_flag"`
	RenewalEmailSent  bool    `json:"renewal_email_sent"`
}

// MemberKey identifies one person. The API has no per-person id, so the
// family id plus the name pair is used.
type MemberKey struct {
	FamilyID string `json:"member_id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

func (k MemberKey) IsZero() bool {
	return k.FamilyID == "" || k.Name == "" || k.LastName == ""
}

func (m Member) Key() MemberKey {
	return MemberKey{FamilyID: m.MemberID, Name: m.Name, LastName: m.LastName}
}

// FullName joins first and last name with a single space.
func (m Member) FullName() string {
	return strings.TrimSpace(m.Name + " " + m.LastName)
}

// FindMember returns the record matching key.
func FindMember(records []Member, key MemberKey) (Member, bool) {
	for _, r := range records {
		if r.MemberID == key.FamilyID && r.Name == key.Name && r.LastName == key.LastName {
			return r, true
		}
	}
	return Member{}, false
}

// NewRecord is the payload of POST /add_record. The API derives the family id.
type NewRecord struct {
	Name            string  `json:"name"`
	LastName        string  `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ZipCode         *string `json:"zip_code"`
	Birthday        *string `json:"birthday"`
	Gender          *bool   `json:"gender"`
	FoundingFamily  bool    `json:"founding_family"`
	PrimaryMember   bool    `json:"primary_member"`
	SecondaryMember bool    `json:"secondary_member"`
}

// NewSecondaryMember is the payload of POST /add_secondary_member.
type NewSecondaryMember struct {
	PrimaryMemberID string  `json:"primary_member_id"`
	Name            string  `json:"name"`
	LastName        string  `json:"last_name"`
	Phone           *string `json:"phone"`
	Birthday        *string `json:"birthday"`
	Gender          *bool   `json:"gender"`
}

// Field names a user-editable member attribute by its API key.
type Field string

const (
	FieldName           Field = "name"
	FieldLastName       Field = "last_name"
	FieldPhone          Field = "phone"
	FieldBirthday       Field = "birthday"
	FieldGender         Field = "gender"
	FieldEmail          Field = "email"
	FieldAddress        Field = "address"
	FieldCity           Field = "city"
	FieldState          Field = "state"
	FieldZipCode        Field = "zip_code"
	FieldFoundingFamily Field = "founding_family"
	FieldMemStartDate   Field = "mem_start_date"
	FieldActiveFlag     Field = "active_flag"
)

// RecordUpdate is the payload of PUT /update_record/{id}. Only keys present in
// Fields are sent; a nil value clears the stored value.
type RecordUpdate struct {
	OriginalName     string
	OriginalLastName string
	IsPrimary        bool
	Fields           map[Field]any
}

func (u RecordUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(u.Fields)+3)
	for k, v := range u.Fields {
		body[string(k)] = v
	}
	if u.OriginalName != "" {
		body["original_name"] = u.OriginalName
	}
	if u.OriginalLastName != "" {
		body["original_last_name"] = u.OriginalLastName
	}
	body["is_primary"] = u.IsPrimary
	return json.Marshal(body)
}

// Visit is the payload of POST /add_visit.
type Visit struct {
	MemberID      string `json:"member_id"`
	Name          string `json:"name"`
	LastName      string `json:"last_name"`
	VisitDatetime string `json:"visit_datetime"`
}

// VisitorGroup is one row of GET /visits/today/grouped.
type VisitorGroup struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Visitors int    `json:"visitors"`
}

// StringPtr returns nil for blank input, matching how the console sends
// empty form fields as JSON null.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
