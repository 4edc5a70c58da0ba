package domain

import (
	"strings"
	"time"
)

const (
	LabelActive   = "Active"
	LabelInactive = "Inactive"
)

// Classification holds the derived status flags of one record. It is cheap
// to compute and depends on today, so it is rebuilt on every view.
type Classification struct {
	Expired              bool   `json:"expired"`
	ExpiringThisMonth    bool   `json:"expiring_this_month"`
	Founding             bool   `json:"founding"`
	MissingInfo          bool   `json:"missing_info"`
	BirthdayToday        bool   `json:"birthday_today"`
	RenewalNoticePending bool   `json:"renewal_notice_pending"`
	ActiveLabel          string `json:"active_label"`
}

// Today returns the UTC calendar date of now at midnight.
func Today(now time.Time) time.Time {
	return UTCMidnight(now)
}

// Classify derives the status flags for record. family holds every record
// sharing its member_id (the record itself included) and is only consulted
// for birthdays.
func Classify(record Member, family []Member, today time.Time) Classification {
	today = UTCMidnight(today)
	c := Classification{
		Founding:             record.FoundingFamily,
		MissingInfo:          HasMissingInfo(record),
		BirthdayToday:        FamilyHasBirthday(family, today),
		RenewalNoticePending: !record.RenewalEmailSent && !record.FoundingFamily,
		ActiveLabel:          ActiveLabel(record, today),
	}

	if !record.FoundingFamily {
		if expires, ok := ParseDatePtr(record.MembershipExpires, time.UTC); ok {
			expires = UTCMidnight(expires)
			switch {
			case expires.Before(today):
				c.Expired = true
			case expires.Year() == today.Year() && expires.Month() == today.Month():
				c.ExpiringThisMonth = true
			}
		}
	}
	return c
}

// HasMissingInfo reports whether any family contact field is null or blank.
func HasMissingInfo(record Member) bool {
	for _, v := range []*string{record.Email, record.Address, record.City, record.State, record.ZipCode} {
		if v == nil || strings.TrimSpace(*v) == "" {
			return true
		}
	}
	return false
}

// FamilyHasBirthday reports whether any member's birthday falls on today's
// UTC month and day.
func FamilyHasBirthday(family []Member, today time.Time) bool {
	today = today.UTC()
	for _, m := range family {
		b, ok := ParseDatePtr(m.Birthday, time.UTC)
		if !ok {
			continue
		}
		b = b.UTC()
		if b.Month() == today.Month() && b.Day() == today.Day() {
			return true
		}
	}
	return false
}

// ActiveLabel is the display status. Founding families are always active, a
// current expiry date wins over the stored flag, and otherwise the flag
// decides.
func ActiveLabel(record Member, today time.Time) string {
	if record.FoundingFamily {
		return LabelActive
	}
	if expires, ok := ParseDatePtr(record.MembershipExpires, time.UTC); ok {
		if !UTCMidnight(expires).Before(UTCMidnight(today)) {
			return LabelActive
		}
	}
	if record.ActiveFlag {
		return LabelActive
	}
	return LabelInactive
}
