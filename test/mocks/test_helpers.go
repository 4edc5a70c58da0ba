package mocks

import (
	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
)

func strPtr(s string) *string { return &s }

// CreateTestFamily returns an active family: primary Ann Smith with two
// secondary members, family id "SmiAn".
func CreateTestFamily() []domain.Member {
	return []domain.Member{
		{
			MemberID:          "SmiAn",
			Name:              "Ann",
			LastName:          "Smith",
			PrimaryMember:     true,
			ActiveFlag:        true,
			Email:             strPtr("ann@example.com"),
			Phone:             strPtr("5551234567"),
			Address:           strPtr("1 Main St"),
			City:              strPtr("Springfield"),
			State:             strPtr("IL"),
			ZipCode:           strPtr("62701"),
			MemStartDate:      strPtr("2024-01-10"),
			MembershipExpires: strPtr("2025-01-10"),
		},
		{MemberID: "SmiAn", Name: "Bob", LastName: "Smith", SecondaryMember: true},
		{MemberID: "SmiAn", Name: "Cy", LastName: "Smith", SecondaryMember: true},
	}
}

// CreateTestMember returns a primary member of its own family.
func CreateTestMember(familyID, name, lastName string, active bool) domain.Member {
	return domain.Member{
		MemberID:      familyID,
		Name:          name,
		LastName:      lastName,
		PrimaryMember: true,
		ActiveFlag:    active,
	}
}

// CreateTestEvent creates a sample activity event.
func CreateTestEvent() ports.ActivityEvent {
	return ports.ActivityEvent{
		ID:       "test-event-id",
		Type:     ports.ActivityVisitRecorded,
		FamilyID: "SmiAn",
		Name:     "Ann",
		LastName: "Smith",
	}
}
