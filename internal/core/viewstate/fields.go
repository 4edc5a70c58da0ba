package viewstate

import "github.com/AchilleasB/membership-console/internal/core/domain"

var secondaryFields = []domain.Field{
	domain.FieldName,
	domain.FieldLastName,
	domain.FieldPhone,
	domain.FieldBirthday,
	domain.FieldGender,
}

var primaryOnlyFields = []domain.Field{
	domain.FieldEmail,
	domain.FieldAddress,
	domain.FieldCity,
	domain.FieldState,
	domain.FieldZipCode,
	domain.FieldFoundingFamily,
	domain.FieldMemStartDate,
}

// EditableFields lists what the record details form may change. Secondary
// members only carry personal fields. The active flag is locked for founding
// families, and membership expiry is never editable here.
func EditableFields(isPrimary, founding bool) []domain.Field {
	fields := append([]domain.Field(nil), secondaryFields...)
	if !isPrimary {
		return fields
	}
	fields = append(fields, primaryOnlyFields...)
	if !founding {
		fields = append(fields, domain.FieldActiveFlag)
	}
	return fields
}

// IsEditable reports whether field appears in EditableFields.
func IsEditable(field domain.Field, isPrimary, founding bool) bool {
	for _, f := range EditableFields(isPrimary, founding) {
		if f == field {
			return true
		}
	}
	return false
}
