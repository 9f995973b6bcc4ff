package store

import (
	"context"

	"examreg/internal/lookup/models"
)

// Upserter is implemented by every catalog store.
type Upserter interface {
	Upsert(ctx context.Context, entries ...models.Entry) error
}

const seedStart = 20000101

// DefaultEntries is the catalog the portal ships with. Operators extend or
// expire rows directly in the table; the seed only fills an empty install.
func DefaultEntries() []models.Entry {
	row := func(t models.TypeID, code, label string, sort int) models.Entry {
		return models.Entry{TypeID: t, Code: code, Label: label, StartYmd: seedStart, Sort: sort}
	}
	return []models.Entry{
		row(models.TypeExamineeType, "100", "General", 1),
		row(models.TypeExamineeType, "200", "Youth", 2),
		row(models.TypeExamineeType, "300", "Ministry staff", 3),

		row(models.TypeParticipation, models.CodeYes, "Attending", 1),
		row(models.TypeParticipation, models.CodeNo, "Not attending", 2),

		row(models.TypeRefundRequest, models.CodeYes, "Refund requested", 1),

		row(models.TypeConfirmation, models.CodeYes, "Confirmed", 1),
		row(models.TypeConfirmation, models.CodeNo, "Unconfirmed", 2),

		row(models.TypeUserType, "100", "Applicant", 1),
		row(models.TypeUserType, "900", "Administrator", 2),
	}
}

// SeedDefaults loads DefaultEntries into the store.
func SeedDefaults(ctx context.Context, s Upserter) error {
	return s.Upsert(ctx, DefaultEntries()...)
}
