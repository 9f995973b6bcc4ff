package reconcile

import (
	accountmodels "examreg/internal/account/models"
	"examreg/internal/examinee/models"
)

// RecordRow is an examinee row of the admin records grid.
type RecordRow struct {
	models.AdminRow
}

func (r RecordRow) Key() Key {
	return Key{ApplicationID: r.ApplicationID, RecordID: r.ID}
}

func (r RecordRow) Required() [][2]string {
	return [][2]string{
		{models.FieldExamineeType, r.ExamineeType},
		{models.FieldName, r.Name},
		{models.FieldMobile, models.NormalizeMobile(r.Mobile)},
		{models.FieldDepositNote, r.DepositNote},
		{models.FieldParticipationStatus, r.ParticipationStatus},
	}
}

func (r RecordRow) Fields() map[string]string {
	return map[string]string{
		models.FieldExamineeType:        r.ExamineeType,
		models.FieldName:                r.Name,
		models.FieldMobile:              r.Mobile,
		models.FieldDepositNote:         r.DepositNote,
		models.FieldParticipationStatus: r.ParticipationStatus,
		models.FieldFeeConfirmed:        r.FeeConfirmed,
		models.FieldContactConfirmed:    r.ContactConfirmed,
		models.FieldRefundRequest:       r.RefundRequest,
		models.FieldRefundConfirmed:     r.RefundConfirmed,
		models.FieldExamNumber:          r.RegisteredExamNumber,
	}
}

// ContactRow is an application row of the contacts grid.
type ContactRow struct {
	models.Application
}

func (r ContactRow) Key() Key {
	return Key{ApplicationID: r.ID}
}

func (r ContactRow) Required() [][2]string {
	return [][2]string{
		{models.FieldChurchName, r.ChurchName},
		{models.FieldDenomination, r.Denomination},
		{models.FieldContactName, r.ContactName},
		{models.FieldContactPhone, r.ContactPhone},
	}
}

func (r ContactRow) Fields() map[string]string {
	return map[string]string{
		models.FieldChurchName:      r.ChurchName,
		models.FieldPastorName:      r.PastorName,
		models.FieldChurchAddress:   r.ChurchAddress,
		models.FieldDenomination:    r.Denomination,
		models.FieldContactName:     r.ContactName,
		models.FieldContactPosition: r.ContactPosition,
		models.FieldContactPhone:    r.ContactPhone,
		models.FieldContactEmail:    r.ContactEmail,
	}
}

// UserRow is an account row of the users grid.
type UserRow struct {
	accountmodels.Account
}

func (r UserRow) Key() Key {
	return Key{AccountID: r.ID}
}

func (r UserRow) Required() [][2]string {
	return r.Account.Required()
}

func (r UserRow) Fields() map[string]string {
	return r.Account.Fields()
}
