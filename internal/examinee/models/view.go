package models

// RecordView is a record as the applicant sees it: codes resolved to labels,
// the mobile number formatted and the edit locks spelled out.
type RecordView struct {
	Record
	MobileDisplay        string            `json:"mobile_display"`
	Labels               map[string]string `json:"labels"`
	Mode                 string            `json:"mode"`
	CanEditParticipation bool              `json:"can_edit_participation"`
	CanRequestRefund     bool              `json:"can_request_refund"`
}

// ApplicationView is an application with its records in ordinal order.
type ApplicationView struct {
	Application Application  `json:"application"`
	Records     []RecordView `json:"records"`
}
