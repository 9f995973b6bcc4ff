package models

// Summary is the daily report administrators receive.
type Summary struct {
	AsOf             string `json:"as_of"`
	Applications     int    `json:"applications"`
	Total            int    `json:"total"`
	Participating    int    `json:"participating"`
	FeeConfirmed     int    `json:"fee_confirmed"`
	CreatedYesterday int    `json:"created_yesterday"`
	RefundRequested  int    `json:"refund_requested"`
	RefundConfirmed  int    `json:"refund_confirmed"`
}

// Summarize counts records for the report dated asOf. yesterday is the
// YYYYMMDD day before asOf.
func Summarize(records []*Record, asOf, yesterday string) Summary {
	s := Summary{AsOf: asOf, Total: len(records)}
	for _, r := range records {
		if r.ParticipationStatus == ParticipationAttending {
			s.Participating++
		}
		if r.FeeConfirmed == Confirmed {
			s.FeeConfirmed++
		}
		if r.CreatedYmd == yesterday {
			s.CreatedYesterday++
		}
		if r.RefundRequest == RefundRequested {
			s.RefundRequested++
		}
		if r.RefundConfirmed == Confirmed {
			s.RefundConfirmed++
		}
	}
	return s
}
