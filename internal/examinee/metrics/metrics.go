package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks submissions, allocation and administrative writes.
type Metrics struct {
	Submissions       *prometheus.CounterVec
	SubmitDuration    prometheus.Histogram
	SubmitRetries     prometheus.Counter
	NumbersAllocated  prometheus.Counter
	SequenceFallbacks prometheus.Counter
	PatchedRecords    *prometheus.CounterVec
	ExamNumbersSet    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "examreg_submissions_total",
			Help: "Application submissions by kind (first, resubmit) and outcome",
		}, []string{"kind", "outcome"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "examreg_submit_duration_seconds",
			Help:    "Time to validate, allocate and replace an application's records",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		SubmitRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_submit_conflict_retries_total",
			Help: "Submissions retried after a registration number conflict",
		}),
		NumbersAllocated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_registration_numbers_allocated_total",
			Help: "Registration numbers issued to new examinee records",
		}),
		SequenceFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_sequence_scan_fallbacks_total",
			Help: "Allocations that fell back to a full scan because the index was missing",
		}),
		PatchedRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "examreg_admin_patched_records_total",
			Help: "Records in administrative patch batches by outcome",
		}, []string{"outcome"}),
		ExamNumbersSet: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_exam_numbers_applied_total",
			Help: "Exam seat numbers written by bulk import",
		}),
	}
}

func (m *Metrics) IncrementSubmissions(kind, outcome string) {
	m.Submissions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveSubmitDuration(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSubmitRetries() {
	m.SubmitRetries.Inc()
}

func (m *Metrics) AddNumbersAllocated(n int) {
	m.NumbersAllocated.Add(float64(n))
}

func (m *Metrics) IncrementSequenceFallbacks() {
	m.SequenceFallbacks.Inc()
}

func (m *Metrics) AddPatchedRecords(outcome string, n int) {
	m.PatchedRecords.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) AddExamNumbersSet(n int) {
	m.ExamNumbersSet.Add(float64(n))
}
