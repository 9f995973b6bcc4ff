package audit

import (
	"context"
	"time"

	id "examreg/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// It decides retention and which Kafka key an event is published under.
type EventCategory string

const (
	// CategoryCompliance covers writes to registration data that must never
	// be lost: submissions and administrative changes. Emitted fail-closed,
	// inside the transaction of the write they describe.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected credentials on the admin and bearer
	// surfaces.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as bulk imports and
	// summary reads.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventApplicationSubmitted   AuditEvent = "application_submitted"
	EventApplicationResubmitted AuditEvent = "application_resubmitted"
	EventRecordsPatched         AuditEvent = "records_patched"
	EventApplicationsPatched    AuditEvent = "applications_patched"
	EventUsersUpdated           AuditEvent = "users_updated"
	EventExamNumbersApplied     AuditEvent = "exam_numbers_applied"
	EventSummaryViewed          AuditEvent = "summary_viewed"
	EventAdminAuthFailed        AuditEvent = "admin_auth_failed"
	EventBearerAuthFailed       AuditEvent = "bearer_auth_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventApplicationSubmitted:   CategoryCompliance,
	EventApplicationResubmitted: CategoryCompliance,
	EventRecordsPatched:         CategoryCompliance,
	EventApplicationsPatched:    CategoryCompliance,
	EventUsersUpdated:           CategoryCompliance,

	EventAdminAuthFailed:  CategorySecurity,
	EventBearerAuthFailed: CategorySecurity,

	EventExamNumbersApplied: CategoryOperations,
	EventSummaryViewed:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory     `json:"category"`
	Timestamp time.Time         `json:"timestamp"`
	AccountID id.AccountID      `json:"account_id"`
	Subject   string            `json:"subject"`
	Action    string            `json:"action"`
	ActorID   string            `json:"actor_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// OutboxEntry is a persisted event waiting to be relayed.
type OutboxEntry struct {
	ID    int64
	Event Event
}

// Store appends events. Implementations join the caller's transaction when
// the context carries one.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Outbox is the relay side of the store.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []int64, at time.Time) error
}
