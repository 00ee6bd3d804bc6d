package events

import "time"

const (
	SalaryTemplateChangedTopic     = "hr.payroll.salary_template.changed.v1"
	SalaryTemplateChangedEventType = "salary_template.changed"
)

const (
	SalaryTemplateCreated = "created"
	SalaryTemplateUpdated = "updated"
	SalaryTemplateDeleted = "deleted"
)

// SalaryTemplateChangedEvent is emitted through the outbox whenever a
// template's mappings or CTC are saved or the template is removed.
type SalaryTemplateChangedEvent struct {
	EventType  string    `json:"event_type"`
	TemplateID string    `json:"template_id"`
	CompanyID  string    `json:"company_id"`
	Action     string    `json:"action"`
	ChangedBy  string    `json:"changed_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
