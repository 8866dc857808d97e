package events

import "time"

const (
	PayrollPeriodApprovedTopic = "hr.payroll.period.approved.v1"
	PayrollPeriodPaidTopic     = "hr.payroll.period.paid.v1"
)

const (
	PayrollPeriodApprovedType = "payroll.period.approved"
	PayrollPeriodPaidType     = "payroll.period.paid"
)

type PayrollPeriodApprovedEvent struct {
	EventType  string    `json:"event_type"`
	PeriodID   string    `json:"period_id"`
	CompanyID  string    `json:"company_id"`
	ApprovedBy string    `json:"approved_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PayrollPeriodPaidEvent struct {
	EventType   string    `json:"event_type"`
	PeriodID    string    `json:"period_id"`
	CompanyID   string    `json:"company_id"`
	TotalNetPay string    `json:"total_net_pay"`
	OccurredAt  time.Time `json:"occurred_at"`
}
