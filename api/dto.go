/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  Money travels as float64 in JSON for client convenience. All arithmetic
  happens on decimal values before conversion, so the float only carries
  an already-final number.

SEE ALSO:
  - handlers.go: Uses these types
  - dashboard/service.go: The view types these are built from
*/
package api

import (
	"time"

	"github.com/ManuelCebreiro/payFriendly/dashboard"
	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/ManuelCebreiro/payFriendly/store"
)

// =============================================================================
// GROUP TYPES
// =============================================================================

// GroupDTO represents a payment group in API responses.
type GroupDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	PublicID       string  `json:"public_id"`
	ExpectedAmount float64 `json:"payment_amount"`
	Frequency      string  `json:"payment_frequency"`
	CreatedAt      string  `json:"created_at,omitempty"`
	Active         bool    `json:"is_active"`
}

// CreateGroupRequest is the request to create a group.
type CreateGroupRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ExpectedAmount float64 `json:"payment_amount"`
	Frequency      string  `json:"payment_frequency"`
}

// ParticipantDTO represents a group member in API responses.
type ParticipantDTO struct {
	ID       string `json:"id"`
	GroupID  string `json:"group_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	JoinedAt string `json:"joined_at"`
	Active   bool   `json:"is_active"`
}

// AddParticipantRequest is the request to add a participant to a group.
type AddParticipantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

// PaymentDTO represents a payment in API responses.
type PaymentDTO struct {
	ID              string  `json:"id"`
	GroupID         string  `json:"group_id"`
	ParticipantID   string  `json:"participant_id"`
	ParticipantName string  `json:"participant_name,omitempty"`
	Amount          float64 `json:"amount"`
	PaymentDate     string  `json:"payment_date"`
	Notes           string  `json:"notes,omitempty"`
	ReceiptURL      string  `json:"receipt_url,omitempty"`
	Verified        bool    `json:"is_verified"`
}

// RecordPaymentRequest is the request to record a payment.
type RecordPaymentRequest struct {
	ParticipantID string  `json:"participant_id"`
	Amount        float64 `json:"amount"`
	PaymentDate   string  `json:"payment_date,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	ReceiptURL    string  `json:"receipt_url,omitempty"`
}

// =============================================================================
// DASHBOARD TYPES
// =============================================================================

// PeriodStatsDTO describes one billing window of a group.
type PeriodStatsDTO struct {
	PeriodStart string       `json:"period_start"`
	PeriodEnd   string       `json:"period_end"`
	Expected    float64      `json:"expected_amount"`
	Collected   float64      `json:"collected_amount"`
	Pending     float64      `json:"pending_amount"`
	Payments    []PaymentDTO `json:"payments"`
}

// GroupStatsDTO is the per-group dashboard detail response.
type GroupStatsDTO struct {
	Group             GroupDTO       `json:"group"`
	CurrentPeriod     PeriodStatsDTO `json:"current_period"`
	PreviousPeriod    PeriodStatsDTO `json:"previous_period"`
	TotalCollected    float64        `json:"total_collected"`
	ParticipantCount  int            `json:"participant_count"`
	TotalPaymentCount int            `json:"total_payment_count"`
}

// NextPayerDTO is one entry of the who-pays-next ranking.
type NextPayerDTO struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	GroupID       string  `json:"group_id"`
	GroupName     string  `json:"group_name"`
	DaysSinceLast int     `json:"days_since_last_payment"`
	LastPayment   *string `json:"last_payment_date,omitempty"`
	AmountDue     float64 `json:"amount_due"`
}

// LastPayerDTO is one previous-period payment, newest first.
type LastPayerDTO struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	GroupID       string  `json:"group_id"`
	GroupName     string  `json:"group_name"`
	Amount        float64 `json:"amount"`
	PaymentDate   string  `json:"payment_date"`
}

// OverdueParticipantDTO is a strict-threshold overdue listing entry.
type OverdueParticipantDTO struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	GroupID       string  `json:"group_id"`
	GroupName     string  `json:"group_name"`
	DaysOverdue   int     `json:"days_overdue"`
	AmountDue     float64 `json:"amount_due"`
	LastPayment   *string `json:"last_payment_date,omitempty"`
}

// NotificationDTO is one reminder feed entry.
type NotificationDTO struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	GroupID  string `json:"group_id"`
	Priority string `json:"priority"`
}

// GroupSummaryDTO is one line of the payment summary.
type GroupSummaryDTO struct {
	GroupID       string  `json:"group_id"`
	GroupName     string  `json:"group_name"`
	Expected      float64 `json:"payment_amount"`
	Frequency     string  `json:"payment_frequency"`
	TotalPaid     float64 `json:"total_paid"`
	PaymentCount  int     `json:"payment_count"`
	LastPayment   *string `json:"last_payment_date,omitempty"`
	DaysSinceLast int     `json:"days_since_last_payment"`
	IsDue         bool    `json:"is_due"`
}

// ReassignRequest is the request to skip a participant's turn.
type ReassignRequest struct {
	SkipParticipantID string `json:"skip_participant_id"`
}

// ReassignResponse reports the outcome of skipping a turn.
type ReassignResponse struct {
	GroupID string         `json:"group_id"`
	Skipped NextPayerDTO   `json:"skipped"`
	Next    *NextPayerDTO  `json:"next,omitempty"`
	Ranking []NextPayerDTO `json:"ranking"`
}

// PublicOverdueDTO is the read-only share-link view of a group.
type PublicOverdueDTO struct {
	GroupName   string                  `json:"group_name"`
	Frequency   string                  `json:"payment_frequency"`
	Expected    float64                 `json:"payment_amount"`
	Collected   float64                 `json:"collected_amount"`
	Pending     float64                 `json:"pending_amount"`
	PeriodStart string                  `json:"period_start"`
	PeriodEnd   string                  `json:"period_end"`
	Overdue     []OverdueParticipantDTO `json:"overdue_participants"`
}

// ReminderRunDTO is one recorded scheduler sweep.
type ReminderRunDTO struct {
	ID            string `json:"id"`
	RanAt         string `json:"ran_at"`
	GroupsChecked int    `json:"groups_checked"`
	Notifications int    `json:"notifications"`
	Notes         string `json:"notes,omitempty"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the JSON shape of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func groupDTO(g store.Group) GroupDTO {
	return GroupDTO{
		ID:             string(g.ID),
		Name:           g.Name,
		Description:    g.Description,
		PublicID:       g.PublicID,
		ExpectedAmount: g.ExpectedAmount.InexactFloat64(),
		Frequency:      string(g.Frequency),
		CreatedAt:      g.CreatedAt.Format(time.RFC3339),
		Active:         g.Active,
	}
}

func participantDTO(p store.Participant) ParticipantDTO {
	return ParticipantDTO{
		ID:       string(p.ID),
		GroupID:  string(p.GroupID),
		Name:     p.DisplayName,
		Email:    p.Email,
		JoinedAt: p.JoinedAt.Format(time.RFC3339),
		Active:   p.Active,
	}
}

func paymentDTO(p store.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		GroupID:       string(p.GroupID),
		ParticipantID: string(p.ParticipantID),
		Amount:        p.Amount.InexactFloat64(),
		PaymentDate:   p.PaymentDate.Format(time.RFC3339),
		Notes:         p.Notes,
		ReceiptURL:    p.ReceiptURL,
		Verified:      p.Verified,
	}
}

func paymentViewDTO(groupID engine.GroupID, v dashboard.PaymentView) PaymentDTO {
	return PaymentDTO{
		ID:              v.ID,
		GroupID:         string(groupID),
		ParticipantID:   string(v.ParticipantID),
		ParticipantName: v.Name,
		Amount:          v.Amount.InexactFloat64(),
		PaymentDate:     v.PaymentDate.Format(time.RFC3339),
		Notes:           v.Notes,
		ReceiptURL:      v.ReceiptURL,
		Verified:        v.Verified,
	}
}

func periodStatsDTO(groupID engine.GroupID, s dashboard.PeriodStats) PeriodStatsDTO {
	dto := PeriodStatsDTO{
		PeriodStart: s.Period.Start.String(),
		PeriodEnd:   s.Period.End.String(),
		Expected:    s.Expected.InexactFloat64(),
		Collected:   s.Collected.InexactFloat64(),
		Pending:     s.Pending.InexactFloat64(),
		Payments:    []PaymentDTO{},
	}
	for _, p := range s.Payments {
		dto.Payments = append(dto.Payments, paymentViewDTO(groupID, p))
	}
	return dto
}

func nextPayerDTO(p dashboard.NextPayer) NextPayerDTO {
	dto := NextPayerDTO{
		ParticipantID: string(p.ParticipantID),
		Name:          p.DisplayName,
		GroupID:       string(p.GroupID),
		GroupName:     p.GroupName,
		DaysSinceLast: p.DaysSinceLast,
		AmountDue:     p.AmountDue.InexactFloat64(),
	}
	if p.LastContribution != nil {
		dto.LastPayment = strPtr(p.LastContribution.String())
	}
	return dto
}

func overdueDTO(o dashboard.OverdueParticipant) OverdueParticipantDTO {
	dto := OverdueParticipantDTO{
		ParticipantID: string(o.ParticipantID),
		Name:          o.Name,
		GroupID:       string(o.GroupID),
		GroupName:     o.GroupName,
		DaysOverdue:   o.DaysOverdue,
		AmountDue:     o.AmountDue.InexactFloat64(),
	}
	if o.LastPaymentDate != nil {
		dto.LastPayment = strPtr(o.LastPaymentDate.Format("2006-01-02"))
	}
	return dto
}

func strPtr(s string) *string {
	return &s
}
