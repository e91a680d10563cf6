/*
handlers.go - HTTP API handlers for the shared-payment tracker

PURPOSE:
  Exposes the payment tracking engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Groups:
    GET    /api/groups                       List all groups
    POST   /api/groups                       Create group
    GET    /api/groups/{id}                  Get group details
    GET    /api/groups/{id}/stats            Period stats for one group
    POST   /api/groups/{id}/reassign         Skip a participant's turn

  Participants:
    GET    /api/groups/{id}/participants     List members
    POST   /api/groups/{id}/participants     Add a member
    DELETE /api/groups/{id}/participants/{participantID}  Deactivate

  Payments:
    GET    /api/groups/{id}/payments         Payment history
    POST   /api/groups/{id}/payments         Record a payment
    POST   /api/payments/{id}/verify         Mark a payment verified

  Dashboard:
    GET    /api/dashboard/next-payers        Who should pay next
    GET    /api/dashboard/last-payers        Previous-period payments
    GET    /api/dashboard/overdue-participants
    GET    /api/dashboard/notifications      Deadline and overdue alerts
    GET    /api/dashboard/payment-summary    Per-group totals

  Public:
    GET    /api/public/overdue/{publicID}    Share-link overdue view

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (dashboard service, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Group, participant, or payment not found
  - 500: Internal errors

REFERENCE TIME:
  Every dashboard endpoint accepts an optional ?at=YYYY-MM-DD query
  parameter pinning the computation to that day. Omitted means today.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ManuelCebreiro/payFriendly/dashboard"
	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/ManuelCebreiro/payFriendly/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     store.Store
	Dashboard *dashboard.Service

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store.
func NewHandler(s store.Store) *Handler {
	return &Handler{
		Store:     s,
		Dashboard: dashboard.NewService(s),
	}
}

// =============================================================================
// GROUP HANDLERS
// =============================================================================

// ListGroups returns all groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Store.ListGroups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list groups", err)
		return
	}

	dtos := make([]GroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = groupDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateGroup creates a new payment group.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Group name is required", nil)
		return
	}
	if req.ExpectedAmount <= 0 {
		writeError(w, http.StatusBadRequest, "payment_amount must be positive", nil)
		return
	}

	group := store.Group{
		ID:             engine.GroupID(uuid.NewString()),
		Name:           req.Name,
		Description:    req.Description,
		PublicID:       uuid.NewString(),
		ExpectedAmount: decimal.NewFromFloat(req.ExpectedAmount),
		Frequency:      engine.ParseFrequency(req.Frequency),
		CreatedAt:      time.Now().UTC(),
		Active:         true,
	}

	if err := h.Store.CreateGroup(r.Context(), group); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create group", err)
		return
	}
	writeJSON(w, http.StatusCreated, groupDTO(group))
}

// GetGroup returns a single group.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))

	group, err := h.Store.Group(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), "Failed to get group", err)
		return
	}
	writeJSON(w, http.StatusOK, groupDTO(group))
}

// GetGroupStats returns the group's period stats.
func (h *Handler) GetGroupStats(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))

	stats, err := h.Dashboard.GroupStats(r.Context(), id, refTime(r))
	if err != nil {
		writeError(w, statusFor(err), "Failed to compute group stats", err)
		return
	}

	writeJSON(w, http.StatusOK, GroupStatsDTO{
		Group:             groupDTO(stats.Group),
		CurrentPeriod:     periodStatsDTO(id, stats.CurrentPeriod),
		PreviousPeriod:    periodStatsDTO(id, stats.PreviousPeriod),
		TotalCollected:    stats.TotalCollected.InexactFloat64(),
		ParticipantCount:  stats.ParticipantCount,
		TotalPaymentCount: stats.TotalPaymentCount,
	})
}

// ReassignPayer skips a participant's turn in the group ranking.
func (h *Handler) ReassignPayer(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))

	var req ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SkipParticipantID == "" {
		writeError(w, http.StatusBadRequest, "skip_participant_id is required", nil)
		return
	}

	outcome, err := h.Dashboard.ReassignPayer(r.Context(), id, engine.ParticipantID(req.SkipParticipantID), refTime(r))
	if err != nil {
		writeError(w, statusFor(err), "Failed to reassign payer", err)
		return
	}

	resp := ReassignResponse{
		GroupID: string(outcome.GroupID),
		Skipped: nextPayerDTO(outcome.Skipped),
		Ranking: make([]NextPayerDTO, len(outcome.Ranking)),
	}
	if outcome.Next != nil {
		next := nextPayerDTO(*outcome.Next)
		resp.Next = &next
	}
	for i, p := range outcome.Ranking {
		resp.Ranking[i] = nextPayerDTO(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PARTICIPANT HANDLERS
// =============================================================================

// ListParticipants returns the group's members.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))
	activeOnly := r.URL.Query().Get("active") != "false"

	if _, err := h.Store.Group(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to get group", err)
		return
	}

	participants, err := h.Store.Participants(r.Context(), id, activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list participants", err)
		return
	}

	dtos := make([]ParticipantDTO, len(participants))
	for i, p := range participants {
		dtos[i] = participantDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddParticipant adds a member to a group.
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))

	var req AddParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Participant name is required", nil)
		return
	}

	if _, err := h.Store.Group(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to get group", err)
		return
	}

	participant := store.Participant{
		ID:          engine.ParticipantID(uuid.NewString()),
		GroupID:     id,
		DisplayName: req.Name,
		Email:       req.Email,
		JoinedAt:    time.Now().UTC(),
		Active:      true,
	}

	if err := h.Store.AddParticipant(r.Context(), participant); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add participant", err)
		return
	}
	writeJSON(w, http.StatusCreated, participantDTO(participant))
}

// DeactivateParticipant removes a member from the active roster. Their
// payment history stays.
func (h *Handler) DeactivateParticipant(w http.ResponseWriter, r *http.Request) {
	participantID := engine.ParticipantID(chi.URLParam(r, "participantID"))

	if err := h.Store.DeactivateParticipant(r.Context(), participantID); err != nil {
		writeError(w, statusFor(err), "Failed to deactivate participant", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns the group's payment history, newest first.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))

	if _, err := h.Store.Group(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to get group", err)
		return
	}

	payments, err := h.Store.Payments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = paymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordPayment records a payment in a group. Payments start unverified
// and only count toward the collected amount once verified.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := engine.GroupID(chi.URLParam(r, "id"))

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ParticipantID == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required", nil)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return
	}

	participant, err := h.Store.Participant(r.Context(), engine.ParticipantID(req.ParticipantID))
	if err != nil {
		writeError(w, statusFor(err), "Failed to get participant", err)
		return
	}
	if participant.GroupID != id {
		writeError(w, http.StatusBadRequest, "Participant does not belong to this group", nil)
		return
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment_date format (use YYYY-MM-DD)", err)
			return
		}
		paymentDate = parsed
	}

	payment := store.Payment{
		ID:            uuid.NewString(),
		GroupID:       id,
		ParticipantID: participant.ID,
		Amount:        decimal.NewFromFloat(req.Amount),
		PaymentDate:   paymentDate,
		Notes:         req.Notes,
		ReceiptURL:    req.ReceiptURL,
	}

	if err := h.Store.RecordPayment(r.Context(), payment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentDTO(payment))
}

// VerifyPayment marks a payment as verified.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.VerifyPayment(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to verify payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// GetNextPayers returns the who-pays-next ranking.
func (h *Handler) GetNextPayers(w http.ResponseWriter, r *http.Request) {
	groupID := engine.GroupID(r.URL.Query().Get("group_id"))

	payers, err := h.Dashboard.NextPayers(r.Context(), groupID, limitParam(r, 0), refTime(r))
	if err != nil {
		writeError(w, statusFor(err), "Failed to compute next payers", err)
		return
	}

	dtos := make([]NextPayerDTO, len(payers))
	for i, p := range payers {
		dtos[i] = nextPayerDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLastPayers returns the previous period's payments.
func (h *Handler) GetLastPayers(w http.ResponseWriter, r *http.Request) {
	groupID := engine.GroupID(r.URL.Query().Get("group_id"))

	items, err := h.Dashboard.LastPayers(r.Context(), groupID, limitParam(r, 0), refTime(r))
	if err != nil {
		writeError(w, statusFor(err), "Failed to compute last payers", err)
		return
	}

	dtos := make([]LastPayerDTO, len(items))
	for i, item := range items {
		dtos[i] = LastPayerDTO{
			ParticipantID: string(item.ParticipantID),
			Name:          item.Name,
			GroupID:       string(item.GroupID),
			GroupName:     item.GroupName,
			Amount:        item.Amount.InexactFloat64(),
			PaymentDate:   item.PaymentDate.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOverdueParticipants returns everyone past the strict overdue threshold.
func (h *Handler) GetOverdueParticipants(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.Dashboard.OverdueParticipants(r.Context(), limitParam(r, 10), refTime(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute overdue participants", err)
		return
	}

	dtos := make([]OverdueParticipantDTO, len(overdue))
	for i, o := range overdue {
		dtos[i] = overdueDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetNotifications returns the deadline and overdue alert feed.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.Dashboard.Notifications(r.Context(), refTime(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute notifications", err)
		return
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = NotificationDTO{
			ID:       n.ID,
			Type:     string(n.Type),
			Title:    n.Title,
			Message:  n.Message,
			GroupID:  string(n.GroupID),
			Priority: n.Priority,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPaymentSummary returns per-group contribution totals.
func (h *Handler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Dashboard.PaymentSummary(r.Context(), refTime(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute payment summary", err)
		return
	}

	dtos := make([]GroupSummaryDTO, len(summaries))
	for i, s := range summaries {
		dto := GroupSummaryDTO{
			GroupID:       string(s.GroupID),
			GroupName:     s.GroupName,
			Expected:      s.Expected.InexactFloat64(),
			Frequency:     string(s.Frequency),
			TotalPaid:     s.TotalPaid.InexactFloat64(),
			PaymentCount:  s.PaymentCount,
			DaysSinceLast: s.DaysSinceLast,
			IsDue:         s.IsDue,
		}
		if s.LastPayment != nil {
			dto.LastPayment = strPtr(s.LastPayment.Format(time.RFC3339))
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PUBLIC SHARE HANDLERS
// =============================================================================

// GetPublicOverdue resolves a share link to a group's overdue view.
// No authentication: the unguessable public ID is the capability.
func (h *Handler) GetPublicOverdue(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	view, err := h.Dashboard.PublicOverdue(r.Context(), publicID, refTime(r))
	if err != nil {
		writeError(w, statusFor(err), "Failed to resolve share link", err)
		return
	}

	dto := PublicOverdueDTO{
		GroupName:   view.GroupName,
		Frequency:   string(view.Frequency),
		Expected:    view.Expected.InexactFloat64(),
		Collected:   view.Collected.InexactFloat64(),
		Pending:     view.Pending.InexactFloat64(),
		PeriodStart: view.CurrentPeriod.Start.String(),
		PeriodEnd:   view.CurrentPeriod.End.String(),
		Overdue:     []OverdueParticipantDTO{},
	}
	for _, o := range view.Overdue {
		dto.Overdue = append(dto.Overdue, overdueDTO(o))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// REMINDER HANDLERS
// =============================================================================

// ListReminderRuns returns recent scheduler sweeps, newest first.
func (h *Handler) ListReminderRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ReminderRuns(r.Context(), limitParam(r, 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reminder runs", err)
		return
	}

	dtos := make([]ReminderRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = ReminderRunDTO{
			ID:            run.ID,
			RanAt:         run.RanAt.Format(time.RFC3339),
			GroupsChecked: run.GroupsChecked,
			Notifications: run.Notifications,
			Notes:         run.Notes,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// refTime reads the optional ?at=YYYY-MM-DD parameter. The zero time
// means "now" downstream.
func refTime(r *http.Request) time.Time {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}

func statusFor(err error) int {
	if engine.IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
