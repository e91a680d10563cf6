package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelCebreiro/payFriendly/store"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestRouter(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	h := NewHandler(store.NewMemory())
	return h, NewRouter(h)
}

func doRequest(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}

func createGroup(t *testing.T, router *chi.Mux, name string, amount float64, frequency string) GroupDTO {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/groups", CreateGroupRequest{
		Name:           name,
		ExpectedAmount: amount,
		Frequency:      frequency,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[GroupDTO](t, rec)
}

func addParticipant(t *testing.T, router *chi.Mux, groupID, name string) ParticipantDTO {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/groups/"+groupID+"/participants",
		AddParticipantRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[ParticipantDTO](t, rec)
}

func recordPayment(t *testing.T, router *chi.Mux, groupID, participantID string, amount float64, date string) PaymentDTO {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/groups/"+groupID+"/payments",
		RecordPaymentRequest{ParticipantID: participantID, Amount: amount, PaymentDate: date})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[PaymentDTO](t, rec)
}

func verifyPayment(t *testing.T, router *chi.Mux, paymentID string) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/payments/"+paymentID+"/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
}

// =============================================================================
// GROUP LIFECYCLE
// =============================================================================

func TestCreateAndGetGroup(t *testing.T) {
	_, router := newTestRouter(t)

	created := createGroup(t, router, "Flat Rent", 300, "monthly")
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.PublicID)
	assert.Equal(t, "monthly", created.Frequency)
	assert.True(t, created.Active)

	rec := doRequest(t, router, http.MethodGet, "/api/groups/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[GroupDTO](t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 300.0, got.ExpectedAmount)

	rec = doRequest(t, router, http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]GroupDTO](t, rec), 1)
}

func TestCreateGroup_Validation(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/groups",
		CreateGroupRequest{Name: "", ExpectedAmount: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/groups",
		CreateGroupRequest{Name: "No Money", ExpectedAmount: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGroup_UnknownFrequencyDefaultsToMonthly(t *testing.T) {
	_, router := newTestRouter(t)

	created := createGroup(t, router, "Odd", 100, "fortnightly-ish")
	assert.Equal(t, "monthly", created.Frequency)
}

func TestGetGroup_NotFound(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/groups/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.NotEmpty(t, resp.Error)
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

func TestParticipantLifecycle(t *testing.T) {
	_, router := newTestRouter(t)
	group := createGroup(t, router, "Gym", 50, "weekly")

	ana := addParticipant(t, router, group.ID, "Ana")
	addParticipant(t, router, group.ID, "Bruno")

	rec := doRequest(t, router, http.MethodGet, "/api/groups/"+group.ID+"/participants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]ParticipantDTO](t, rec), 2)

	rec = doRequest(t, router, http.MethodDelete,
		"/api/groups/"+group.ID+"/participants/"+ana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Active roster shrinks, the full roster keeps the record.
	rec = doRequest(t, router, http.MethodGet, "/api/groups/"+group.ID+"/participants", nil)
	assert.Len(t, decode[[]ParticipantDTO](t, rec), 1)
	rec = doRequest(t, router, http.MethodGet, "/api/groups/"+group.ID+"/participants?active=false", nil)
	assert.Len(t, decode[[]ParticipantDTO](t, rec), 2)
}

func TestAddParticipant_GroupNotFound(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/groups/ghost/participants",
		AddParticipantRequest{Name: "Ana"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPaymentFlow_VerificationGatesCollection(t *testing.T) {
	_, router := newTestRouter(t)
	group := createGroup(t, router, "Flat Rent", 300, "monthly")
	ana := addParticipant(t, router, group.ID, "Ana")

	payment := recordPayment(t, router, group.ID, ana.ID, 120, "2024-06-12")
	assert.False(t, payment.Verified)

	statsPath := "/api/groups/" + group.ID + "/stats?at=2024-06-15"

	rec := doRequest(t, router, http.MethodGet, statsPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[GroupStatsDTO](t, rec)
	assert.Equal(t, 0.0, stats.CurrentPeriod.Collected)
	assert.Equal(t, 300.0, stats.CurrentPeriod.Pending)
	// Unverified payments still show in the period listing.
	assert.Len(t, stats.CurrentPeriod.Payments, 1)

	verifyPayment(t, router, payment.ID)

	rec = doRequest(t, router, http.MethodGet, statsPath, nil)
	stats = decode[GroupStatsDTO](t, rec)
	assert.Equal(t, 120.0, stats.CurrentPeriod.Collected)
	assert.Equal(t, 180.0, stats.CurrentPeriod.Pending)
	assert.Equal(t, "2024-06-01", stats.CurrentPeriod.PeriodStart)
	assert.Equal(t, "2024-06-30", stats.CurrentPeriod.PeriodEnd)
}

func TestRecordPayment_ParticipantFromAnotherGroup(t *testing.T) {
	_, router := newTestRouter(t)
	rent := createGroup(t, router, "Rent", 300, "monthly")
	gym := createGroup(t, router, "Gym", 50, "weekly")
	ana := addParticipant(t, router, rent.ID, "Ana")

	rec := doRequest(t, router, http.MethodPost, "/api/groups/"+gym.ID+"/payments",
		RecordPaymentRequest{ParticipantID: ana.ID, Amount: 50})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyPayment_NotFound(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/payments/ghost/verify", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestNextPayersEndpoint(t *testing.T) {
	_, router := newTestRouter(t)
	group := createGroup(t, router, "Flat Rent", 300, "monthly")
	ana := addParticipant(t, router, group.ID, "Ana")
	addParticipant(t, router, group.ID, "Bruno")

	paid := recordPayment(t, router, group.ID, ana.ID, 300,
		time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02"))
	verifyPayment(t, router, paid.ID)

	rec := doRequest(t, router, http.MethodGet,
		"/api/dashboard/next-payers?group_id="+group.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payers := decode[[]NextPayerDTO](t, rec)
	require.Len(t, payers, 2)

	// Ana paid 10 days ago; Bruno just joined and has zero days of tenure.
	assert.Equal(t, "Ana", payers[0].Name)
	assert.Equal(t, 10, payers[0].DaysSinceLast)
	require.NotNil(t, payers[0].LastPayment)
	assert.Equal(t, "Bruno", payers[1].Name)
	assert.Nil(t, payers[1].LastPayment)
}

func TestReassignEndpoint(t *testing.T) {
	_, router := newTestRouter(t)
	group := createGroup(t, router, "Flat Rent", 300, "monthly")
	ana := addParticipant(t, router, group.ID, "Ana")
	addParticipant(t, router, group.ID, "Bruno")

	paid := recordPayment(t, router, group.ID, ana.ID, 300,
		time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02"))
	verifyPayment(t, router, paid.ID)

	rec := doRequest(t, router, http.MethodPost, "/api/groups/"+group.ID+"/reassign",
		ReassignRequest{SkipParticipantID: ana.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ReassignResponse](t, rec)

	assert.Equal(t, "Ana", resp.Skipped.Name)
	require.NotNil(t, resp.Next)
	assert.Equal(t, "Bruno", resp.Next.Name)
	require.Len(t, resp.Ranking, 2)
	assert.Equal(t, "Ana", resp.Ranking[len(resp.Ranking)-1].Name)
}

func TestReassignEndpoint_UnknownParticipant(t *testing.T) {
	_, router := newTestRouter(t)
	group := createGroup(t, router, "Flat Rent", 300, "monthly")
	addParticipant(t, router, group.ID, "Ana")

	rec := doRequest(t, router, http.MethodPost, "/api/groups/"+group.ID+"/reassign",
		ReassignRequest{SkipParticipantID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PUBLIC SHARE LINK
// =============================================================================

func TestPublicOverdueEndpoint(t *testing.T) {
	_, router := newTestRouter(t)
	group := createGroup(t, router, "Flat Rent", 300, "monthly")
	ana := addParticipant(t, router, group.ID, "Ana")

	// A verified payment 60 days back puts Ana well past the strict
	// overdue threshold of 45 days for a monthly group.
	paid := recordPayment(t, router, group.ID, ana.ID, 300,
		time.Now().UTC().AddDate(0, 0, -60).Format("2006-01-02"))
	verifyPayment(t, router, paid.ID)

	rec := doRequest(t, router, http.MethodGet, "/api/public/overdue/"+group.PublicID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[PublicOverdueDTO](t, rec)

	assert.Equal(t, "Flat Rent", view.GroupName)
	assert.Equal(t, 300.0, view.Pending)
	require.Len(t, view.Overdue, 1)
	assert.Equal(t, "Ana", view.Overdue[0].Name)
	assert.Equal(t, 60, view.Overdue[0].DaysOverdue)
}

func TestPublicOverdueEndpoint_UnknownID(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/public/overdue/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarioCatalogAndLoad(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[[]ScenarioDTO](t, rec)
	require.NotEmpty(t, catalog)

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: catalog[0].ID})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/groups", nil)
	assert.NotEmpty(t, decode[[]GroupDTO](t, rec))

	rec = doRequest(t, router, http.MethodGet, "/api/scenarios/current", nil)
	current := decode[map[string]string](t, rec)
	assert.Equal(t, catalog[0].ID, current["scenario_id"])
}

func TestLoadScenario_Unknown(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// REMINDER SCHEDULER
// =============================================================================

func TestReminderSchedulerRecordsRuns(t *testing.T) {
	h, router := newTestRouter(t)
	group := createGroup(t, router, "Flat Rent", 300, "monthly")
	addParticipant(t, router, group.ID, "Ana")

	scheduler := NewReminderScheduler(h.Store, h)
	scheduler.RunNow()

	rec := doRequest(t, router, http.MethodGet, "/api/reminders/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]ReminderRunDTO](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].GroupsChecked)
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}
