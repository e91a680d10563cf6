/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the store with realistic demo data so the dashboard has
  something to show without manual setup. Each scenario is a small
  story: a set of groups, members, and a payment history positioned
  relative to "now" so periods, rankings, and alerts come out in
  interesting states.

SCENARIOS:
  flatshare      Monthly rent with a mixed payment history
  holiday-fund   Weekly pool where two members fell behind
  sports-club    Quarterly dues, one member never paid

DESIGN:
  Loaders are additive. Loading a scenario twice creates a second copy
  of its groups (all IDs are fresh UUIDs); there is no destructive
  reset against a shared database.

SEE ALSO:
  - handlers.go: writeJSON/writeError helpers
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/ManuelCebreiro/payFriendly/store"
)

// =============================================================================
// SCENARIO CATALOG
// =============================================================================

type scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, s store.Store, now time.Time) error
}

func scenarios() []scenario {
	return []scenario{
		{
			ID:          "flatshare",
			Name:        "Flatshare Rent",
			Description: "Three flatmates splitting monthly rent, one running late",
			Load:        loadFlatshare,
		},
		{
			ID:          "holiday-fund",
			Name:        "Holiday Fund",
			Description: "Weekly savings pool where two members fell behind",
			Load:        loadHolidayFund,
		},
		{
			ID:          "sports-club",
			Name:        "Sports Club",
			Description: "Quarterly club dues with a member who never paid",
			Load:        loadSportsClub,
		},
	}
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the demo scenario catalog.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	catalog := scenarios()
	dtos := make([]ScenarioDTO, len(catalog))
	for i, s := range catalog {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario seeds the store with one scenario's demo data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, s := range scenarios() {
		if s.ID != req.ScenarioID {
			continue
		}
		if err := s.Load(r.Context(), h.Store, time.Now().UTC()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
		h.currentScenario = s.ID
		writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": s.ID})
		return
	}

	writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
}

// =============================================================================
// SEED HELPERS
// =============================================================================

type seeder struct {
	store store.Store
	now   time.Time
	err   error
}

func (s *seeder) group(ctx context.Context, name, description string, amount float64, freq engine.Frequency) store.Group {
	g := store.Group{
		ID:             engine.GroupID(uuid.NewString()),
		Name:           name,
		Description:    description,
		PublicID:       uuid.NewString(),
		ExpectedAmount: decimal.NewFromFloat(amount),
		Frequency:      freq,
		CreatedAt:      s.now.AddDate(0, -6, 0),
		Active:         true,
	}
	if s.err == nil {
		s.err = s.store.CreateGroup(ctx, g)
	}
	return g
}

func (s *seeder) member(ctx context.Context, g store.Group, name, email string, joinedDaysAgo int) store.Participant {
	p := store.Participant{
		ID:          engine.ParticipantID(uuid.NewString()),
		GroupID:     g.ID,
		DisplayName: name,
		Email:       email,
		JoinedAt:    s.now.AddDate(0, 0, -joinedDaysAgo),
		Active:      true,
	}
	if s.err == nil {
		s.err = s.store.AddParticipant(ctx, p)
	}
	return p
}

func (s *seeder) payment(ctx context.Context, g store.Group, p store.Participant, amount float64, daysAgo int, verified bool, notes string) {
	if s.err != nil {
		return
	}
	s.err = s.store.RecordPayment(ctx, store.Payment{
		ID:            uuid.NewString(),
		GroupID:       g.ID,
		ParticipantID: p.ID,
		Amount:        decimal.NewFromFloat(amount),
		PaymentDate:   s.now.AddDate(0, 0, -daysAgo),
		Notes:         notes,
		Verified:      verified,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadFlatshare(ctx context.Context, st store.Store, now time.Time) error {
	s := &seeder{store: st, now: now}

	rent := s.group(ctx, "Flat 4B Rent", "Monthly rent split three ways", 1200, engine.FreqMonthly)
	maria := s.member(ctx, rent, "María", "maria@example.com", 180)
	diego := s.member(ctx, rent, "Diego", "diego@example.com", 180)
	lucia := s.member(ctx, rent, "Lucía", "lucia@example.com", 90)

	// Two full months of history plus a partial current month. Lucía is
	// the one running late this cycle.
	for monthsAgo := 2; monthsAgo >= 1; monthsAgo-- {
		daysAgo := monthsAgo * 30
		s.payment(ctx, rent, maria, 400, daysAgo+3, true, "")
		s.payment(ctx, rent, diego, 400, daysAgo+1, true, "")
		s.payment(ctx, rent, lucia, 400, daysAgo-2, true, "bank transfer")
	}
	s.payment(ctx, rent, maria, 400, 5, true, "")
	s.payment(ctx, rent, diego, 400, 3, false, "pending verification")

	return s.err
}

func loadHolidayFund(ctx context.Context, st store.Store, now time.Time) error {
	s := &seeder{store: st, now: now}

	fund := s.group(ctx, "Summer Holiday Fund", "Weekly savings toward the August trip", 100, engine.FreqWeekly)
	ana := s.member(ctx, fund, "Ana", "ana@example.com", 120)
	pablo := s.member(ctx, fund, "Pablo", "pablo@example.com", 120)
	carmen := s.member(ctx, fund, "Carmen", "carmen@example.com", 120)
	javier := s.member(ctx, fund, "Javier", "javier@example.com", 60)

	// Ana keeps up weekly. Pablo and Carmen stopped weeks ago, far past
	// the 2x notification threshold. Javier joined and never paid.
	for week := 1; week <= 6; week++ {
		s.payment(ctx, fund, ana, 25, week*7-1, true, "")
	}
	s.payment(ctx, fund, pablo, 25, 30, true, "")
	s.payment(ctx, fund, carmen, 25, 35, true, "")
	_ = javier

	return s.err
}

func loadSportsClub(ctx context.Context, st store.Store, now time.Time) error {
	s := &seeder{store: st, now: now}

	club := s.group(ctx, "Padel Club Dues", "Quarterly court rental dues", 600, engine.FreqQuarterly)
	sergio := s.member(ctx, club, "Sergio", "sergio@example.com", 300)
	elena := s.member(ctx, club, "Elena", "elena@example.com", 300)
	raquel := s.member(ctx, club, "Raquel", "raquel@example.com", 200)

	s.payment(ctx, club, sergio, 200, 100, true, "Q1 dues")
	s.payment(ctx, club, sergio, 200, 20, true, "Q2 dues")
	s.payment(ctx, club, elena, 200, 95, true, "Q1 dues")
	// Raquel has been a member for two quarters without paying.
	_ = raquel

	return s.err
}
