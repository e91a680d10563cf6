package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ManuelCebreiro/payFriendly/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	groups       map[engine.GroupID]Group
	participants map[engine.ParticipantID]Participant
	payments     map[string]Payment
	reminderRuns []ReminderRun
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		groups:       make(map[engine.GroupID]Group),
		participants: make(map[engine.ParticipantID]Participant),
		payments:     make(map[string]Payment),
	}
}

// Groups

func (m *Memory) CreateGroup(_ context.Context, g Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.ID] = g
	return nil
}

func (m *Memory) Group(_ context.Context, id engine.GroupID) (Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok || !g.Active {
		return Group{}, &engine.GroupNotFoundError{ID: id}
	}
	return g, nil
}

func (m *Memory) GroupByPublicID(_ context.Context, publicID string) (Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.groups {
		if g.PublicID == publicID {
			return g, nil
		}
	}
	return Group{}, engine.ErrGroupNotFound
}

func (m *Memory) ListGroups(_ context.Context) ([]Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Group
	for _, g := range m.groups {
		if g.Active {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Participants

func (m *Memory) AddParticipant(_ context.Context, p Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[p.GroupID]; !ok {
		return &engine.GroupNotFoundError{ID: p.GroupID}
	}
	m.participants[p.ID] = p
	return nil
}

func (m *Memory) Participant(_ context.Context, id engine.ParticipantID) (Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.participants[id]
	if !ok {
		return Participant{}, &engine.ParticipantNotFoundError{ID: id}
	}
	return p, nil
}

func (m *Memory) Participants(_ context.Context, groupID engine.GroupID, activeOnly bool) ([]Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Participant
	for _, p := range m.participants {
		if p.GroupID != groupID {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *Memory) DeactivateParticipant(_ context.Context, id engine.ParticipantID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return &engine.ParticipantNotFoundError{ID: id}
	}
	p.Active = false
	m.participants[id] = p
	return nil
}

// Payments

func (m *Memory) RecordPayment(_ context.Context, p Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[p.GroupID]; !ok {
		return &engine.GroupNotFoundError{ID: p.GroupID}
	}
	m.payments[p.ID] = p
	return nil
}

func (m *Memory) VerifyPayment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return engine.ErrPaymentNotFound
	}
	p.Verified = true
	m.payments[id] = p
	return nil
}

func (m *Memory) Payments(_ context.Context, groupID engine.GroupID) ([]Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Payment
	for _, p := range m.payments {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	sortPaymentsDesc(out)
	return out, nil
}

func (m *Memory) PaymentsInRange(_ context.Context, groupID engine.GroupID, from, to time.Time) ([]Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Payment
	for _, p := range m.payments {
		if p.GroupID != groupID {
			continue
		}
		if p.PaymentDate.Before(from) || p.PaymentDate.After(to) {
			continue
		}
		out = append(out, p)
	}
	sortPaymentsDesc(out)
	return out, nil
}

// Reminder runs

func (m *Memory) RecordReminderRun(_ context.Context, run ReminderRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminderRuns = append(m.reminderRuns, run)
	return nil
}

func (m *Memory) ReminderRuns(_ context.Context, limit int) ([]ReminderRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]ReminderRun, len(m.reminderRuns))
	copy(runs, m.reminderRuns)
	sort.Slice(runs, func(i, j int) bool { return runs[i].RanAt.After(runs[j].RanAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *Memory) Close() error { return nil }

// newest first
func sortPaymentsDesc(payments []Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
}
