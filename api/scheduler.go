/*
scheduler.go - Automated reminder scheduler

PURPOSE:
  Periodically sweeps all groups, computes the notification feed
  (deadline warnings and overdue alerts), and records each sweep so
  the UI can show when reminders were last evaluated.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each sweep recomputes notifications from current payment history
  - Records every sweep for audit and UI display
  - Nothing is delivered anywhere yet; the run log is the output

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - dashboard/notifications.go: Notification computation
  - handlers.go: ListReminderRuns endpoint
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ManuelCebreiro/payFriendly/dashboard"
	"github.com/ManuelCebreiro/payFriendly/store"
)

// ReminderScheduler periodically evaluates payment reminders.
type ReminderScheduler struct {
	Store         store.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool
	Log           *slog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(s store.Store, handler *Handler) *ReminderScheduler {
	return &ReminderScheduler{
		Store:         s,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Log:           slog.Default(),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Log.Info("reminder scheduler disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	rs.Log.Info("reminder scheduler started", "interval", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.Log.Info("reminder scheduler stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.sweep()

	for {
		select {
		case <-rs.ticker.C:
			rs.sweep()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	groups, err := rs.Store.ListGroups(ctx)
	if err != nil {
		rs.Log.Error("reminder sweep: listing groups", "error", err)
		return
	}

	notifications, err := rs.Handler.Dashboard.Notifications(ctx, now)
	if err != nil {
		rs.Log.Error("reminder sweep: computing notifications", "error", err)
		return
	}

	run := store.ReminderRun{
		ID:            fmt.Sprintf("run-%d", now.UnixNano()),
		RanAt:         now,
		GroupsChecked: len(groups),
		Notifications: len(notifications),
		Notes:         summarize(notifications),
	}
	if err := rs.Store.RecordReminderRun(ctx, run); err != nil {
		rs.Log.Error("reminder sweep: recording run", "error", err)
		return
	}

	if len(notifications) > 0 {
		rs.Log.Info("reminder sweep completed",
			"groups", run.GroupsChecked,
			"notifications", run.Notifications)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.sweep()
}

// NextRunTime returns when the next scheduled sweep will occur.
func (rs *ReminderScheduler) NextRunTime() time.Time {
	return time.Now().Add(rs.CheckInterval)
}

func summarize(notifications []dashboard.Notification) string {
	ids := make([]string, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}
	return strings.Join(ids, ",")
}
