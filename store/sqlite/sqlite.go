/*
Package sqlite provides the SQLite-backed implementation of store.Store.

KEY TABLES:
  groups:        group configuration (amount, frequency, public share ID)
  participants:  group members, soft-deactivated rather than deleted
  payments:      contribution history; verification flips a single flag
  reminder_runs: audit trail of background reminder sweeps

INDEXES:
  idx_payments_group_date:             period window queries (hot path)
  idx_payments_participant_verified:   "last verified payment" lookups
  idx_groups_public_id:                public share-link resolution

AMOUNTS AND DATES:
  Money amounts are stored as TEXT in decimal string form and parsed with
  shopspring/decimal; dates as RFC 3339 TEXT in UTC. SQLite's numeric
  affinity would silently float-ify amounts otherwise.

WAL MODE:
  The database is opened with WAL for better read concurrency and crash
  recovery. A sync.RWMutex guards the connection; with PostgreSQL the
  database's own concurrency control would take over.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ManuelCebreiro/payFriendly/engine"
	"github.com/ManuelCebreiro/payFriendly/store"
)

// timeFormat is RFC 3339 with a fixed-width fractional second, so that
// lexicographic comparison of stored values matches chronological order
// in SQL range queries.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		public_id TEXT NOT NULL UNIQUE,
		expected_amount TEXT NOT NULL,
		frequency TEXT NOT NULL,
		created_at TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS participants (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id),
		display_name TEXT NOT NULL,
		email TEXT,
		joined_at TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id),
		participant_id TEXT NOT NULL REFERENCES participants(id),
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		notes TEXT,
		receipt_url TEXT,
		verified INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS reminder_runs (
		id TEXT PRIMARY KEY,
		ran_at TEXT NOT NULL,
		groups_checked INTEGER NOT NULL,
		notifications INTEGER NOT NULL,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_groups_public_id ON groups(public_id);
	CREATE INDEX IF NOT EXISTS idx_participants_group ON participants(group_id, active);
	CREATE INDEX IF NOT EXISTS idx_payments_group_date ON payments(group_id, payment_date);
	CREATE INDEX IF NOT EXISTS idx_payments_participant_verified ON payments(participant_id, verified, payment_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// GROUPS
// =============================================================================

func (s *Store) CreateGroup(ctx context.Context, g store.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO groups (id, name, description, public_id, expected_amount, frequency, created_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(g.ID), g.Name, g.Description, g.PublicID,
		g.ExpectedAmount.String(), string(g.Frequency),
		g.CreatedAt.UTC().Format(timeFormat), boolToInt(g.Active),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (s *Store) Group(ctx context.Context, id engine.GroupID) (store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, public_id, expected_amount, frequency, created_at, active
		FROM groups WHERE id = ? AND active = 1`, string(id))

	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return store.Group{}, &engine.GroupNotFoundError{ID: id}
	}
	return g, err
}

func (s *Store) GroupByPublicID(ctx context.Context, publicID string) (store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, public_id, expected_amount, frequency, created_at, active
		FROM groups WHERE public_id = ?`, publicID)

	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return store.Group{}, engine.ErrGroupNotFound
	}
	return g, err
}

func (s *Store) ListGroups(ctx context.Context) ([]store.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, public_id, expected_amount, frequency, created_at, active
		FROM groups WHERE active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []store.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

func (s *Store) AddParticipant(ctx context.Context, p store.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, group_id, display_name, email, joined_at, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.ID), string(p.GroupID), p.DisplayName, p.Email,
		p.JoinedAt.UTC().Format(timeFormat), boolToInt(p.Active),
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (s *Store) Participant(ctx context.Context, id engine.ParticipantID) (store.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, display_name, email, joined_at, active
		FROM participants WHERE id = ?`, string(id))

	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return store.Participant{}, &engine.ParticipantNotFoundError{ID: id}
	}
	return p, err
}

func (s *Store) Participants(ctx context.Context, groupID engine.GroupID, activeOnly bool) ([]store.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, group_id, display_name, email, joined_at, active
		FROM participants WHERE group_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY joined_at`

	rows, err := s.db.QueryContext(ctx, query, string(groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []store.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Store) DeactivateParticipant(ctx context.Context, id engine.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET active = 0 WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to deactivate participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &engine.ParticipantNotFoundError{ID: id}
	}
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) RecordPayment(ctx context.Context, p store.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, group_id, participant_id, amount, payment_date, notes, receipt_url, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.GroupID), string(p.ParticipantID),
		p.Amount.String(), p.PaymentDate.UTC().Format(timeFormat),
		p.Notes, p.ReceiptURL, boolToInt(p.Verified),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *Store) VerifyPayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET verified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to verify payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) Payments(ctx context.Context, groupID engine.GroupID) ([]store.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, participant_id, amount, payment_date, notes, receipt_url, verified
		FROM payments WHERE group_id = ? ORDER BY payment_date DESC`, string(groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (s *Store) PaymentsInRange(ctx context.Context, groupID engine.GroupID, from, to time.Time) ([]store.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, participant_id, amount, payment_date, notes, receipt_url, verified
		FROM payments
		WHERE group_id = ? AND payment_date >= ? AND payment_date <= ?
		ORDER BY payment_date DESC`,
		string(groupID),
		from.UTC().Format(timeFormat),
		to.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments in range: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// =============================================================================
// REMINDER RUNS
// =============================================================================

func (s *Store) RecordReminderRun(ctx context.Context, run store.ReminderRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_runs (id, ran_at, groups_checked, notifications, notes)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.RanAt.UTC().Format(timeFormat),
		run.GroupsChecked, run.Notifications, run.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to record reminder run: %w", err)
	}
	return nil
}

func (s *Store) ReminderRuns(ctx context.Context, limit int) ([]store.ReminderRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ran_at, groups_checked, notifications, notes
		FROM reminder_runs ORDER BY ran_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder runs: %w", err)
	}
	defer rows.Close()

	var runs []store.ReminderRun
	for rows.Next() {
		var run store.ReminderRun
		var ranAt string
		if err := rows.Scan(&run.ID, &ranAt, &run.GroupsChecked, &run.Notifications, &run.Notes); err != nil {
			return nil, err
		}
		if run.RanAt, err = time.Parse(timeFormat, ranAt); err != nil {
			return nil, fmt.Errorf("corrupt ran_at for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (store.Group, error) {
	var g store.Group
	var id, frequency, amount, createdAt string
	var active int

	err := row.Scan(&id, &g.Name, &g.Description, &g.PublicID, &amount, &frequency, &createdAt, &active)
	if err != nil {
		return store.Group{}, err
	}

	g.ID = engine.GroupID(id)
	g.Frequency = engine.ParseFrequency(frequency)
	g.Active = active != 0
	if g.ExpectedAmount, err = decimal.NewFromString(amount); err != nil {
		return store.Group{}, fmt.Errorf("corrupt amount for group %s: %w", id, err)
	}
	if g.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return store.Group{}, fmt.Errorf("corrupt created_at for group %s: %w", id, err)
	}
	return g, nil
}

func scanParticipant(row rowScanner) (store.Participant, error) {
	var p store.Participant
	var id, groupID, joinedAt string
	var active int

	err := row.Scan(&id, &groupID, &p.DisplayName, &p.Email, &joinedAt, &active)
	if err != nil {
		return store.Participant{}, err
	}

	p.ID = engine.ParticipantID(id)
	p.GroupID = engine.GroupID(groupID)
	p.Active = active != 0
	if p.JoinedAt, err = time.Parse(timeFormat, joinedAt); err != nil {
		return store.Participant{}, fmt.Errorf("corrupt joined_at for participant %s: %w", id, err)
	}
	return p, nil
}

func collectPayments(rows *sql.Rows) ([]store.Payment, error) {
	var payments []store.Payment
	for rows.Next() {
		var p store.Payment
		var groupID, participantID, amount, paymentDate string
		var verified int

		err := rows.Scan(&p.ID, &groupID, &participantID, &amount, &paymentDate, &p.Notes, &p.ReceiptURL, &verified)
		if err != nil {
			return nil, err
		}

		p.GroupID = engine.GroupID(groupID)
		p.ParticipantID = engine.ParticipantID(participantID)
		p.Verified = verified != 0
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for payment %s: %w", p.ID, err)
		}
		if p.PaymentDate, err = time.Parse(timeFormat, paymentDate); err != nil {
			return nil, fmt.Errorf("corrupt payment_date for payment %s: %w", p.ID, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
