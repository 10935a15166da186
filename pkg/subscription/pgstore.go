package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgx the store needs. Satisfied by *pgxpool.Pool and
// pgx.Tx, so callers can run the store inside their own transactions.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the PostgreSQL MirrorStore backed by the flow_subscriptions
// table. Constraint violations from the database propagate unchanged; see
// pkg/pg for classifiers.
type PGStore struct {
	db DB
}

// NewPGStore creates a PGStore. Panics on a nil db to fail fast.
func NewPGStore(db DB) *PGStore {
	if db == nil {
		panic("subscription: db is required")
	}
	return &PGStore{db: db}
}

const mirrorColumns = `id, remote_customer_id, subscription_id, plan_id, coupon_id,
	trial_starts_at, trial_ends_at, starts_at, ends_at, created_at, updated_at`

func scanMirror(row pgx.Row) (*Mirror, error) {
	var m Mirror
	err := row.Scan(
		&m.ID, &m.CustomerID, &m.SubscriptionID, &m.PlanID, &m.CouponID,
		&m.TrialStartsAt, &m.TrialEndsAt, &m.StartsAt, &m.EndsAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMirrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PGStore) Get(ctx context.Context, customerID, subscriptionID string) (*Mirror, error) {
	return scanMirror(s.db.QueryRow(ctx,
		`SELECT `+mirrorColumns+` FROM flow_subscriptions
		 WHERE remote_customer_id = $1 AND subscription_id = $2`,
		customerID, subscriptionID))
}

func (s *PGStore) First(ctx context.Context, customerID string) (*Mirror, error) {
	return scanMirror(s.db.QueryRow(ctx,
		`SELECT `+mirrorColumns+` FROM flow_subscriptions
		 WHERE remote_customer_id = $1 ORDER BY id LIMIT 1`,
		customerID))
}

func (s *PGStore) List(ctx context.Context, customerID string, limit, offset int) ([]Mirror, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+mirrorColumns+` FROM flow_subscriptions
		 WHERE remote_customer_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mirrors []Mirror
	for rows.Next() {
		var m Mirror
		if err := rows.Scan(
			&m.ID, &m.CustomerID, &m.SubscriptionID, &m.PlanID, &m.CouponID,
			&m.TrialStartsAt, &m.TrialEndsAt, &m.StartsAt, &m.EndsAt,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		mirrors = append(mirrors, m)
	}
	return mirrors, rows.Err()
}

func (s *PGStore) Exists(ctx context.Context, customerID, subscriptionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM flow_subscriptions
			WHERE remote_customer_id = $1 AND subscription_id = $2
		)`,
		customerID, subscriptionID).Scan(&exists)
	return exists, err
}

func (s *PGStore) ExistsForPlan(ctx context.Context, customerID, planID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM flow_subscriptions
			WHERE remote_customer_id = $1 AND plan_id = $2
		)`,
		customerID, planID).Scan(&exists)
	return exists, err
}

func (s *PGStore) DistinctPlanIDs(ctx context.Context, customerID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT plan_id FROM flow_subscriptions
		 WHERE remote_customer_id = $1 ORDER BY plan_id`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []string
	for rows.Next() {
		var planID string
		if err := rows.Scan(&planID); err != nil {
			return nil, err
		}
		plans = append(plans, planID)
	}
	return plans, rows.Err()
}

func (s *PGStore) Create(ctx context.Context, m *Mirror) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO flow_subscriptions
			(remote_customer_id, subscription_id, plan_id, coupon_id,
			 trial_starts_at, trial_ends_at, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		m.CustomerID, m.SubscriptionID, m.PlanID, m.CouponID,
		m.TrialStartsAt, m.TrialEndsAt, m.StartsAt, m.EndsAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (s *PGStore) UpdatePeriods(ctx context.Context, customerID, subscriptionID string, trialEndsAt, startsAt, endsAt *time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE flow_subscriptions
		 SET trial_ends_at = $3, starts_at = $4, ends_at = $5, updated_at = now()
		 WHERE remote_customer_id = $1 AND subscription_id = $2`,
		customerID, subscriptionID, trialEndsAt, startsAt, endsAt)
	return err
}

func (s *PGStore) UpdateCoupon(ctx context.Context, customerID, subscriptionID string, couponID *string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE flow_subscriptions
		 SET coupon_id = $3, updated_at = now()
		 WHERE remote_customer_id = $1 AND subscription_id = $2`,
		customerID, subscriptionID, couponID)
	return err
}

func (s *PGStore) Delete(ctx context.Context, customerID, subscriptionID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM flow_subscriptions
		 WHERE remote_customer_id = $1 AND subscription_id = $2`,
		customerID, subscriptionID)
	return err
}

func (s *PGStore) DeleteAll(ctx context.Context, customerID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM flow_subscriptions WHERE remote_customer_id = $1`,
		customerID)
	return err
}

var _ MirrorStore = (*PGStore)(nil)
