package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"zignasa/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameTaken     = errors.New("team name already taken")
	ErrAlreadyCompleted  = errors.New("team payment already completed")
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrPaymentUsed       = errors.New("payment already used by another team")
)

const uniqueViolation = "23505"

type Repository interface {
	CreateTeam(ctx context.Context, team *Team) (*Team, error)
	CreateRegistration(ctx context.Context, reg *Registration) (*Registration, error)
	TeamNameExists(ctx context.Context, name string) (bool, error)
	GetTeam(ctx context.Context, id int64) (*Team, error)
	ListRegistrations(ctx context.Context, teamID int64) ([]Registration, error)
	MarkInitiated(ctx context.Context, id int64, orderID string, amountInPaise int64) error
	MarkCompleted(ctx context.Context, id int64, orderID, paymentID string, amountInPaise int64) error
	MarkFailed(ctx context.Context, id int64) error
	MarkRefunded(ctx context.Context, id int64) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) CreateTeam(ctx context.Context, team *Team) (*Team, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(team).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "teams", time.Since(start), err)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTeamNameTaken
		}
		return nil, err
	}
	return team, nil
}

func (r *repository) CreateRegistration(ctx context.Context, reg *Registration) (*Registration, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(reg).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "registrations", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return reg, nil
}

// TeamNameExists compares case-insensitively and ignores Failed teams,
// matching the unique index.
func (r *repository) TeamNameExists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Team)(nil)).
		Where("lower(team_name) = lower(?)", strings.TrimSpace(name)).
		Where("payment_status <> ?", StatusFailed).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teams", time.Since(start), err)

	return exists, err
}

func (r *repository) GetTeam(ctx context.Context, id int64) (*Team, error) {
	start := time.Now()
	team := new(Team)
	err := r.db.NewSelect().Model(team).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "teams", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *repository) ListRegistrations(ctx context.Context, teamID int64) ([]Registration, error) {
	start := time.Now()
	var regs []Registration
	err := r.db.NewSelect().
		Model(&regs).
		Where("team_id = ?", teamID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "registrations", time.Since(start), err)

	return regs, err
}

func (r *repository) MarkInitiated(ctx context.Context, id int64, orderID string, amountInPaise int64) error {
	return r.transition(ctx, id, StatusInitiated, []PaymentStatus{StatusPending, StatusInitiated}, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("razorpay_order_id = ?", orderID).
			Set("amount_in_paise = ?", amountInPaise).
			Set("payment_initiated_at = current_timestamp")
	})
}

// MarkCompleted records the payment. A payment id already stored on another
// team fails with ErrPaymentUsed.
func (r *repository) MarkCompleted(ctx context.Context, id int64, orderID, paymentID string, amountInPaise int64) error {
	err := r.transition(ctx, id, StatusCompleted, []PaymentStatus{StatusPending, StatusInitiated}, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("razorpay_order_id = ?", orderID).
			Set("razorpay_payment_id = ?", paymentID).
			Set("amount_in_paise = ?", amountInPaise).
			Set("payment_verified_at = current_timestamp")
	})
	if err != nil && isUniqueViolation(err) {
		return ErrPaymentUsed
	}
	return err
}

func (r *repository) MarkFailed(ctx context.Context, id int64) error {
	return r.transition(ctx, id, StatusFailed, []PaymentStatus{StatusPending, StatusInitiated}, nil)
}

func (r *repository) MarkRefunded(ctx context.Context, id int64) error {
	return r.transition(ctx, id, StatusRefunded, []PaymentStatus{StatusCompleted}, nil)
}

// transition moves a team to status `to` only if it is currently in one of
// `from`. The check and the write are a single UPDATE.
func (r *repository) transition(ctx context.Context, id int64, to PaymentStatus, from []PaymentStatus, set func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	start := time.Now()
	q := r.db.NewUpdate().
		Model((*Team)(nil)).
		Set("payment_status = ?", to).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Where("payment_status IN (?)", bun.In(allowed))
	if set != nil {
		q = set(q)
	}
	result, err := q.Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "teams", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	current, err := r.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	if to == StatusCompleted && current.PaymentStatus == StatusCompleted {
		return ErrAlreadyCompleted
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.PaymentStatus, to)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}
