package referral

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrLimitReached = errors.New("redemption limit reached")

type Repository interface {
	GetCode(ctx context.Context, code string) (*Code, error)
	HasRedeemed(ctx context.Context, code string, userID uuid.UUID) (bool, error)
	Redeem(ctx context.Context, redemption *Redemption) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetCode(ctx context.Context, code string) (*Code, error) {
	var c Code
	err := r.db.GetContext(ctx, &c, `
		SELECT code, discount_percent, attribution, is_active, max_redemptions,
			redemption_count, expires_at, created_at
		FROM referral_codes WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) HasRedeemed(ctx context.Context, code string, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM referral_redemptions WHERE code = $1 AND user_id = $2)", code, userID)
	return exists, err
}

// Redeem bumps the counter only while it is under the limit, then records
// the redemption, in one transaction.
func (r *postgresRepository) Redeem(ctx context.Context, redemption *Redemption) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE referral_codes SET redemption_count = redemption_count + 1
		WHERE code = $1 AND (max_redemptions IS NULL OR redemption_count < max_redemptions)`,
		redemption.Code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLimitReached
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO referral_redemptions (id, code, user_id, redeemed_at)
		VALUES (:id, :code, :user_id, :redeemed_at)`, redemption)
	if err != nil {
		return err
	}

	return tx.Commit()
}
