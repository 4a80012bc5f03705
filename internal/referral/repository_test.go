package referral

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

var codeColumns = []string{
	"code", "discount_percent", "attribution", "is_active", "max_redemptions",
	"redemption_count", "expires_at", "created_at",
}

func TestGetCode(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM referral_codes WHERE code").
		WithArgs("SPRING20").
		WillReturnRows(sqlmock.NewRows(codeColumns).
			AddRow("SPRING20", 20, "influencer:anna", true, 100, 3, nil, created))

	code, err := repo.GetCode(context.Background(), "SPRING20")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, 20, code.DiscountPercent)
	assert.Equal(t, "influencer:anna", code.Attribution)
	require.NotNil(t, code.MaxRedemptions)
	assert.Equal(t, 100, *code.MaxRedemptions)
	assert.Nil(t, code.ExpiresAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCodeNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM referral_codes WHERE code").
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(codeColumns))

	code, err := repo.GetCode(context.Background(), "NOPE")
	assert.NoError(t, err)
	assert.Nil(t, code)
}

func TestHasRedeemed(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery("FROM referral_redemptions").
		WithArgs("SPRING20", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	redeemed, err := repo.HasRedeemed(context.Background(), "SPRING20", userID)
	require.NoError(t, err)
	assert.True(t, redeemed)
}

func TestRedeemCommits(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE referral_codes SET redemption_count").
		WithArgs("SPRING20").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO referral_redemptions").
		WithArgs(sqlmock.AnyArg(), "SPRING20", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Redeem(context.Background(), &Redemption{
		ID:         uuid.New(),
		Code:       "SPRING20",
		UserID:     uuid.New(),
		RedeemedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemLimitReachedRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE referral_codes SET redemption_count").
		WithArgs("SPRING20").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), &Redemption{ID: uuid.New(), Code: "SPRING20", UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}
