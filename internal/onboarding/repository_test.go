package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestAnswersPutReplacesWholeBag(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewAnswersRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "onboarding_answers" .+ ON CONFLICT \("owner_key"\) DO UPDATE SET "data"="excluded"\."data","updated_at"="excluded"\."updated_at"`).
		WithArgs("device-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()

	now := time.Now()
	err := repo.Put(context.Background(), &Answers{
		OwnerKey:  "device-1",
		Data:      []byte(`{"goal":"lose"}`),
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswersGetMissing(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewAnswersRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "onboarding_answers" WHERE owner_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_key", "data", "created_at", "updated_at"}))

	answers, err := repo.Get(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Nil(t, answers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswersDelete(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewAnswersRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "onboarding_answers" WHERE owner_key = \$1`).
		WithArgs("device-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "device-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
