package onboarding

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswersRepository persists answer bags. Reads and writes are wholesale.
type AnswersRepository interface {
	Get(ctx context.Context, ownerKey string) (*Answers, error)
	Put(ctx context.Context, answers *Answers) error
	Delete(ctx context.Context, ownerKey string) error
}

type gormAnswersRepository struct {
	db *gorm.DB
}

func NewAnswersRepository(db *gorm.DB) AnswersRepository {
	return &gormAnswersRepository{db: db}
}

// Get returns nil, nil when no answers are stored for ownerKey.
func (r *gormAnswersRepository) Get(ctx context.Context, ownerKey string) (*Answers, error) {
	var answers Answers
	err := r.db.WithContext(ctx).Where("owner_key = ?", ownerKey).First(&answers).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answers, nil
}

func (r *gormAnswersRepository) Put(ctx context.Context, answers *Answers) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(answers).Error
}

func (r *gormAnswersRepository) Delete(ctx context.Context, ownerKey string) error {
	return r.db.WithContext(ctx).Where("owner_key = ?", ownerKey).Delete(&Answers{}).Error
}
