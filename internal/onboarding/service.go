package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"nutriguide/onboarding-backend/pkg/workflows"
)

var ErrInvalidOwnerKey = errors.New("owner key is required")

type Service interface {
	Flow() FlowResponse
	StepInfo(stepID string) workflows.StepInfo
	NextStep(stepID string) (workflows.StepDefinition, bool)
	PreviousStep(stepID string) (workflows.StepDefinition, bool)
	Progress(stepID string) Progress

	GetAnswers(ctx context.Context, ownerKey string) (map[string]any, error)
	SaveAnswers(ctx context.Context, ownerKey string, answers map[string]any) error
	ClearAnswers(ctx context.Context, ownerKey string) error
}

type onboardingService struct {
	flow   *workflows.Sequencer
	repo   AnswersRepository
	logger *zap.Logger
}

func NewService(flow *workflows.Sequencer, repo AnswersRepository, logger *zap.Logger) Service {
	return &onboardingService{
		flow:   flow,
		repo:   repo,
		logger: logger,
	}
}

func (s *onboardingService) Flow() FlowResponse {
	return FlowResponse{
		Steps:               s.flow.Steps(),
		TotalNavigableSteps: s.flow.TotalNavigableSteps(),
	}
}

func (s *onboardingService) StepInfo(stepID string) workflows.StepInfo {
	return s.flow.StepInfo(stepID)
}

func (s *onboardingService) NextStep(stepID string) (workflows.StepDefinition, bool) {
	return s.flow.NextStep(stepID)
}

func (s *onboardingService) PreviousStep(stepID string) (workflows.StepDefinition, bool) {
	return s.flow.PreviousStep(stepID)
}

func (s *onboardingService) Progress(stepID string) Progress {
	current := s.flow.CurrentStepNumber(stepID)
	total := s.flow.TotalNavigableSteps()

	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(current)/float64(total)*1000) / 10
	}

	return Progress{
		StepID:          stepID,
		CurrentStep:     current,
		TotalSteps:      total,
		PercentComplete: percent,
	}
}

// GetAnswers returns an empty bag when nothing has been saved yet.
func (s *onboardingService) GetAnswers(ctx context.Context, ownerKey string) (map[string]any, error) {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return nil, ErrInvalidOwnerKey
	}

	stored, err := s.repo.Get(ctx, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	answers := map[string]any{}
	if stored == nil || len(stored.Data) == 0 {
		return answers, nil
	}

	if err := json.Unmarshal(stored.Data, &answers); err != nil {
		// a corrupt bag is treated like a missing one
		s.logger.Warn("Discarding unreadable onboarding answers",
			zap.String("owner_key", ownerKey),
			zap.Error(err))
		return map[string]any{}, nil
	}
	return answers, nil
}

// SaveAnswers replaces the whole bag for ownerKey.
func (s *onboardingService) SaveAnswers(ctx context.Context, ownerKey string, answers map[string]any) error {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return ErrInvalidOwnerKey
	}
	if answers == nil {
		answers = map[string]any{}
	}

	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	now := time.Now()
	record := &Answers{
		OwnerKey:  ownerKey,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, record); err != nil {
		return fmt.Errorf("failed to save answers: %w", err)
	}

	s.logger.Debug("Onboarding answers saved",
		zap.String("owner_key", ownerKey),
		zap.Int("keys", len(answers)))
	return nil
}

func (s *onboardingService) ClearAnswers(ctx context.Context, ownerKey string) error {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return ErrInvalidOwnerKey
	}
	return s.repo.Delete(ctx, ownerKey)
}
