package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nutriguide/onboarding-backend/internal/nutrition"
	"nutriguide/onboarding-backend/pkg/workflows"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrInvalidTransition = workflows.ErrInvalidTransition
	ErrIncompleteProfile = errors.New("profile is missing body metrics")
)

// AnswersSource provides the onboarding answers collected before sign-up.
type AnswersSource interface {
	GetAnswers(ctx context.Context, ownerKey string) (map[string]any, error)
}

type Service struct {
	repo         Repository
	answers      AnswersSource
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(repo Repository, answers AnswersSource, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		answers:      answers,
		stateMachine: workflows.NewStateMachine(),
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) newProfile(userID string) *UserProfile {
	now := s.now().UTC()
	return &UserProfile{
		UserID:           userID,
		OnboardingStatus: workflows.StatusNotStarted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// GetProfile returns a fresh, unsaved profile for users who have none.
func (s *Service) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		profile = s.newProfile(userID)
	}
	profile.OnboardingStatus = workflows.Normalize(profile.OnboardingStatus)
	return s.withTransitions(profile), nil
}

func (s *Service) withTransitions(profile *UserProfile) *UserProfile {
	profile.NextStatuses = s.stateMachine.GetAllowedTransitions(profile.OnboardingStatus)
	return profile
}

// AccountCreated records that userID owns an account. It is idempotent and
// leaves profiles that are already past account creation untouched.
func (s *Service) AccountCreated(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.GetProfile(ctx, userID.String())
	if err != nil {
		return err
	}

	status, changed := s.stateMachine.Advance(profile.OnboardingStatus, workflows.StatusAccountCreated)
	if !changed {
		return nil
	}
	profile.OnboardingStatus = status
	profile.UpdatedAt = s.now().UTC()

	if err := s.repo.SaveProfile(ctx, s.withTransitions(profile)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	s.logger.Info("Profile linked to account", zap.String("user_id", userID.String()))
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Goal != nil {
		profile.Goal = *req.Goal
	}
	if req.Sex != nil {
		profile.Sex = *req.Sex
	}
	if req.BirthYear != nil {
		profile.BirthYear = *req.BirthYear
	}
	if req.HeightCm != nil {
		profile.HeightCm = *req.HeightCm
	}
	if req.WeightKg != nil {
		profile.WeightKg = *req.WeightKg
	}
	if req.TargetWeightKg != nil {
		profile.TargetWeightKg = *req.TargetWeightKg
	}
	if req.ActivityLevel != nil {
		profile.ActivityLevel = *req.ActivityLevel
	}
	if req.DietPreference != nil {
		profile.DietPreference = *req.DietPreference
	}
	if req.Notifications != nil {
		profile.Notifications = *req.Notifications
	}

	if status, changed := s.stateMachine.Advance(profile.OnboardingStatus, workflows.StatusInProgress); changed {
		profile.OnboardingStatus = status
	}
	profile.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveProfile(ctx, s.withTransitions(profile)); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// CompleteOnboarding copies the answers stored under ownerKey into the
// user's profile and marks onboarding as completed. Only profiles whose
// account creation was recorded can complete.
func (s *Service) CompleteOnboarding(ctx context.Context, userID, ownerKey string) (*UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := s.stateMachine.Transition(profile.OnboardingStatus, workflows.StatusCompleted)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.GetAnswers(ctx, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding answers: %w", err)
	}

	applyAnswers(profile, answers)
	profile.Answers = answers
	profile.OnboardingStatus = next
	profile.UpdatedAt = s.now().UTC()

	if err := s.repo.SaveProfile(ctx, s.withTransitions(profile)); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Onboarding completed",
		zap.String("user_id", userID),
		zap.Int("answers", len(answers)))
	return profile, nil
}

// Targets computes nutrition targets from the stored profile.
func (s *Service) Targets(ctx context.Context, userID string) (*nutrition.Targets, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if profile.BirthYear == 0 || profile.WeightKg == 0 || profile.HeightCm == 0 {
		return nil, ErrIncompleteProfile
	}

	targets, err := nutrition.DailyTargets(nutrition.Profile{
		Sex:      nutrition.Sex(profile.Sex),
		AgeYears: s.now().Year() - profile.BirthYear,
		WeightKg: profile.WeightKg,
		HeightCm: profile.HeightCm,
		Activity: nutrition.ActivityLevel(profile.ActivityLevel),
	}, nutrition.Goal(profile.Goal))
	if err != nil {
		return nil, err
	}
	return &targets, nil
}
