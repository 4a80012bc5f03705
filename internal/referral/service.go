package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeCode trims and upper-cases user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate reports whether code can be applied. A rejected code is not an
// error; err is only set when the store could not be queried.
func (s *Service) Validate(ctx context.Context, code string) (*ValidationResult, error) {
	code = NormalizeCode(code)
	result := &ValidationResult{Code: code}
	if code == "" {
		result.Reason = ReasonEmptyCode
		return result, nil
	}

	c, err := s.repo.GetCode(ctx, code)
	if err != nil {
		s.logger.Error("Referral lookup failed", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}

	if reason := s.rejection(c); reason != "" {
		result.Reason = reason
		return result, nil
	}

	result.Valid = true
	result.DiscountPercent = c.DiscountPercent
	result.Attribution = c.Attribution
	return result, nil
}

func (s *Service) rejection(c *Code) string {
	switch {
	case c == nil:
		return ReasonNotFound
	case !c.IsActive:
		return ReasonInactive
	case c.ExpiresAt != nil && !s.now().Before(*c.ExpiresAt):
		return ReasonExpired
	case c.MaxRedemptions != nil && c.RedemptionCount >= *c.MaxRedemptions:
		return ReasonLimitReached
	}
	return ""
}

// Redeem applies code for userID. Each user may redeem a code once.
func (s *Service) Redeem(ctx context.Context, code string, userID uuid.UUID) (*ValidationResult, error) {
	result, err := s.Validate(ctx, code)
	if err != nil || !result.Valid {
		return result, err
	}

	redeemed, err := s.repo.HasRedeemed(ctx, result.Code, userID)
	if err != nil {
		s.logger.Error("Referral redemption lookup failed", zap.String("code", result.Code), zap.Error(err))
		return nil, fmt.Errorf("failed to check redemption: %w", err)
	}
	if redeemed {
		return &ValidationResult{Code: result.Code, Reason: ReasonAlreadyRedeemed}, nil
	}

	err = s.repo.Redeem(ctx, &Redemption{
		ID:         uuid.New(),
		Code:       result.Code,
		UserID:     userID,
		RedeemedAt: s.now(),
	})
	if errors.Is(err, ErrLimitReached) {
		return &ValidationResult{Code: result.Code, Reason: ReasonLimitReached}, nil
	}
	if err != nil {
		s.logger.Error("Referral redemption failed", zap.String("code", result.Code), zap.Error(err))
		return nil, fmt.Errorf("failed to redeem referral code: %w", err)
	}

	s.logger.Info("Referral code redeemed",
		zap.String("code", result.Code),
		zap.String("user_id", userID.String()),
		zap.String("attribution", result.Attribution))
	return result, nil
}
