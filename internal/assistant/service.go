// Package assistant answers nutrition questions through a chat-completion
// provider, limited to a fixed number of questions per user per day.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrQuotaExceeded = errors.New("daily question limit reached")
	ErrUpstream      = errors.New("assistant is unavailable, please try again later")
)

const (
	maxQuestionChars = 500
	maxContextChars  = 400

	systemPromptTemplate = "You are a friendly nutrition coach inside a meal tracking app. " +
		"Answer briefly in plain language, in at most a few short paragraphs. " +
		"Do not give medical diagnoses. User context: %s"
)

type Config struct {
	DailyLimit     int
	MaxAnswerChars int
}

type Answer struct {
	Answer    string `json:"answer"`
	Remaining int    `json:"remaining"`
	Truncated bool   `json:"truncated,omitempty"`
}

type Usage struct {
	Day       string `json:"day"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

type Service struct {
	client  ChatClient
	counter UsageCounter
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(client ChatClient, counter UsageCounter, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		counter: counter,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) today() string {
	return s.now().UTC().Format(dayLayout)
}

// Ask forwards question to the provider if userID has quota left today.
// Only answered questions are counted.
func (s *Service) Ask(ctx context.Context, userID, question, userContext string) (*Answer, error) {
	question = truncateRunes(strings.TrimSpace(question), maxQuestionChars)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	day := s.today()
	used, err := s.counter.Count(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}
	if used >= s.cfg.DailyLimit {
		return nil, ErrQuotaExceeded
	}

	prompt := fmt.Sprintf(systemPromptTemplate, truncateRunes(strings.TrimSpace(userContext), maxContextChars))
	text, err := s.client.Complete(ctx, prompt, question)
	if err != nil {
		s.logger.Warn("Assistant completion failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, ErrUpstream
	}

	used, err = s.counter.Increment(ctx, userID, day)
	if err != nil {
		// the answer is already paid for; hand it out anyway
		s.logger.Error("Failed to record assistant usage",
			zap.String("user_id", userID),
			zap.Error(err))
		used = s.cfg.DailyLimit
	}

	answer := truncateRunes(text, s.cfg.MaxAnswerChars)
	return &Answer{
		Answer:    answer,
		Remaining: max(s.cfg.DailyLimit-used, 0),
		Truncated: len(answer) < len(text),
	}, nil
}

func (s *Service) Usage(ctx context.Context, userID string) (*Usage, error) {
	day := s.today()
	used, err := s.counter.Count(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}
	return &Usage{
		Day:       day,
		Used:      used,
		Limit:     s.cfg.DailyLimit,
		Remaining: max(s.cfg.DailyLimit-used, 0),
	}, nil
}

// truncateRunes cuts s to at most n characters without splitting a rune.
// n <= 0 disables the limit.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return strings.TrimSpace(s[:pos])
		}
		i++
	}
	return s
}
