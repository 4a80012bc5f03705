package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	args := m.Called(ctx, systemPrompt, question)
	return args.String(0), args.Error(1)
}

type MockUsageCounter struct {
	mock.Mock
}

func (m *MockUsageCounter) Count(ctx context.Context, userID, day string) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageCounter) Increment(ctx context.Context, userID, day string) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageCounter) Prune(ctx context.Context, before string) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

const testDay = "2026-10-15"

func newTestService(client ChatClient, counter UsageCounter, cfg Config) *Service {
	s := NewService(client, counter, cfg, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC) }
	return s
}

func TestAskAnswersAndCounts(t *testing.T) {
	client := new(MockChatClient)
	counter := new(MockUsageCounter)
	service := newTestService(client, counter, Config{DailyLimit: 5, MaxAnswerChars: 1200})
	ctx := context.Background()

	counter.On("Count", ctx, "u1", testDay).Return(2, nil)
	client.On("Complete", ctx, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "goal: lose weight")
	}), "Is rice ok?").Return("Yes, in moderation.", nil)
	counter.On("Increment", ctx, "u1", testDay).Return(3, nil)

	answer, err := service.Ask(ctx, "u1", "  Is rice ok? ", "goal: lose weight")
	require.NoError(t, err)
	assert.Equal(t, "Yes, in moderation.", answer.Answer)
	assert.Equal(t, 2, answer.Remaining)
	assert.False(t, answer.Truncated)

	client.AssertExpectations(t)
	counter.AssertExpectations(t)
}

func TestAskQuotaExceeded(t *testing.T) {
	client := new(MockChatClient)
	counter := new(MockUsageCounter)
	service := newTestService(client, counter, Config{DailyLimit: 5})
	ctx := context.Background()

	counter.On("Count", ctx, "u1", testDay).Return(5, nil)

	_, err := service.Ask(ctx, "u1", "one more?", "")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskUpstreamFailureDoesNotCount(t *testing.T) {
	client := new(MockChatClient)
	counter := new(MockUsageCounter)
	service := newTestService(client, counter, Config{DailyLimit: 5})
	ctx := context.Background()

	counter.On("Count", ctx, "u1", testDay).Return(0, nil)
	client.On("Complete", ctx, mock.Anything, "hello").Return("", errors.New("503"))

	_, err := service.Ask(ctx, "u1", "hello", "")
	assert.ErrorIs(t, err, ErrUpstream)
	counter.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskEmptyQuestion(t *testing.T) {
	service := newTestService(new(MockChatClient), new(MockUsageCounter), Config{DailyLimit: 5})

	_, err := service.Ask(context.Background(), "u1", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskTruncatesAnswer(t *testing.T) {
	client := new(MockChatClient)
	counter := new(MockUsageCounter)
	service := newTestService(client, counter, Config{DailyLimit: 5, MaxAnswerChars: 10})
	ctx := context.Background()

	counter.On("Count", ctx, "u1", testDay).Return(0, nil)
	client.On("Complete", ctx, mock.Anything, "q").Return("Äpfel sind sehr gesund", nil)
	counter.On("Increment", ctx, "u1", testDay).Return(1, nil)

	answer, err := service.Ask(ctx, "u1", "q", "")
	require.NoError(t, err)
	assert.Equal(t, "Äpfel sind", answer.Answer)
	assert.True(t, answer.Truncated)
}

func TestUsage(t *testing.T) {
	counter := new(MockUsageCounter)
	service := newTestService(new(MockChatClient), counter, Config{DailyLimit: 5})
	ctx := context.Background()

	counter.On("Count", ctx, "u1", testDay).Return(7, nil)

	usage, err := service.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, testDay, usage.Day)
	assert.Equal(t, 0, usage.Remaining)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 5))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
	assert.Equal(t, "anything", truncateRunes("anything", 0))
}

func TestJanitorRunOnce(t *testing.T) {
	counter := new(MockUsageCounter)
	janitor := NewJanitor(counter, 7, zap.NewNop())
	janitor.now = func() time.Time { return time.Date(2026, 10, 15, 3, 15, 0, 0, time.UTC) }
	ctx := context.Background()

	counter.On("Prune", ctx, "2026-10-08").Return(int64(42), nil)

	deleted, err := janitor.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
}

func TestJanitorRejectsBadSpec(t *testing.T) {
	janitor := NewJanitor(new(MockUsageCounter), 7, zap.NewNop())
	assert.Error(t, janitor.Start("not a cron spec"))
	janitor.Stop()
}
