package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneywise/internal/ai"
	"moneywise/internal/apperr"
	"moneywise/internal/models"
)

type fakeChatStore struct {
	messages []models.ChatMessage
	income   float64
	expenses float64
	nextID   int
}

func (f *fakeChatStore) CreateChatMessage(_ context.Context, userID, role, content string) (*models.ChatMessage, error) {
	f.nextID++
	m := models.ChatMessage{
		ID:        "m-" + strconv.Itoa(f.nextID),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeChatStore) RecentChatMessages(_ context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeChatStore) ListChatMessages(_ context.Context, userID string, page, pageSize int, _ string) ([]models.ChatMessage, int64, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	total := int64(len(out))
	offset := (page - 1) * pageSize
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (f *fakeChatStore) ClearChatMessages(_ context.Context, userID string) (int64, error) {
	var kept []models.ChatMessage
	var deleted int64
	for _, m := range f.messages {
		if m.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return deleted, nil
}

func (f *fakeChatStore) TotalAmount(_ context.Context, _, txType string, _, _ time.Time) (float64, error) {
	if txType == models.TypeRevenue {
		return f.income, nil
	}
	return f.expenses, nil
}

type fakeChatAdvisor struct {
	reply   string
	err     error
	history []ai.Message
	userCtx ai.UserContext
}

func (f *fakeChatAdvisor) AnswerQuestion(_ context.Context, history []ai.Message, userCtx ai.UserContext, _ string) (string, error) {
	f.history = history
	f.userCtx = userCtx
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestSendMessage(t *testing.T) {
	store := &fakeChatStore{income: 2000, expenses: 1200}
	advisor := &fakeChatAdvisor{reply: "Réduisez vos dépenses de loisirs."}
	svc := NewChatService(store, advisor)

	exchange, err := svc.SendMessage(context.Background(), "u1", "  Comment épargner plus ?  ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, exchange.UserMessage.Role)
	assert.Equal(t, "Comment épargner plus ?", exchange.UserMessage.Content)
	assert.Equal(t, models.RoleAssistant, exchange.AssistantMessage.Role)
	assert.Equal(t, "Réduisez vos dépenses de loisirs.", exchange.AssistantMessage.Content)

	// Both sides of the exchange are persisted.
	assert.Len(t, store.messages, 2)

	// The advisor sees the monthly snapshot and the stored question.
	assert.Equal(t, 2000.0, advisor.userCtx.MonthlyIncome)
	assert.Equal(t, 800.0, advisor.userCtx.MonthlySavings)
	assert.Equal(t, "Épargner et optimiser mes dépenses", advisor.userCtx.FinancialGoals)
	require.Len(t, advisor.history, 1)
	assert.Equal(t, ai.RoleUser, advisor.history[0].Role)
}

func TestSendMessageEmpty(t *testing.T) {
	svc := NewChatService(&fakeChatStore{}, &fakeChatAdvisor{})

	_, err := svc.SendMessage(context.Background(), "u1", "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSendMessageAdvisorFailure(t *testing.T) {
	store := &fakeChatStore{}
	svc := NewChatService(store, &fakeChatAdvisor{err: assert.AnError})

	_, err := svc.SendMessage(context.Background(), "u1", "Bonjour")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "L'assistant est momentanément indisponible", apperr.Message(err))

	// The user message stays persisted even when the assistant fails.
	assert.Len(t, store.messages, 1)
}

func TestChatHistoryDefaults(t *testing.T) {
	store := &fakeChatStore{}
	svc := NewChatService(store, &fakeChatAdvisor{reply: "ok"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(ctx, "u1", "Question")
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "u1", 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, history.Pagination.Page)
	assert.Equal(t, chatDefaultPageSize, history.Pagination.PageSize)
	assert.Equal(t, int64(6), history.Pagination.Total)
	assert.Len(t, history.Messages, 6)
}

func TestChatClear(t *testing.T) {
	store := &fakeChatStore{}
	svc := NewChatService(store, &fakeChatAdvisor{reply: "ok"})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", "Question")
	require.NoError(t, err)

	result, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.DeletedCount)

	result, err = svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, result.DeletedCount)
}
