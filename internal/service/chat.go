package service

import (
	"context"
	"strings"
	"time"

	"moneywise/internal/ai"
	"moneywise/internal/apperr"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

const (
	chatHistoryDepth    = 10
	chatDefaultPageSize = 20
)

type ChatStore interface {
	CreateChatMessage(ctx context.Context, userID, role, content string) (*models.ChatMessage, error)
	RecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
	ListChatMessages(ctx context.Context, userID string, page, pageSize int, sortOrder string) ([]models.ChatMessage, int64, error)
	ClearChatMessages(ctx context.Context, userID string) (int64, error)
	TotalAmount(ctx context.Context, userID, txType string, start, end time.Time) (float64, error)
}

// ChatAdvisor answers a question given the conversation so far.
type ChatAdvisor interface {
	AnswerQuestion(ctx context.Context, history []ai.Message, userCtx ai.UserContext, question string) (string, error)
}

type ChatService struct {
	store   ChatStore
	advisor ChatAdvisor
	now     func() time.Time
}

func NewChatService(store ChatStore, advisor ChatAdvisor) *ChatService {
	return &ChatService{store: store, advisor: advisor, now: time.Now}
}

type ChatExchange struct {
	UserMessage      *models.ChatMessage `json:"userMessage"`
	AssistantMessage *models.ChatMessage `json:"assistantMessage"`
}

// SendMessage stores the user message, asks the assistant with the
// current-month financial context and the last ten messages, and stores
// the reply.
func (s *ChatService) SendMessage(ctx context.Context, userID, content string) (*ChatExchange, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.E(apperr.KindValidation, "Le message ne peut pas être vide")
	}

	userMsg, err := s.store.CreateChatMessage(ctx, userID, models.RoleUser, content)
	if err != nil {
		return nil, err
	}

	userCtx, err := s.financialContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.conversationHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	answer, err := s.advisor.AnswerQuestion(ctx, history, userCtx, content)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "L'assistant est momentanément indisponible", err)
	}

	assistantMsg, err := s.store.CreateChatMessage(ctx, userID, models.RoleAssistant, answer)
	if err != nil {
		return nil, err
	}

	return &ChatExchange{UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

func (s *ChatService) financialContext(ctx context.Context, userID string) (ai.UserContext, error) {
	now := s.now()
	start := repo.MonthStart(now)

	income, err := s.store.TotalAmount(ctx, userID, models.TypeRevenue, start, now)
	if err != nil {
		return ai.UserContext{}, err
	}
	expenses, err := s.store.TotalAmount(ctx, userID, models.TypeExpense, start, now)
	if err != nil {
		return ai.UserContext{}, err
	}

	return ai.UserContext{
		MonthlyIncome:   income,
		MonthlyExpenses: expenses,
		MonthlySavings:  income - expenses,
		FinancialGoals:  "Épargner et optimiser mes dépenses",
	}, nil
}

// conversationHistory returns the last messages oldest-first, mapped to
// chat-completion roles.
func (s *ChatService) conversationHistory(ctx context.Context, userID string) ([]ai.Message, error) {
	msgs, err := s.store.RecentChatMessages(ctx, userID, chatHistoryDepth)
	if err != nil {
		return nil, err
	}

	history := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		role := ai.RoleUser
		if m.Role == models.RoleAssistant {
			role = ai.RoleAssistant
		}
		history = append(history, ai.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

type ChatHistory struct {
	Messages   []models.ChatMessage `json:"messages"`
	Pagination models.Pagination    `json:"pagination"`
}

func (s *ChatService) History(ctx context.Context, userID string, page, pageSize int, sortOrder string) (*ChatHistory, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = chatDefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	msgs, total, err := s.store.ListChatMessages(ctx, userID, page, pageSize, sortOrder)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return &ChatHistory{Messages: msgs, Pagination: models.NewPagination(page, pageSize, total)}, nil
}

type ChatClearResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

func (s *ChatService) Clear(ctx context.Context, userID string) (*ChatClearResult, error) {
	count, err := s.store.ClearChatMessages(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ChatClearResult{DeletedCount: count}, nil
}
