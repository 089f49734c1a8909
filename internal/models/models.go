package models

import "time"

// Entity status values. Soft-deleted rows keep their history but are
// excluded from default queries.
const (
	StatusActive    = "ACTIVE"
	StatusDeleted   = "DELETED"
	StatusSuspended = "SUSPENDED"
)

// Transaction and category types.
const (
	TypeRevenue = "REVENUE"
	TypeExpense = "EXPENSE"
)

// Alert types.
const (
	AlertBudgetExceeded   = "BUDGET_EXCEEDED"
	AlertThresholdReached = "THRESHOLD_REACHED"
	AlertLargeExpense     = "LARGE_EXPENSE"
)

// Alert source scopes.
const (
	SourceGlobal      = "GLOBAL"
	SourceCategory    = "CATEGORY"
	SourceTransaction = "TRANSACTION"
)

// Recommendation types.
const (
	RecoBudgetAlert          = "BUDGET_ALERT"
	RecoSpendingPattern      = "SPENDING_PATTERN"
	RecoSavingOpportunity    = "SAVING_OPPORTUNITY"
	RecoDebtReduction        = "DEBT_REDUCTION"
	RecoInvestmentSuggestion = "INVESTMENT_SUGGESTION"
)

// Chat roles.
const (
	RoleUser      = "USER"
	RoleAssistant = "ASSISTANT"
)

// Password reset token states.
const (
	ResetPending = "PENDING"
	ResetUsed    = "USED"
)

type User struct {
	ID           string    `json:"id"`
	Nom          string    `json:"nom"`
	Prenom       string    `json:"prenom"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatarUrl"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Category struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Color       *string   `json:"color"`
	Icon        *string   `json:"icon"`
	BudgetLimit *float64  `json:"budgetLimit"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryRef is the embedded category summary returned alongside
// transactions and alerts.
type CategoryRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type Transaction struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Type        string       `json:"type"`
	Amount      float64      `json:"amount"`
	CategoryID  *string      `json:"categoryId"`
	Category    *CategoryRef `json:"category,omitempty"`
	Description *string      `json:"description"`
	Date        time.Time    `json:"date"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type BudgetAlert struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	Type          string       `json:"type"`
	SourceType    string       `json:"sourceType"`
	CategoryID    *string      `json:"categoryId"`
	Category      *CategoryRef `json:"category,omitempty"`
	TransactionID *string      `json:"transactionId"`
	Message       string       `json:"message"`
	Amount        *float64     `json:"amount"`
	Threshold     *float64     `json:"threshold"`
	IsRead        bool         `json:"isRead"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

type Recommendation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	CategoryID *string   `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Report struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	TotalIncome  float64   `json:"totalIncome"`
	TotalExpense float64   `json:"totalExpense"`
	Balance      float64   `json:"balance"`
	FileURL      string    `json:"fileUrl"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PasswordResetToken struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination is the uniform page descriptor in list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(page, pageSize int, total int64) Pagination {
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}
