package service

import (
	"context"
	"time"

	"moneywise/internal/apperr"
	"moneywise/internal/logx"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

type TransactionStore interface {
	CreateTransaction(ctx context.Context, userID, txType string, amount float64, categoryID, description *string, date time.Time) (*models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f repo.TransactionFilter) ([]models.Transaction, int64, error)
	UpdateTransaction(ctx context.Context, userID, id string, txType *string, amount *float64, categoryID, description *string, date *time.Time) (*models.Transaction, error)
	SoftDeleteTransaction(ctx context.Context, userID, id string) error
	RestoreTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	GetActiveCategory(ctx context.Context, userID, categoryID string) (*models.Category, error)
}

// AlertGenerator recomputes budget alerts after expense mutations.
type AlertGenerator interface {
	Generate(ctx context.Context, userID string) ([]models.BudgetAlert, error)
}

type TransactionService struct {
	store  TransactionStore
	alerts AlertGenerator
	log    *logx.Logger
}

func NewTransactionService(store TransactionStore, alerts AlertGenerator, log *logx.Logger) *TransactionService {
	return &TransactionService{store: store, alerts: alerts, log: log.WithComponent("transactions")}
}

type TransactionInput struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	CategoryID  *string   `json:"categoryId"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
}

func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if !validCategoryType(in.Type) {
		return nil, apperr.E(apperr.KindValidation, "Le type doit être REVENUE ou EXPENSE")
	}
	if in.Amount <= 0 {
		return nil, apperr.E(apperr.KindValidation, "Le montant doit être positif")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	if in.CategoryID != nil {
		if _, err := s.store.GetActiveCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, notFound(err, "Catégorie non trouvée")
		}
	}

	tx, err := s.store.CreateTransaction(ctx, userID, in.Type, in.Amount, in.CategoryID, in.Description, in.Date)
	if err != nil {
		return nil, err
	}
	if tx.Type == models.TypeExpense {
		s.regenerateAlerts(ctx, userID)
	}
	return tx, nil
}

type TransactionList struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   models.Pagination    `json:"pagination"`
}

func (s *TransactionService) List(ctx context.Context, userID string, f repo.TransactionFilter) (*TransactionList, error) {
	if f.Type != "" && !validCategoryType(f.Type) {
		return nil, apperr.E(apperr.KindValidation, "Le type doit être REVENUE ou EXPENSE")
	}
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize)

	txs, total, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return &TransactionList{Transactions: txs, Pagination: models.NewPagination(f.Page, f.PageSize, total)}, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	return tx, notFound(err, "Transaction non trouvée")
}

type TransactionUpdate struct {
	Type        *string    `json:"type"`
	Amount      *float64   `json:"amount"`
	CategoryID  *string    `json:"categoryId"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, in TransactionUpdate) (*models.Transaction, error) {
	if in.Type != nil && !validCategoryType(*in.Type) {
		return nil, apperr.E(apperr.KindValidation, "Le type doit être REVENUE ou EXPENSE")
	}
	if in.Amount != nil && *in.Amount <= 0 {
		return nil, apperr.E(apperr.KindValidation, "Le montant doit être positif")
	}
	if in.CategoryID != nil && *in.CategoryID != "" {
		if _, err := s.store.GetActiveCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, notFound(err, "Catégorie non trouvée")
		}
	}

	tx, err := s.store.UpdateTransaction(ctx, userID, id, in.Type, in.Amount, in.CategoryID, in.Description, in.Date)
	if err != nil {
		return nil, notFound(err, "Transaction non trouvée")
	}
	if tx.Type == models.TypeExpense {
		s.regenerateAlerts(ctx, userID)
	}
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	return notFound(s.store.SoftDeleteTransaction(ctx, userID, id), "Transaction non trouvée")
}

func (s *TransactionService) Restore(ctx context.Context, userID, id string) (*models.Transaction, error) {
	tx, err := s.store.RestoreTransaction(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, "Transaction non trouvée")
	}
	if tx.Type == models.TypeExpense {
		s.regenerateAlerts(ctx, userID)
	}
	return tx, nil
}

// regenerateAlerts runs alert generation as a side effect of an expense
// mutation. The mutation already succeeded, so failures are logged rather
// than surfaced.
func (s *TransactionService) regenerateAlerts(ctx context.Context, userID string) {
	if _, err := s.alerts.Generate(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "alert generation failed", "user_id", userID, "error", err)
	}
}
