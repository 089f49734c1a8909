package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moneywise/internal/models"
)

func setupTestRepo(t *testing.T) (*Repo, func()) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	if err != nil {
		pool.Close()
		t.Fatalf("create schema: %v", err)
	}
	if err := createTestTables(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("create tables: %v", err)
	}
	repo := New(pool)
	return repo, func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	}
}

func createTestTables(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE users (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), nom text, prenom text, email text UNIQUE, password_hash text, role text DEFAULT 'USER', avatar_url text, status text DEFAULT 'ACTIVE', created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE categories (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid, name text, type text, color text, icon text, budget_limit numeric(12,2), status text DEFAULT 'ACTIVE', created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE UNIQUE INDEX categories_owner_name_type_active ON categories (user_id, name, type) WHERE status = 'ACTIVE'`,
		`CREATE TABLE transactions (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid, type text, amount numeric(12,2), category_id uuid, description text, date timestamptz DEFAULT now(), status text DEFAULT 'ACTIVE', created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE budget_alerts (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid, type text, source_type text, category_id uuid, transaction_id uuid, message text, amount numeric(12,2), threshold numeric(12,2), is_read boolean DEFAULT false, status text DEFAULT 'ACTIVE', created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE UNIQUE INDEX budget_alerts_category_month_dedup ON budget_alerts (user_id, category_id, type, date_trunc('month', created_at AT TIME ZONE 'UTC')) WHERE status = 'ACTIVE' AND is_read = false AND category_id IS NOT NULL AND transaction_id IS NULL`,
		`CREATE UNIQUE INDEX budget_alerts_transaction_dedup ON budget_alerts (user_id, transaction_id, type) WHERE status = 'ACTIVE' AND is_read = false AND transaction_id IS NOT NULL`,
		`CREATE TABLE password_reset_tokens (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), email text UNIQUE, token text, user_id uuid, status text DEFAULT 'PENDING', expires_at timestamptz, created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func createTestUser(t *testing.T, repo *Repo) string {
	t.Helper()
	var userID string
	err := repo.Pool.QueryRow(context.Background(),
		`INSERT INTO users (nom, prenom, email, password_hash) VALUES ('Dupont', 'Marie', 'marie@example.com', 'x') RETURNING id`).Scan(&userID)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	return userID
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestCategoryUniquenessAndSoftDelete(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	cat, err := repo.CreateCategory(ctx, userID, "Courses", models.TypeExpense, nil, nil, floatPtr(500))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.CreateCategory(ctx, userID, "Courses", models.TypeExpense, nil, nil, nil); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	// Same name under a different type is allowed.
	if _, err := repo.CreateCategory(ctx, userID, "Courses", models.TypeRevenue, nil, nil, nil); err != nil {
		t.Fatalf("other type: %v", err)
	}

	if err := repo.SoftDeleteCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetActiveCategory(ctx, userID, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	// Deleting frees the name for a new category.
	if _, err := repo.CreateCategory(ctx, userID, "Courses", models.TypeExpense, nil, nil, nil); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	if err := repo.SoftDeleteCategory(ctx, userID, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListTransactionsPagination(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	base := time.Now().UTC()
	for i := 0; i < 15; i++ {
		if _, err := repo.CreateTransaction(ctx, userID, models.TypeExpense, float64(10+i), nil, nil, base.Add(-time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	txs, total, err := repo.ListTransactions(ctx, userID, TransactionFilter{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 15 {
		t.Fatalf("expected total 15, got %d", total)
	}
	if len(txs) != 5 {
		t.Fatalf("expected 5 on page 2, got %d", len(txs))
	}
	// Newest first, so page 2 starts at the 11th most recent.
	if txs[0].Amount != 20 {
		t.Fatalf("expected amount 20 first on page 2, got %v", txs[0].Amount)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	cat, err := repo.CreateCategory(ctx, userID, "Courses", models.TypeExpense, nil, nil, nil)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	now := time.Now().UTC()
	if _, err := repo.CreateTransaction(ctx, userID, models.TypeExpense, 42, &cat.ID, strPtr("Supermarché"), now); err != nil {
		t.Fatalf("tx1: %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, userID, models.TypeRevenue, 2000, nil, strPtr("Salaire"), now); err != nil {
		t.Fatalf("tx2: %v", err)
	}

	txs, total, err := repo.ListTransactions(ctx, userID, TransactionFilter{Type: models.TypeExpense, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if total != 1 || len(txs) != 1 || txs[0].Amount != 42 {
		t.Fatalf("type filter: total=%d len=%d", total, len(txs))
	}
	if txs[0].Category == nil || txs[0].Category.Name != "Courses" {
		t.Fatalf("expected joined category, got %+v", txs[0].Category)
	}

	txs, _, err = repo.ListTransactions(ctx, userID, TransactionFilter{Search: "salaire", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != models.TypeRevenue {
		t.Fatalf("search filter: len=%d", len(txs))
	}
}

func TestTransactionSoftDeleteAndRestore(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	tx, err := repo.CreateTransaction(ctx, userID, models.TypeExpense, 30, nil, nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SoftDeleteTransaction(ctx, userID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, total, err := repo.ListTransactions(ctx, userID, TransactionFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 {
		t.Fatalf("deleted transaction still listed")
	}
	deleted, total, err := repo.ListTransactions(ctx, userID, TransactionFilter{Status: "DELETED", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list deleted: %v", err)
	}
	if total != 1 || deleted[0].Status != models.StatusDeleted {
		t.Fatalf("expected deleted listing, total=%d", total)
	}

	restored, err := repo.RestoreTransaction(ctx, userID, tx.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Status != models.StatusActive {
		t.Fatalf("expected active after restore, got %s", restored.Status)
	}
	if _, err := repo.RestoreTransaction(ctx, userID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found restoring active, got %v", err)
	}
}

func TestCreateAlertDedup(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	cat, err := repo.CreateCategory(ctx, userID, "Courses", models.TypeExpense, nil, nil, floatPtr(500))
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	alert, err := repo.CreateAlertDedup(ctx, userID, models.AlertBudgetExceeded, models.SourceCategory, &cat.ID, nil,
		"Budget dépassé pour Courses : 600.00€ dépensés sur 500.00€", floatPtr(600), floatPtr(500))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if alert == nil {
		t.Fatal("expected alert on first insert")
	}

	dup, err := repo.CreateAlertDedup(ctx, userID, models.AlertBudgetExceeded, models.SourceCategory, &cat.ID, nil,
		"Budget dépassé pour Courses : 650.00€ dépensés sur 500.00€", floatPtr(650), floatPtr(500))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if dup != nil {
		t.Fatalf("expected nil on duplicate, got %+v", dup)
	}

	// Reading the alert lifts the suppression.
	if _, err := repo.MarkAlertRead(ctx, userID, alert.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	again, err := repo.CreateAlertDedup(ctx, userID, models.AlertBudgetExceeded, models.SourceCategory, &cat.ID, nil,
		"Budget dépassé pour Courses : 700.00€ dépensés sur 500.00€", floatPtr(700), floatPtr(500))
	if err != nil {
		t.Fatalf("insert after read: %v", err)
	}
	if again == nil {
		t.Fatal("expected new alert after previous was read")
	}
}

func TestAlertStats(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	a1, err := repo.CreateAlert(ctx, userID, models.AlertBudgetExceeded, models.SourceGlobal, nil, nil, "m1", nil, nil)
	if err != nil {
		t.Fatalf("alert1: %v", err)
	}
	if _, err := repo.CreateAlert(ctx, userID, models.AlertLargeExpense, models.SourceGlobal, nil, nil, "m2", nil, nil); err != nil {
		t.Fatalf("alert2: %v", err)
	}
	if _, err := repo.MarkAlertRead(ctx, userID, a1.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	stats, err := repo.GetAlertStats(ctx, userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Unread != 1 || stats.ByType.LargeExpense != 1 || stats.ByType.BudgetExceeded != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestResetTokenLifecycle(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()
	userID := createTestUser(t, repo)

	if err := repo.UpsertResetToken(ctx, "marie@example.com", "token-1", userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// A second request replaces the pending token.
	if err := repo.UpsertResetToken(ctx, "marie@example.com", "token-2", userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if _, err := repo.GetValidResetToken(ctx, "token-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected replaced token invalid, got %v", err)
	}

	reset, err := repo.GetValidResetToken(ctx, "token-2")
	if err != nil {
		t.Fatalf("get valid: %v", err)
	}
	if _, err := repo.ResetPassword(ctx, reset.ID, userID, "newhash"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := repo.GetValidResetToken(ctx, "token-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected used token invalid, got %v", err)
	}
}
