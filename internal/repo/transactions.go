package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"moneywise/internal/models"
)

// TransactionFilter narrows list queries. Zero values mean "no filter";
// Status defaults to ACTIVE unless set to ALL.
type TransactionFilter struct {
	Type       string
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	Status     string
	Page       int
	PageSize   int
}

const transactionSelect = `SELECT t.id, t.user_id, t.type, t.amount, t.category_id, t.description, t.date, t.status, t.created_at, t.updated_at,
	c.id, c.name, c.color, c.icon
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransactionRow(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	var catID, catName *string
	var catColor, catIcon *string
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.CategoryID, &t.Description, &t.Date, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		&catID, &catName, &catColor, &catIcon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if catID != nil {
		t.Category = &models.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
	}
	return &t, nil
}

func (r *Repo) CreateTransaction(ctx context.Context, userID, txType string, amount float64, categoryID, description *string, date time.Time) (*models.Transaction, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO transactions (user_id, type, amount, category_id, description, date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		userID, txType, amount, categoryID, description, date).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetTransaction(ctx, userID, id)
}

func (r *Repo) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return scanTransactionRow(r.Pool.QueryRow(ctx, transactionSelect+` WHERE t.id=$1 AND t.user_id=$2`, id, userID))
}

func (r *Repo) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]models.Transaction, int64, error) {
	var conds []string
	args := []any{userID}
	conds = append(conds, "t.user_id=$1")

	if f.Status != "ALL" {
		status := f.Status
		if status == "" {
			status = models.StatusActive
		}
		args = append(args, status)
		conds = append(conds, "t.status="+placeholder(len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, "t.type="+placeholder(len(args)))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		conds = append(conds, "t.category_id="+placeholder(len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, "t.date >= "+placeholder(len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, "t.date <= "+placeholder(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		p := placeholder(len(args))
		conds = append(conds, "(t.description ILIKE "+p+" OR c.name ILIKE "+p+")")
	}

	where := strings.Join(conds, " AND ")

	var total int64
	countQuery := `SELECT count(*) FROM transactions t LEFT JOIN categories c ON c.id = t.category_id WHERE ` + where
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := transactionSelect + ` WHERE ` + where + ` ORDER BY t.date DESC LIMIT ` +
		placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	return r.queryTransactions(ctx, query, args, total)
}

func (r *Repo) queryTransactions(ctx context.Context, query string, args []any, total int64) ([]models.Transaction, int64, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var catID, catName, catColor, catIcon *string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.CategoryID, &t.Description, &t.Date, &t.Status, &t.CreatedAt, &t.UpdatedAt,
			&catID, &catName, &catColor, &catIcon); err != nil {
			return nil, 0, err
		}
		if catID != nil {
			t.Category = &models.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

func (r *Repo) UpdateTransaction(ctx context.Context, userID, id string, txType *string, amount *float64, categoryID, description *string, date *time.Time) (*models.Transaction, error) {
	cmd, err := r.Pool.Exec(ctx, `UPDATE transactions SET
			type = COALESCE($1, type),
			amount = COALESCE($2, amount),
			category_id = $3,
			description = $4,
			date = COALESCE($5, date),
			updated_at = now()
		WHERE id=$6 AND user_id=$7`,
		txType, amount, categoryID, description, date, id, userID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetTransaction(ctx, userID, id)
}

func (r *Repo) SoftDeleteTransaction(ctx context.Context, userID, id string) error {
	cmd, err := r.Pool.Exec(ctx,
		`UPDATE transactions SET status='DELETED', updated_at=now() WHERE id=$1 AND user_id=$2 AND status='ACTIVE'`,
		id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) RestoreTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	cmd, err := r.Pool.Exec(ctx,
		`UPDATE transactions SET status='ACTIVE', updated_at=now() WHERE id=$1 AND user_id=$2 AND status='DELETED'`,
		id, userID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetTransaction(ctx, userID, id)
}

// ListActiveInRange returns active transactions in [start, end], optionally
// restricted to one type or category, most recent first.
func (r *Repo) ListActiveInRange(ctx context.Context, userID string, start, end time.Time, txType, categoryID string, limit int) ([]models.Transaction, error) {
	args := []any{userID, start, end}
	query := transactionSelect + ` WHERE t.user_id=$1 AND t.status='ACTIVE' AND t.date >= $2 AND t.date <= $3`
	if txType != "" {
		args = append(args, txType)
		query += ` AND t.type=` + placeholder(len(args))
	}
	if categoryID != "" {
		args = append(args, categoryID)
		query += ` AND t.category_id=` + placeholder(len(args))
	}
	query += ` ORDER BY t.date DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT ` + placeholder(len(args))
	}
	txs, _, err := r.queryTransactions(ctx, query, args, 0)
	return txs, err
}

func (r *Repo) RecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	txs, _, err := r.queryTransactions(ctx,
		transactionSelect+` WHERE t.user_id=$1 AND t.status='ACTIVE' ORDER BY t.date DESC LIMIT $2`,
		[]any{userID, limit}, 0)
	return txs, err
}

func (r *Repo) TotalAmount(ctx context.Context, userID, txType string, start, end time.Time) (float64, error) {
	var total float64
	err := r.Pool.QueryRow(ctx, `SELECT COALESCE(sum(amount), 0) FROM transactions
		WHERE user_id=$1 AND type=$2 AND status='ACTIVE' AND date >= $3 AND date <= $4`,
		userID, txType, start, end).Scan(&total)
	return total, err
}

func (r *Repo) CountTransactions(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions
		WHERE user_id=$1 AND status='ACTIVE' AND date >= $2 AND date <= $3`,
		userID, start, end).Scan(&count)
	return count, err
}

// CategoryExpense is one bucket of the expenses-by-category aggregate.
type CategoryExpense struct {
	CategoryID *string
	Name       *string
	Color      *string
	Icon       *string
	Total      float64
	Count      int64
}

func (r *Repo) ExpensesByCategory(ctx context.Context, userID string, start, end time.Time) ([]CategoryExpense, error) {
	rows, err := r.Pool.Query(ctx, `SELECT t.category_id, c.name, c.color, c.icon, sum(t.amount), count(t.id)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id AND c.status='ACTIVE'
		WHERE t.user_id=$1 AND t.type='EXPENSE' AND t.status='ACTIVE' AND t.date >= $2 AND t.date <= $3
		GROUP BY t.category_id, c.name, c.color, c.icon
		ORDER BY sum(t.amount) DESC`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []CategoryExpense
	for rows.Next() {
		var b CategoryExpense
		if err := rows.Scan(&b.CategoryID, &b.Name, &b.Color, &b.Icon, &b.Total, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// SpentByCategory sums active expense amounts per category in [start, end].
func (r *Repo) SpentByCategory(ctx context.Context, userID string, start, end time.Time) (map[string]float64, error) {
	rows, err := r.Pool.Query(ctx, `SELECT category_id, sum(amount) FROM transactions
		WHERE user_id=$1 AND type='EXPENSE' AND status='ACTIVE' AND category_id IS NOT NULL AND date >= $2 AND date <= $3
		GROUP BY category_id`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spent := make(map[string]float64)
	for rows.Next() {
		var categoryID string
		var total float64
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, err
		}
		spent[categoryID] = total
	}
	return spent, rows.Err()
}

// MonthlyTotal is the income/expense sum of one calendar month.
type MonthlyTotal struct {
	Year  int
	Month int
	Type  string
	Total float64
}

func (r *Repo) MonthlyTotals(ctx context.Context, userID string, start, end time.Time) ([]MonthlyTotal, error) {
	rows, err := r.Pool.Query(ctx, `SELECT extract(year FROM date)::int, extract(month FROM date)::int, type, sum(amount)
		FROM transactions
		WHERE user_id=$1 AND status='ACTIVE' AND date >= $2 AND date <= $3
		GROUP BY 1, 2, 3`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []MonthlyTotal
	for rows.Next() {
		var t MonthlyTotal
		if err := rows.Scan(&t.Year, &t.Month, &t.Type, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
