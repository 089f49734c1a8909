package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"moneywise/internal/models"
)

// AlertFilter narrows alert listings. IsRead is a tri-state: nil means
// "both read and unread".
type AlertFilter struct {
	IsRead     *bool
	Type       string
	SourceType string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

const alertSelect = `SELECT a.id, a.user_id, a.type, a.source_type, a.category_id, a.transaction_id, a.message, a.amount, a.threshold, a.is_read, a.status, a.created_at, a.updated_at,
	c.id, c.name, c.color, c.icon
	FROM budget_alerts a
	LEFT JOIN categories c ON c.id = a.category_id`

func scanAlertRow(row pgx.Row) (*models.BudgetAlert, error) {
	var a models.BudgetAlert
	var catID, catName, catColor, catIcon *string
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.SourceType, &a.CategoryID, &a.TransactionID, &a.Message, &a.Amount, &a.Threshold, &a.IsRead, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		&catID, &catName, &catColor, &catIcon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if catID != nil {
		a.Category = &models.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
	}
	return &a, nil
}

func (r *Repo) CreateAlert(ctx context.Context, userID, alertType, sourceType string, categoryID, transactionID *string, message string, amount, threshold *float64) (*models.BudgetAlert, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO budget_alerts (user_id, type, source_type, category_id, transaction_id, message, amount, threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		userID, alertType, sourceType, categoryID, transactionID, message, amount, threshold).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetAlert(ctx, userID, id)
}

// CreateAlertDedup inserts an alert unless an equivalent unread active one
// already exists this month. The partial unique indexes make the check
// race-free; a conflicting insert returns (nil, nil).
func (r *Repo) CreateAlertDedup(ctx context.Context, userID, alertType, sourceType string, categoryID, transactionID *string, message string, amount, threshold *float64) (*models.BudgetAlert, error) {
	var id *string
	err := r.Pool.QueryRow(ctx, `INSERT INTO budget_alerts (user_id, type, source_type, category_id, transaction_id, message, amount, threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		userID, alertType, sourceType, categoryID, transactionID, message, amount, threshold).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetAlert(ctx, userID, *id)
}

func (r *Repo) GetAlert(ctx context.Context, userID, id string) (*models.BudgetAlert, error) {
	return scanAlertRow(r.Pool.QueryRow(ctx,
		alertSelect+` WHERE a.id=$1 AND a.user_id=$2 AND a.status='ACTIVE'`, id, userID))
}

func (r *Repo) ListAlerts(ctx context.Context, userID string, f AlertFilter) ([]models.BudgetAlert, int64, error) {
	conds := []string{"a.user_id=$1", "a.status='ACTIVE'"}
	args := []any{userID}

	if f.IsRead != nil {
		args = append(args, *f.IsRead)
		conds = append(conds, "a.is_read="+placeholder(len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, "a.type="+placeholder(len(args)))
	}
	if f.SourceType != "" {
		args = append(args, f.SourceType)
		conds = append(conds, "a.source_type="+placeholder(len(args)))
	}

	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM budget_alerts a WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Sort fields come from a fixed whitelist, never from user input directly.
	sortBy := "created_at"
	if f.SortBy == "updatedAt" {
		sortBy = "updated_at"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}

	query := alertSelect + ` WHERE ` + where + ` ORDER BY a.` + sortBy + ` ` + order +
		` LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var alerts []models.BudgetAlert
	for rows.Next() {
		var a models.BudgetAlert
		var catID, catName, catColor, catIcon *string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.SourceType, &a.CategoryID, &a.TransactionID, &a.Message, &a.Amount, &a.Threshold, &a.IsRead, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&catID, &catName, &catColor, &catIcon); err != nil {
			return nil, 0, err
		}
		if catID != nil {
			a.Category = &models.CategoryRef{ID: *catID, Name: *catName, Color: catColor, Icon: catIcon}
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

func (r *Repo) MarkAlertRead(ctx context.Context, userID, id string) (*models.BudgetAlert, error) {
	cmd, err := r.Pool.Exec(ctx,
		`UPDATE budget_alerts SET is_read=true, updated_at=now() WHERE id=$1 AND user_id=$2 AND status='ACTIVE'`,
		id, userID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetAlert(ctx, userID, id)
}

// UnreadAlerts returns the user's unread active alerts, newest first.
func (r *Repo) UnreadAlerts(ctx context.Context, userID string) ([]models.BudgetAlert, error) {
	rows, err := r.Pool.Query(ctx,
		alertSelect+` WHERE a.user_id=$1 AND a.status='ACTIVE' AND a.is_read=false ORDER BY a.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.BudgetAlert
	for rows.Next() {
		var a models.BudgetAlert
		var catID, catName, catColor, catIcon *string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.SourceType, &a.CategoryID, &a.TransactionID, &a.Message, &a.Amount, &a.Threshold, &a.IsRead, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&catID, &catName, &catColor, &catIcon); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *Repo) CountUnreadAlerts(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx,
		`SELECT count(*) FROM budget_alerts WHERE user_id=$1 AND status='ACTIVE' AND is_read=false`,
		userID).Scan(&count)
	return count, err
}

// AlertStats aggregates alert counts for the stats endpoint.
type AlertStats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
	ByType struct {
		BudgetExceeded   int64 `json:"budgetExceeded"`
		ThresholdReached int64 `json:"thresholdReached"`
		LargeExpense     int64 `json:"largeExpense"`
	} `json:"byType"`
}

func (r *Repo) GetAlertStats(ctx context.Context, userID string) (*AlertStats, error) {
	var s AlertStats
	err := r.Pool.QueryRow(ctx, `SELECT
			count(*),
			count(*) FILTER (WHERE is_read=false),
			count(*) FILTER (WHERE is_read=false AND type='BUDGET_EXCEEDED'),
			count(*) FILTER (WHERE is_read=false AND type='THRESHOLD_REACHED'),
			count(*) FILTER (WHERE is_read=false AND type='LARGE_EXPENSE')
		FROM budget_alerts WHERE user_id=$1 AND status='ACTIVE'`,
		userID).Scan(&s.Total, &s.Unread, &s.ByType.BudgetExceeded, &s.ByType.ThresholdReached, &s.ByType.LargeExpense)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MonthStart returns the first instant of now's calendar month, the lower
// bound of every per-month aggregation window.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
