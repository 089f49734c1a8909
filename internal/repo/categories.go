package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"moneywise/internal/models"
)

const categoryColumns = `id, user_id, name, type, color, icon, budget_limit, status, created_at, updated_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.BudgetLimit, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) CreateCategory(ctx context.Context, userID, name, catType string, color, icon *string, budgetLimit *float64) (*models.Category, error) {
	row := r.Pool.QueryRow(ctx, `INSERT INTO categories (user_id, name, type, color, icon, budget_limit)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+categoryColumns,
		userID, name, catType, color, icon, budgetLimit)
	c, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return c, err
}

func (r *Repo) GetActiveCategory(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	return scanCategory(r.Pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id=$1 AND user_id=$2 AND status='ACTIVE'`,
		categoryID, userID))
}

func (r *Repo) ListCategories(ctx context.Context, userID, catType string, page, pageSize int) ([]models.Category, int64, error) {
	where := `user_id=$1 AND status='ACTIVE'`
	args := []any{userID}
	if catType != "" {
		args = append(args, catType)
		where += ` AND type=$2`
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM categories WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.BudgetLimit, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *Repo) UpdateCategory(ctx context.Context, userID, categoryID string, name, catType, color, icon *string, budgetLimit *float64) (*models.Category, error) {
	row := r.Pool.QueryRow(ctx, `UPDATE categories SET
			name = COALESCE($1, name),
			type = COALESCE($2, type),
			color = COALESCE($3, color),
			icon = COALESCE($4, icon),
			budget_limit = COALESCE($5, budget_limit),
			updated_at = now()
		WHERE id=$6 AND user_id=$7 AND status='ACTIVE' RETURNING `+categoryColumns,
		name, catType, color, icon, budgetLimit, categoryID, userID)
	c, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return c, err
}

func (r *Repo) SoftDeleteCategory(ctx context.Context, userID, categoryID string) error {
	cmd, err := r.Pool.Exec(ctx,
		`UPDATE categories SET status='DELETED', updated_at=now() WHERE id=$1 AND user_id=$2 AND status='ACTIVE'`,
		categoryID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBudgetedCategories returns the user's active categories carrying a
// budget limit, the input set of alert generation and budget status.
func (r *Repo) ListBudgetedCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id=$1 AND status='ACTIVE' AND budget_limit IS NOT NULL`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.BudgetLimit, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repo) SumBudgetLimits(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(sum(budget_limit), 0) FROM categories WHERE user_id=$1 AND status='ACTIVE'`,
		userID).Scan(&total)
	return total, err
}
