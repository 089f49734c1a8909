package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"moneywise/internal/models"
)

const reportColumns = `id, user_id, title, description, start_date, end_date, total_income, total_expense, balance, file_url, status, created_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	err := row.Scan(&rep.ID, &rep.UserID, &rep.Title, &rep.Description, &rep.StartDate, &rep.EndDate,
		&rep.TotalIncome, &rep.TotalExpense, &rep.Balance, &rep.FileURL, &rep.Status, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Repo) CreateReport(ctx context.Context, userID, title string, description *string, start, end time.Time, totalIncome, totalExpense float64, fileURL string) (*models.Report, error) {
	return scanReport(r.Pool.QueryRow(ctx, `INSERT INTO reports (user_id, title, description, start_date, end_date, total_income, total_expense, balance, file_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+reportColumns,
		userID, title, description, start, end, totalIncome, totalExpense, totalIncome-totalExpense, fileURL))
}

func (r *Repo) GetReport(ctx context.Context, userID, id string) (*models.Report, error) {
	return scanReport(r.Pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id=$1 AND user_id=$2 AND status='ACTIVE'`, id, userID))
}

func (r *Repo) ListReports(ctx context.Context, userID string, page, pageSize int) ([]models.Report, int64, error) {
	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM reports WHERE user_id=$1 AND status='ACTIVE'`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.Pool.Query(ctx, `SELECT `+reportColumns+` FROM reports
		WHERE user_id=$1 AND status='ACTIVE' ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.Title, &rep.Description, &rep.StartDate, &rep.EndDate,
			&rep.TotalIncome, &rep.TotalExpense, &rep.Balance, &rep.FileURL, &rep.Status, &rep.CreatedAt); err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}
