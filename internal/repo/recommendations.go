package repo

import (
	"context"

	"moneywise/internal/models"
)

func (r *Repo) CreateRecommendation(ctx context.Context, userID, recoType, title, message string, categoryID *string) (*models.Recommendation, error) {
	var reco models.Recommendation
	err := r.Pool.QueryRow(ctx, `INSERT INTO financial_recommendations (user_id, type, title, message, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, type, title, message, category_id, created_at`,
		userID, recoType, title, message, categoryID).
		Scan(&reco.ID, &reco.UserID, &reco.Type, &reco.Title, &reco.Message, &reco.CategoryID, &reco.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reco, nil
}

func (r *Repo) ListRecommendations(ctx context.Context, userID, recoType string, page, pageSize int) ([]models.Recommendation, int64, error) {
	where := `user_id=$1`
	args := []any{userID}
	if recoType != "" {
		args = append(args, recoType)
		where += ` AND type=$2`
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM financial_recommendations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, type, title, message, category_id, created_at
		FROM financial_recommendations WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recos []models.Recommendation
	for rows.Next() {
		var reco models.Recommendation
		if err := rows.Scan(&reco.ID, &reco.UserID, &reco.Type, &reco.Title, &reco.Message, &reco.CategoryID, &reco.CreatedAt); err != nil {
			return nil, 0, err
		}
		recos = append(recos, reco)
	}
	return recos, total, rows.Err()
}

// DeleteRecommendation is a hard delete; dismissed recommendations leave no
// trace.
func (r *Repo) DeleteRecommendation(ctx context.Context, userID, id string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM financial_recommendations WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
