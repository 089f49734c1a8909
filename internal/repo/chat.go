package repo

import (
	"context"
	"strings"

	"moneywise/internal/models"
)

func (r *Repo) CreateChatMessage(ctx context.Context, userID, role, content string) (*models.ChatMessage, error) {
	var m models.ChatMessage
	err := r.Pool.QueryRow(ctx, `INSERT INTO chat_messages (user_id, role, content)
		VALUES ($1, $2, $3) RETURNING id, user_id, role, content, created_at`,
		userID, role, content).
		Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecentChatMessages returns the last limit messages, oldest first, as
// conversation context for the assistant.
func (r *Repo) RecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, user_id, role, content, created_at FROM chat_messages
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *Repo) ListChatMessages(ctx context.Context, userID string, page, pageSize int, sortOrder string) ([]models.ChatMessage, int64, error) {
	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM chat_messages WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}

	rows, err := r.Pool.Query(ctx, `SELECT id, user_id, role, content, created_at FROM chat_messages
		WHERE user_id=$1 ORDER BY created_at `+order+` LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

func (r *Repo) ClearChatMessages(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM chat_messages WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
