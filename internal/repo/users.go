package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"moneywise/internal/models"
)

const userColumns = `id, nom, prenom, email, password_hash, role, avatar_url, status, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Nom, &u.Prenom, &u.Email, &u.PasswordHash, &u.Role, &u.AvatarURL, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, nom, prenom, email, passwordHash string, avatarURL *string) (*models.User, error) {
	row := r.Pool.QueryRow(ctx, `INSERT INTO users (nom, prenom, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		nom, prenom, email, passwordHash, avatarURL)
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return u, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *Repo) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID))
}

func (r *Repo) UpdateProfile(ctx context.Context, userID string, nom, prenom, avatarURL *string) (*models.User, error) {
	row := r.Pool.QueryRow(ctx, `UPDATE users SET
			nom = COALESCE($1, nom),
			prenom = COALESCE($2, prenom),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = now()
		WHERE id=$4 RETURNING `+userColumns,
		nom, prenom, avatarURL, userID)
	return scanUser(row)
}

// UpsertResetToken keeps at most one reset token per email, refreshed on
// every forgot-password request.
func (r *Repo) UpsertResetToken(ctx context.Context, email, token, userID string, expiresAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO password_reset_tokens (email, token, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			token=EXCLUDED.token, expires_at=EXCLUDED.expires_at, status='PENDING', updated_at=now()`,
		email, token, userID, expiresAt)
	return err
}

func (r *Repo) GetValidResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.Pool.QueryRow(ctx, `SELECT id, email, token, user_id, status, expires_at, created_at, updated_at
		FROM password_reset_tokens
		WHERE token=$1 AND status='PENDING' AND expires_at > now()`, token).
		Scan(&t.ID, &t.Email, &t.Token, &t.UserID, &t.Status, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ResetPassword updates the user's password hash and marks the token used
// in one transaction, so neither can happen without the other.
func (r *Repo) ResetPassword(ctx context.Context, tokenID, userID, passwordHash string) (*models.User, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE users SET password_hash=$1, updated_at=now() WHERE id=$2 RETURNING `+userColumns, passwordHash, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `UPDATE password_reset_tokens SET status='USED', updated_at=now() WHERE id=$1 AND status='PENDING'`, tokenID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}
