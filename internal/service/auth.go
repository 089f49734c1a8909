package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"moneywise/internal/apperr"
	"moneywise/internal/auth"
	"moneywise/internal/logx"
	gomail "moneywise/internal/mail"
	"moneywise/internal/models"
	"moneywise/internal/repo"
)

const resetTokenTTL = time.Hour

// UserStore is the persistence surface the auth flows need.
type UserStore interface {
	CreateUser(ctx context.Context, nom, prenom, email, passwordHash string, avatarURL *string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, nom, prenom, avatarURL *string) (*models.User, error)
	UpsertResetToken(ctx context.Context, email, token, userID string, expiresAt time.Time) error
	GetValidResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	ResetPassword(ctx context.Context, tokenID, userID, passwordHash string) (*models.User, error)
}

// MailSender delivers a message synchronously.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MailQueue accepts fire-and-forget messages.
type MailQueue interface {
	Enqueue(to, subject, body string)
}

type AuthService struct {
	store   UserStore
	auth    *auth.Manager
	mailer  MailSender
	outbox  MailQueue
	baseURL string
	log     *logx.Logger
}

func NewAuthService(store UserStore, am *auth.Manager, mailer MailSender, outbox MailQueue, baseURL string, log *logx.Logger) *AuthService {
	return &AuthService{
		store:   store,
		auth:    am,
		mailer:  mailer,
		outbox:  outbox,
		baseURL: baseURL,
		log:     log.WithComponent("auth"),
	}
}

type RegisterInput struct {
	Nom       string  `json:"nom"`
	Prenom    string  `json:"prenom"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	AvatarURL *string `json:"avatarUrl"`
}

// AuthResult pairs a user with a freshly issued token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.E(apperr.KindValidation, "Email invalide")
	}
	if len(password) < 8 {
		return apperr.E(apperr.KindValidation, "Le mot de passe doit contenir au moins 8 caractères")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Nom = strings.TrimSpace(in.Nom)
	in.Prenom = strings.TrimSpace(in.Prenom)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Nom == "" || in.Prenom == "" {
		return nil, apperr.E(apperr.KindValidation, "Le nom et le prénom sont requis")
	}
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, in.Nom, in.Prenom, in.Email, hash, in.AvatarURL)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, apperr.E(apperr.KindConflict, "Un utilisateur avec cet email existe déjà")
	}
	if err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.outbox.Enqueue(user.Email, gomail.SubjectWelcome, gomail.WelcomeBody(user.Prenom))

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.E(apperr.KindUnauthorized, "Email ou mot de passe incorrect")
	}
	if err != nil {
		return nil, err
	}
	if user.Status == models.StatusSuspended {
		return nil, apperr.E(apperr.KindForbidden, "Compte suspendu")
	}
	if err := s.auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperr.E(apperr.KindUnauthorized, "Email ou mot de passe incorrect")
	}

	token, err := s.auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// ForgotPassword issues a reset token and mails the link. The response is
// identical whether or not the email exists. The reset mail is sent
// synchronously so a delivery failure reaches the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := s.store.UpsertResetToken(ctx, email, token, user.ID, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.baseURL, "/"), token)
	if err := s.mailer.Send(ctx, email, gomail.SubjectPasswordReset, gomail.PasswordResetBody(link)); err != nil {
		return apperr.Wrap(apperr.KindInternal, "Erreur lors de l'envoi de l'email de réinitialisation", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.E(apperr.KindValidation, "Le mot de passe doit contenir au moins 8 caractères")
	}

	reset, err := s.store.GetValidResetToken(ctx, token)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.E(apperr.KindValidation, "Token invalide ou expiré")
	}
	if err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.ResetPassword(ctx, reset.ID, reset.UserID, hash)
	if err != nil {
		return notFound(err, "Token invalide ou expiré")
	}

	s.outbox.Enqueue(user.Email, gomail.SubjectPasswordChanged, gomail.PasswordChangedBody(user.Prenom))
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	return user, notFound(err, "Utilisateur non trouvé")
}

type ProfileInput struct {
	Nom       *string `json:"nom"`
	Prenom    *string `json:"prenom"`
	AvatarURL *string `json:"avatarUrl"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if in.Nom != nil && strings.TrimSpace(*in.Nom) == "" {
		return nil, apperr.E(apperr.KindValidation, "Le nom ne peut pas être vide")
	}
	if in.Prenom != nil && strings.TrimSpace(*in.Prenom) == "" {
		return nil, apperr.E(apperr.KindValidation, "Le prénom ne peut pas être vide")
	}
	user, err := s.store.UpdateProfile(ctx, userID, in.Nom, in.Prenom, in.AvatarURL)
	return user, notFound(err, "Utilisateur non trouvé")
}
