package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/unicorn-hrms/backend/internal/config"
	"github.com/unicorn-hrms/backend/internal/db"
	"github.com/unicorn-hrms/backend/internal/model"
	"github.com/unicorn-hrms/backend/internal/queue"
)

// CredentialStore is the persistence boundary for accounts. Refresh token
// arguments are hashes, never raw tokens.
type CredentialStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByRefreshToken(ctx context.Context, tokenHash string) (*model.User, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	SetRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, userID int64, currentHash, nextHash string, expiresAt time.Time) (bool, error)
	ClearRefreshToken(ctx context.Context, userID int64) error
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int64, when time.Time) error
}

type RoleStore interface {
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	RoleNamesByUserID(ctx context.Context, userID int64) ([]string, error)
	HasActiveAssignment(ctx context.Context, userID, roleID int64) (bool, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) (bool, error)
}

// ResetTokenStore holds one-shot password-reset tokens. Spend removes the
// token as it reads it, so a token can be redeemed at most once.
type ResetTokenStore interface {
	Save(ctx context.Context, token, email string, ttl time.Duration) error
	Spend(ctx context.Context, token string) (string, error)
}

// ResetNotifier hands the reset event to whatever sends the mail.
type ResetNotifier interface {
	PublishPasswordReset(ctx context.Context, event queue.PasswordResetEvent) error
}

// AuthService orchestrates the session operations. All session truth lives in
// the stored refresh token and its expiry; the service itself is stateless.
type AuthService struct {
	users      CredentialStore
	roles      RoleStore
	resets     ResetTokenStore
	notifier   ResetNotifier
	hasher     *PasswordHasher
	tokens     *TokenIssuer
	refreshTTL time.Duration
	resetTTL   time.Duration
}

func NewAuthService(users CredentialStore, roles RoleStore, resets ResetTokenStore, notifier ResetNotifier, cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	resetTTL, err := time.ParseDuration(cfg.ResetTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid PASSWORD_RESET_TTL", ErrMisconfigured)
	}

	cost := 0
	if cfg.BcryptCost != "" {
		cost, err = strconv.Atoi(cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
		}
	}

	return &AuthService{
		users:      users,
		roles:      roles,
		resets:     resets,
		notifier:   notifier,
		hasher:     NewPasswordHasher(cost),
		tokens:     NewTokenIssuer([]byte(cfg.JWTSecret), cfg.Issuer, cfg.Audience, accessTTL),
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}, nil
}

// Register creates an account, persists the default role assignment and opens
// a session. Uniqueness checks are case-insensitive.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	if exists, err := s.users.ExistsUsername(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}
	if exists, err := s.users.ExistsEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		IsActive:       true,
		EmailConfirmed: false,
	})
	if err != nil {
		// The Exists pre-checks race with concurrent registrations; the
		// partial unique indexes are the real guard.
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username or email already exists", ErrConflict)
		}
		return nil, err
	}

	role, err := s.roles.GetRoleByName(ctx, model.DefaultRole)
	if err != nil {
		return nil, err
	}
	if err := s.roles.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user, []string{role.Name})
}

// Login resolves the identifier as a username first, then as an email.
// Unknown identifier, wrong password and deactivated account all surface the
// same ErrAuthentication.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	identifier := strings.TrimSpace(req.UsernameOrEmail)
	if identifier == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: usernameOrEmail and password are required", ErrValidation)
	}

	user, err := s.users.FindByUsername(ctx, identifier)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, err
		}
		user, err = s.users.FindByEmail(ctx, identifier)
		if err != nil {
			if db.IsNoRows(err) {
				return nil, ErrAuthentication
			}
			return nil, err
		}
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, ErrAuthentication
	}
	if !user.IsActive {
		return nil, ErrAuthentication
	}

	roles, err := s.roles.RoleNamesByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user, roles)
}

// Refresh exchanges an access/refresh pair for a new one. The access token
// may be expired but must be structurally sound and signed by us; the refresh
// token must belong to the same account and still be inside its window.
// Rotation is compare-and-swap: of two racing calls with the same token,
// exactly one wins.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.tokens.ParseExpiredAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid access token", ErrToken)
	}

	currentHash := HashRefreshToken(strings.TrimSpace(refreshToken))
	user, err := s.users.FindByRefreshToken(ctx, currentHash)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("%w: invalid refresh token", ErrToken)
		}
		return nil, err
	}
	if user.Username != claims.Username {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrToken)
	}
	if user.RefreshTokenExpiry == nil || !user.RefreshTokenExpiry.After(time.Now()) {
		return nil, fmt.Errorf("%w: refresh token has expired", ErrToken)
	}
	if !user.IsActive {
		return nil, ErrAuthentication
	}

	roles, err := s.roles.RoleNamesByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	access, expiresAt, err := s.tokens.IssueAccessToken(user.ID, user.Username, user.Email, roles)
	if err != nil {
		return nil, err
	}
	next, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, currentHash, HashRefreshToken(next), time.Now().Add(s.refreshTTL))
	if err != nil {
		return nil, err
	}
	if !rotated {
		// A concurrent refresh spent this token first.
		return nil, fmt.Errorf("%w: invalid refresh token", ErrToken)
	}

	return s.sessionResponse(user, roles, access, next, expiresAt), nil
}

// Revoke clears the stored refresh token. Idempotent: revoking an account
// with no session is a success.
func (s *AuthService) Revoke(ctx context.Context, userID int64) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// ChangePassword swaps the stored hash after verifying the current password,
// then drops the live refresh token so stolen sessions die with the old
// password. Outstanding access tokens ride out their TTL.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error {
	if req.NewPassword == "" || req.NewPassword != req.ConfirmNewPassword {
		return fmt.Errorf("%w: new passwords do not match", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}

	if !s.hasher.Verify(user.PasswordHash, req.CurrentPassword) {
		return ErrAuthentication
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	return s.users.ClearRefreshToken(ctx, userID)
}

// RequestPasswordReset acknowledges uniformly whether or not the email
// exists. On a hit it stores a one-shot token and publishes the notification
// event; publishing failures are logged, never surfaced, so the response
// stays indistinguishable.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		log.Printf("[Auth] password reset lookup failed: %v", err)
		return nil
	}

	token, err := s.tokens.IssueRefreshToken()
	if err != nil {
		log.Printf("[Auth] reset token generation failed: %v", err)
		return nil
	}
	if err := s.resets.Save(ctx, token, user.Email, s.resetTTL); err != nil {
		log.Printf("[Auth] reset token save failed: %v", err)
		return nil
	}

	event := queue.PasswordResetEvent{
		EventID:     uuid.NewString(),
		Email:       user.Email,
		ResetToken:  token,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.notifier.PublishPasswordReset(ctx, event); err != nil {
		log.Printf("[Auth] reset notification publish failed: %v", err)
	}
	return nil
}

// ResetPassword redeems a one-shot reset token. The token must resolve to
// the same email it was issued for; spending it invalidates it even when the
// rest of the operation fails.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	if req.NewPassword == "" || req.NewPassword != req.ConfirmNewPassword {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if strings.TrimSpace(req.ResetToken) == "" {
		return fmt.Errorf("%w: invalid reset token", ErrToken)
	}

	email, err := s.resets.Spend(ctx, strings.TrimSpace(req.ResetToken))
	if err != nil || !strings.EqualFold(email, strings.TrimSpace(req.Email)) {
		return fmt.Errorf("%w: invalid reset token", ErrToken)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: invalid reset token", ErrToken)
		}
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	return s.users.ClearRefreshToken(ctx, user.ID)
}

// ParseAccessToken validates a bearer token and returns the identity baked
// into its claims. Used by the auth middleware.
func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenStr)
	if err != nil {
		return nil, ErrToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrToken
	}
	return &model.AuthUser{
		ID:       userID,
		Username: claims.Username,
		Email:    claims.Email,
		Roles:    claims.Roles,
	}, nil
}

// openSession issues a fresh token pair, overwrites any prior refresh token
// and stamps last_login_at.
func (s *AuthService) openSession(ctx context.Context, user *model.User, roles []string) (*model.LoginResponse, error) {
	access, expiresAt, err := s.tokens.IssueAccessToken(user.ID, user.Username, user.Email, roles)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, HashRefreshToken(refresh), time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.sessionResponse(user, roles, access, refresh, expiresAt), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (s *AuthService) sessionResponse(user *model.User, roles []string, access, refresh string, expiresAt time.Time) *model.LoginResponse {
	if roles == nil {
		roles = []string{}
	}
	return &model.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User: model.UserSummary{
			ID:             user.ID,
			Username:       user.Username,
			Email:          user.Email,
			FirstName:      user.FirstName,
			LastName:       user.LastName,
			PhoneNumber:    user.PhoneNumber,
			IsActive:       user.IsActive,
			EmailConfirmed: user.EmailConfirmed,
			LastLoginAt:    user.LastLoginAt,
			Roles:          roles,
		},
	}
}
