package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"todo-service/internal/apperr"
	"todo-service/internal/model"
	"todo-service/internal/repository"
)

const (
	MsgTokenNotProvided   = "Token not provided"
	MsgInvalidToken       = "Invalid token"
	MsgInvalidCredentials = "Invalid credentials"
)

const tokenBytes = 32

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, name string) (*model.User, error)
	// LoginUser issues a new session token, replacing any previous one.
	LoginUser(ctx context.Context, email, password string) (token string, user *model.User, err error)
	LogoutUser(ctx context.Context, userID int64) error
	// Authenticate resolves the user holding token.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) RegisterUser(ctx context.Context, email, password, name string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to register user.", err)
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         model.RoleMember,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		logFailure(ctx, "RegisterUser", err)
		return nil, err
	}

	user.ID = newID

	return user, nil
}

func (s *authService) LoginUser(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", nil, apperr.Unauthenticated(MsgInvalidCredentials)
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthenticated(MsgInvalidCredentials)
	}

	token, err := generateToken()
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindInternal, "Failed to issue token.", err)
	}

	tokenHash := HashToken(token)
	if err := s.userRepo.SetTokenHash(ctx, user.ID, &tokenHash); err != nil {
		logFailure(ctx, "LoginUser", err, slog.Int64("user_id", user.ID))
		return "", nil, err
	}
	user.AuthTokenHash = &tokenHash

	slog.InfoContext(ctx, "User logged in", slog.Int64("user_id", user.ID))

	return token, user, nil
}

func (s *authService) LogoutUser(ctx context.Context, userID int64) error {
	if err := s.userRepo.SetTokenHash(ctx, userID, nil); err != nil {
		logFailure(ctx, "LogoutUser", err, slog.Int64("user_id", userID))
		return err
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(MsgTokenNotProvided)
	}

	user, err := s.userRepo.FindByTokenHash(ctx, HashToken(token))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated(MsgInvalidToken)
		}
		return nil, err
	}

	return user, nil
}

// HashToken is the form a session token is stored and looked up in.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TokenPrefix returns a short prefix of token for audit logs: at most 10
// bytes and never more than half of the token.
func TokenPrefix(token string) string {
	n := 10
	if half := len(token) / 2; half < n {
		n = half
	}
	return token[:n] + "..."
}

func logFailure(ctx context.Context, op string, err error, attrs ...any) {
	args := append([]any{slog.String("operation", op), slog.String("error", err.Error())}, attrs...)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		slog.ErrorContext(ctx, "Error in "+op, args...)
		return
	}
	slog.WarnContext(ctx, "Error in "+op, args...)
}
