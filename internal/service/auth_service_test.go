package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-service/internal/apperr"
	"todo-service/internal/model"
	"todo-service/internal/repository/memory"
	"todo-service/internal/service"
)

func TestRegisterLoginAuthenticateLogout(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	svc := service.NewAuthService(users)

	user, err := svc.RegisterUser(ctx, "  Alice@Example.com ", "s3cret-pass", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleMember, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, loggedIn, err := svc.LoginUser(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Len(t, token, 64)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AuthTokenHash)
	assert.Equal(t, service.HashToken(token), *stored.AuthTokenHash)
	assert.NotEqual(t, token, *stored.AuthTokenHash)

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	require.NoError(t, svc.LogoutUser(ctx, user.ID))

	_, err = svc.Authenticate(ctx, token)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	assert.Equal(t, service.MsgInvalidToken, apperr.MessageOf(err, ""))
}

func TestLoginReplacesPreviousToken(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(memory.NewUserRepository())

	_, err := svc.RegisterUser(ctx, "bob@example.com", "password1", "Bob")
	require.NoError(t, err)

	first, _, err := svc.LoginUser(ctx, "bob@example.com", "password1")
	require.NoError(t, err)
	second, _, err := svc.LoginUser(ctx, "bob@example.com", "password1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = svc.Authenticate(ctx, first)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = svc.Authenticate(ctx, second)
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(memory.NewUserRepository())

	_, err := svc.RegisterUser(ctx, "dup@example.com", "password1", "One")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "DUP@example.com", "password2", "Two")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(memory.NewUserRepository())

	_, err := svc.RegisterUser(ctx, "carol@example.com", "right-pass", "Carol")
	require.NoError(t, err)

	_, _, err = svc.LoginUser(ctx, "carol@example.com", "wrong-pass")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	assert.Equal(t, service.MsgInvalidCredentials, apperr.MessageOf(err, ""))

	_, _, err = svc.LoginUser(ctx, "nobody@example.com", "right-pass")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	assert.Equal(t, service.MsgInvalidCredentials, apperr.MessageOf(err, ""))
}

func TestAuthenticateMissingToken(t *testing.T) {
	svc := service.NewAuthService(memory.NewUserRepository())

	_, err := svc.Authenticate(context.Background(), "")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	assert.Equal(t, service.MsgTokenNotProvided, apperr.MessageOf(err, ""))

	_, err = svc.Authenticate(context.Background(), "not-a-real-token")
	assert.Equal(t, service.MsgInvalidToken, apperr.MessageOf(err, ""))
}

func TestTokenPrefix(t *testing.T) {
	token := strings.Repeat("ab", 32)
	assert.Equal(t, "ababababab...", service.TokenPrefix(token))
	assert.Equal(t, "abc...", service.TokenPrefix("abcdef"))
	assert.Equal(t, "...", service.TokenPrefix(""))
	assert.NotContains(t, service.TokenPrefix("short"), "short")
}
