package apperr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"todo-service/internal/apperr"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("Todo not found.")))
	require.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("delete todo: %w", apperr.Unauthorized("Unauthorized access to todo"))
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(wrapped))
	require.True(t, apperr.IsKind(wrapped, apperr.KindUnauthorized))
	require.False(t, apperr.IsKind(wrapped, apperr.KindForbidden))
}

func TestStorageKeepsCauseButHidesIt(t *testing.T) {
	err := apperr.Storage("Failed to retrieve todos.", sql.ErrConnDone)

	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	require.Equal(t, "Failed to retrieve todos.", apperr.MessageOf(err, "fallback"))
	require.Contains(t, err.Error(), sql.ErrConnDone.Error())
}

func TestMessageOfFallback(t *testing.T) {
	require.Equal(t, "Something went wrong", apperr.MessageOf(errors.New("raw driver detail"), "Something went wrong"))
}
