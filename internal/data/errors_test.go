package data

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
)

func TestSessionRepo_Upsert_StatementTimeoutIsAppError(t *testing.T) {
	db, mock := newMockDB(t)
	pgErr := &pgconn.PgError{Code: pgerrcode.QueryCanceled, Message: "canceling statement due to statement timeout"}
	mock.ExpectQuery(`INSERT INTO sessions`).WillReturnError(pgErr)

	_, err := NewSessionRepo(db).Upsert(context.Background(), core.UpsertSessionParams{Token: "tok", Now: testNow})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeTimeout, appErr.Code)
	assert.ErrorContains(t, err, "upsert session")

	var got *pgconn.PgError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, pgerrcode.QueryCanceled, got.Code)
}

func TestLoginCodeRepo_Consume_CanceledIsAppError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`DELETE FROM login_codes`).WillReturnError(context.Canceled)

	_, err := NewLoginCodeRepo(db).Consume(context.Background(), "ABCD2345")
	assert.True(t, apperrors.IsCanceled(err), "got %v", err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrLoginCodeNotFound))
}

func TestTypingResultRepo_Create_MissingUserIsForeignKey(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO typing_results`).WillReturnError(&pgconn.PgError{
		Code:   pgerrcode.ForeignKeyViolation,
		Detail: `Key (user_id)=(` + testUserID + `) is not present in table "users".`,
	})

	_, err := NewTypingResultRepo(db).Create(context.Background(), &model.TypingResult{
		UserID:  testUserID,
		VerseID: "JHN.3.16",
	})
	assert.True(t, apperrors.IsForeignKey(err), "got %v", err)
}

func TestUserRepo_FindByName_ConnectionFailureIsInternal(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM users WHERE name = \$1`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure})

	_, err := NewUserRepo(db).FindByName(context.Background(), "Ada")
	assert.True(t, apperrors.IsInternal(err), "got %v", err)
}
