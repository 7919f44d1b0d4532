package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"wrapped canceled", fmt.Errorf("upsert session: %w", context.Canceled), ErrCodeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if !IsAppError(err, tt.wantCode) {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("MapDBError() should keep the cause in the chain")
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	for _, noRows := range []error{pgx.ErrNoRows, sql.ErrNoRows, fmt.Errorf("get user: %w", sql.ErrNoRows)} {
		err := MapDBError(noRows)
		if !IsNotFound(err) {
			t.Errorf("MapDBError(%v) should be NotFound, got %v", noRows, GetCode(err))
		}
	}
}

func TestMapDBError_StatementTimeouts(t *testing.T) {
	for _, code := range []string{pgerrcode.QueryCanceled, pgerrcode.LockNotAvailable} {
		err := MapDBError(&pgconn.PgError{Code: code, Message: "canceling statement due to statement timeout"})
		if !IsTimeout(err) {
			t.Errorf("MapDBError(%s) should be Timeout, got %v", code, GetCode(err))
		}
		var appErr *AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus() != http.StatusGatewayTimeout {
			t.Errorf("MapDBError(%s) status = %d, want 504", code, appErr.HTTPStatus())
		}
	}
}

func TestMapDBError_ConcurrencyFailuresAreConflicts(t *testing.T) {
	for _, code := range []string{pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected} {
		if err := MapDBError(&pgconn.PgError{Code: code}); !IsConflict(err) {
			t.Errorf("MapDBError(%s) should be Conflict, got %v", code, GetCode(err))
		}
	}
}

func TestMapDBError_ConnectionFailures(t *testing.T) {
	for _, code := range []string{pgerrcode.ConnectionFailure, pgerrcode.TooManyConnections} {
		err := MapDBError(&pgconn.PgError{Code: code})
		if !IsInternal(err) {
			t.Errorf("MapDBError(%s) should be Internal, got %v", code, GetCode(err))
		}
		var appErr *AppError
		if errors.As(err, &appErr) && !strings.Contains(appErr.Message, "unavailable") {
			t.Errorf("MapDBError(%s) message = %q", code, appErr.Message)
		}
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name:      "column name metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key", ColumnName: "email"},
			wantField: "email",
		},
		{
			name:      "known constraint",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "login_codes_user_id_key"},
			wantField: "user_id",
		},
		{
			name:      "recovery code index",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_recovery_code_key"},
			wantField: "recovery_code",
		},
		{
			name: "detail message",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "verses_reference_idx",
				Detail:         `Key (reference)=(John 3:16) already exists.`,
			},
			wantField: "reference",
		},
		{
			name:      "nothing to go on",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "verses_reference_idx"},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Errorf("MapDBError() should be Conflict, got %v", GetCode(err))
			}
			if field := GetField(err); field != tt.wantField {
				t.Errorf("MapDBError() field = %q, want %q", field, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name         string
		pgErr        *pgconn.PgError
		wantContains string
	}{
		{
			name: "missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (user_id)=(5b1f) is not present in table "users".`,
			},
			wantContains: "referenced user does not exist",
		},
		{
			name: "parent still referenced",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (id)=(5b1f) is still referenced from table "typing_results".`,
			},
			wantContains: "in use by a typing result",
		},
		{
			name:         "constraint only",
			pgErr:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "login_codes_user_id_fkey"},
			wantContains: "referenced user does not exist",
		},
		{
			name:         "bare",
			pgErr:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantContains: "referenced by other data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsForeignKey(err) {
				t.Fatalf("MapDBError() should be ForeignKey, got %v", GetCode(err))
			}
			var appErr *AppError
			if errors.As(err, &appErr) && !strings.Contains(appErr.Message, tt.wantContains) {
				t.Errorf("MapDBError() message = %q, want to contain %q", appErr.Message, tt.wantContains)
			}
		})
	}
}

func TestMapDBError_ValidationViolations(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{"not null with column", &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "name"}, "name"},
		{"not null bare", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, ""},
		{"check with column", &pgconn.PgError{Code: pgerrcode.CheckViolation, ColumnName: "accuracy"}, "accuracy"},
		{"check bare", &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "login_codes_expiry_check"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsValidation(err) {
				t.Errorf("MapDBError() should be Validation, got %v", GetCode(err))
			}
			if field := GetField(err); field != tt.wantField {
				t.Errorf("MapDBError() field = %q, want %q", field, tt.wantField)
			}
		})
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: "99999", Message: "unknown error"})
	if !IsInternal(err) {
		t.Errorf("MapDBError() should be Internal for unknown pg error, got %v", GetCode(err))
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	stdErr := errors.New("standard error")
	if err := MapDBError(stdErr); err != stdErr {
		t.Errorf("MapDBError() should return non-db errors unchanged, got %v", err)
	}

	mapped := MapDBError(context.Canceled)
	if again := MapDBError(fmt.Errorf("outer: %w", mapped)); !errors.Is(again, mapped) || GetCode(again) != ErrCodeCanceled {
		t.Errorf("MapDBError() should leave existing AppErrors alone, got %v", again)
	}
}

func IsAppError(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
