package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueFields names the column guarded by each unique index or primary key in the schema.
var uniqueFields = map[string]string{
	"users_pkey":              "id",
	"users_username_key":      "username",
	"users_email_key":         "email",
	"users_recovery_code_key": "recovery_code",
	"sessions_pkey":           "session_token",
	"login_codes_pkey":        "code",
	"login_codes_user_id_key": "user_id",
	"presentation_state_pkey": "key",
	"typing_results_pkey":     "id",
}

var tableNouns = map[string]string{
	"users":              "user",
	"sessions":           "session",
	"login_codes":        "login code",
	"presentation_state": "presentation",
	"typing_results":     "typing result",
	"app_info":           "app info",
}

// reKeyField extracts the column list from "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError turns driver and context failures into AppErrors so the HTTP layer can pick a status:
//   - context deadline / statement timeout → Timeout
//   - context cancellation → Canceled
//   - no rows → NotFound
//   - unique, serialization and deadlock failures → Conflict
//   - foreign key violations → ForeignKey
//   - check and NOT NULL violations → Validation
//
// Errors that already carry an AppError, and errors that are not database errors, are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	return mapPgError(pgErr, err)
}

func mapPgError(pgErr *pgconn.PgError, cause error) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists.",
			Field:   uniqueField(pgErr),
			Cause:   cause,
		}
	case pgerrcode.ForeignKeyViolation:
		return &AppError{Code: ErrCodeForeignKey, Message: foreignKeyMessage(pgErr), Cause: cause}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Invalid value. Please check your input.",
			Field:   pgErr.ColumnName,
			Cause:   cause,
		}
	case pgerrcode.QueryCanceled, pgerrcode.LockNotAvailable:
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: cause}
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return &AppError{Code: ErrCodeConflict, Message: "The record changed concurrently. Please retry.", Cause: cause}
	}
	if pgerrcode.IsConnectionException(pgErr.Code) || pgErr.Code == pgerrcode.TooManyConnections {
		return &AppError{Code: ErrCodeInternal, Message: "Database unavailable. Please try again.", Cause: cause}
	}
	return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: cause}
}

func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if field, ok := uniqueFields[pgErr.ConstraintName]; ok {
		return field
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return ""
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	switch {
	case strings.Contains(pgErr.Detail, "is not present in table"):
		return "The referenced " + tableNoun(referencedTable(pgErr.Detail)) + " does not exist."
	case strings.Contains(pgErr.Detail, "is still referenced from table"):
		return "This item is still in use by a " + tableNoun(referencedTable(pgErr.Detail)) + "."
	case strings.HasSuffix(pgErr.ConstraintName, "_user_id_fkey"):
		return "The referenced user does not exist."
	}
	return "This item is referenced by other data."
}

// referencedTable returns the quoted table name at the end of a foreign-key detail message.
func referencedTable(detail string) string {
	i := strings.LastIndex(detail, "table ")
	if i < 0 {
		return ""
	}
	return strings.Trim(detail[i+len("table "):], `". `)
}

func tableNoun(table string) string {
	if noun, ok := tableNouns[strings.ToLower(table)]; ok {
		return noun
	}
	if table == "" {
		return "record"
	}
	return strings.ReplaceAll(table, "_", " ")
}
