package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// wrapTransient tags retryable backend failures so callers can distinguish
// them from permanent ones. Serialization failures, deadlocks and the
// insufficient-privilege races seen right after signup all qualify.
func wrapTransient(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01", "42501", "55P03":
			return fmt.Errorf("%w: %v", usecase.ErrTransientBackend, err)
		}
	}
	return err
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullStringValue(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}
