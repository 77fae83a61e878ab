package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Inventario-pos/internal/domain"
)

// Códigos SQLSTATE que el motor trata como conflicto reintentable.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// foreignKeyConstraint devuelve el constraint violado si err es 23503.
func foreignKeyConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// isConflict serialización, deadlock o lock_timeout: el llamador puede reintentar.
func isConflict(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// mapConflict convierte los conflictos de concurrencia en domain.ErrTransactionConflict conservando la causa.
func mapConflict(err error) error {
	if err == nil || errors.Is(err, domain.ErrTransactionConflict) {
		return err
	}
	if isConflict(err) {
		return errors.Join(domain.ErrTransactionConflict, err)
	}
	return err
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}

func timeRange(from, to *time.Time) (any, any) {
	return nullTime(from), nullTime(to)
}

// limitArg 0 = sin límite (LIMIT NULL en PostgreSQL).
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
