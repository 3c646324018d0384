package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	if HasPGCode(err, pgUniqueViolation) {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsSerializationFailure reports a Postgres serialization failure.
func IsSerializationFailure(err error) bool {
	return HasPGCode(err, pgSerializationFailure)
}

// IsDeadlock reports a Postgres deadlock or MySQL deadlock victim error.
func IsDeadlock(err error) bool {
	if HasPGCode(err, pgDeadlockDetected) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Error 1213")
}

// IsLockTimeout reports that a row lock could not be taken in time.
func IsLockTimeout(err error) bool {
	if HasPGCode(err, pgLockNotAvailable) {
		return true
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1205") || strings.Contains(msg, "database is locked")
}

// IsRetryableErr reports transient contention errors worth retrying.
func IsRetryableErr(err error) bool {
	return IsSerializationFailure(err) || IsDeadlock(err) || IsLockTimeout(err)
}

func HasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
