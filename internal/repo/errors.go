package repo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so services can test either.
var ErrNotFound = gorm.ErrRecordNotFound

var errVotesOutOfRange = errors.New("vote tally out of range for type integer")

// SQLSTATE codes surfaced to the HTTP error classifier. Postgres reports them
// natively; SQLite failures are mapped onto the same codes.
const (
	CodeInvalidTextRepresentation = "22P02"
	CodeNumericOutOfRange         = "22003"
	CodeForeignKeyViolation       = "23503"
	CodeUniqueViolation           = "23505"
)

// StoreError is a store-level failure carrying a SQLSTATE-style code.
type StoreError struct {
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store error " + e.Code
	}
	return fmt.Sprintf("store error %s: %v", e.Code, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// parseID converts a route id to the integer key type the tables use.
// Ids are not validated upstream: a malformed id fails here exactly like a
// Postgres integer cast would, with CodeInvalidTextRepresentation.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &StoreError{
			Code: CodeInvalidTextRepresentation,
			Err:  fmt.Errorf("invalid input syntax for type integer: %q", raw),
		}
	}
	return id, nil
}

// translateErr normalizes driver errors into *StoreError where a code is known.
// gorm.ErrRecordNotFound and unknown errors pass through untouched.
func translateErr(err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeInvalidTextRepresentation, CodeNumericOutOfRange, CodeForeignKeyViolation, CodeUniqueViolation:
			return &StoreError{Code: pgErr.Code, Err: err}
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &StoreError{Code: CodeForeignKeyViolation, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &StoreError{Code: CodeUniqueViolation, Err: err}
	}

	// glebarez/sqlite does not always translate; fall back to message text.
	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "foreign key constraint failed"):
		return &StoreError{Code: CodeForeignKeyViolation, Err: err}
	case strings.Contains(low, "unique constraint failed"),
		strings.Contains(low, "constraint failed: unique"):
		return &StoreError{Code: CodeUniqueViolation, Err: err}
	}
	return err
}

// HasCode reports whether err is a *StoreError with the given code.
func HasCode(err error, code string) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == code
}
