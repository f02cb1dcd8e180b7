// internal/apperr/storage.go
//
// Storage-error classification.
//
// Context
// -------
// `FromStorageError` is the one place where driver failures are mapped onto
// the taxonomy.  Rules run in a fixed order and the first match wins:
//
//  1. sql.ErrNoRows                                   → NotFound
//  2. deadline exceeded, pgconn or net.Error timeout  → RequestTimeout
//  3. vendor code (SQLSTATE, or MySQL number mapped onto one):
//     23505 unique, 23503 foreign key                 → Conflict
//     23502 not null                                  → BadRequest
//     23514 check                                     → UnprocessableContent
//     anything else                                   → InternalServerError
//  4. "timeout" anywhere in the message               → RequestTimeout
//  5. everything else                                 → InternalServerError
//
// The function is pure and never touches a database, so tests feed it
// hand-built driver errors.

package apperr

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MySQL server error numbers that have a SQLSTATE-class equivalent we care
// about.  MySQL reports 23000 for all of them, so the number disambiguates.
var mysqlCodes = map[uint16]string{
	1062: pgerrcode.UniqueViolation,     // ER_DUP_ENTRY
	1451: pgerrcode.ForeignKeyViolation, // ER_ROW_IS_REFERENCED_2
	1452: pgerrcode.ForeignKeyViolation, // ER_NO_REFERENCED_ROW_2
	1048: pgerrcode.NotNullViolation,    // ER_BAD_NULL_ERROR
	3819: pgerrcode.CheckViolation,      // ER_CHECK_CONSTRAINT_VIOLATED
}

// FromStorageError classifies a storage failure.  A nil input yields nil.
func FromStorageError(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("Resource not found")
	}

	if isTimeout(err) {
		return RequestTimeout("database operation timed out")
	}

	if code, msg, ok := vendorCode(err); ok {
		switch code {
		case pgerrcode.UniqueViolation:
			return Conflict("unique constraint violation: " + msg)
		case pgerrcode.ForeignKeyViolation:
			return Conflict("foreign key violation: " + msg)
		case pgerrcode.NotNullViolation:
			return BadRequest("not null violation: " + msg)
		case pgerrcode.CheckViolation:
			return UnprocessableContent("check constraint violation: " + msg)
		default:
			return Newf(KindInternalServerError, "database error %s: %s", code, msg)
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return RequestTimeout("database operation timed out")
	}

	return Newf(KindInternalServerError, "DB error: %v", err)
}

// isTimeout recognises structured timeouts without string matching.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// vendorCode extracts a SQLSTATE-equivalent code and message.  ok is false
// when err carries no driver error at all.
func vendorCode(err error) (code, msg string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if c, hit := mysqlCodes[myErr.Number]; hit {
			return c, myErr.Message, true
		}
		if myErr.SQLState != [5]byte{} {
			return string(myErr.SQLState[:]), myErr.Message, true
		}
		return "mysql-" + strconv.Itoa(int(myErr.Number)), myErr.Message, true
	}
	return "", "", false
}
