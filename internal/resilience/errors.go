package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsTransient reports whether an error looks like a momentary store or
// network failure worth retrying. Anything else, including SQL and data
// errors, is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped driver errors often surface only as strings.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"conn closed",
		"database is locked",
		"temporary failure in name resolution",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// isTransientSQLState covers connection exceptions (class 08),
// serialization failures and deadlocks (40001, 40P01), and a server
// that is starting up or shutting down (57P03, 57P01).
func isTransientSQLState(code string) bool {
	if strings.HasPrefix(code, "08") {
		return true
	}
	switch code {
	case "40001", "40P01", "57P01", "57P03":
		return true
	}
	return false
}
