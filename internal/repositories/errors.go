package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// invalidTextRepresentation is raised when an id is not a valid uuid.
const invalidTextRepresentation = "22P02"

var (
	// ErrNotFound is returned when a lookup matches no row or document.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("record already exists")
	// ErrUnavailable is returned by stores that are not configured.
	ErrUnavailable = errors.New("store not configured")
)

// translate maps gorm errors onto the package sentinels. A foreign key
// violation or a malformed uuid means the referenced row does not exist. The
// driver must be opened with TranslateError so unique violations arrive as
// ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrNotFound
	case isInvalidUUID(err):
		return ErrNotFound
	default:
		return err
	}
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}
