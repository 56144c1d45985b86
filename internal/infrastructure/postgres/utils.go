package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-qr/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// expectOne traduce un UPDATE/DELETE sin filas a ErrNotFound.
func expectOne(tag pgconn.CommandTag, what string, id int64) error {
	if tag.RowsAffected() == 0 {
		return domain.Errorf(domain.KindNotFound, "%s %d no existe", what, id)
	}
	return nil
}
