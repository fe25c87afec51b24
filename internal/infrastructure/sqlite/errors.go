package sqlite

import (
	"errors"
	"strings"

	"github.com/jhoicas/vento-pos/internal/domain"
	"gorm.io/gorm"
)

// mapError traduce errores de gorm/sqlite a errores de dominio.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrDuplicate
	}
	return domain.PersistenceError(op, err)
}
