// Package backup implementa la copia de la base SQLite y la programación
// periódica de respaldos con robfig/cron.
package backup

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	appbackup "github.com/jhoicas/vento-pos/internal/application/backup"
)

var _ appbackup.Snapshotter = (*SQLiteSnapshotter)(nil)

// SQLiteSnapshotter copia la base con VACUUM INTO: el archivo resultante es una
// base compacta y consistente aunque haya transacciones en curso.
type SQLiteSnapshotter struct {
	db *gorm.DB
}

// NewSQLiteSnapshotter construye el snapshotter sobre la conexión abierta.
func NewSQLiteSnapshotter(db *gorm.DB) *SQLiteSnapshotter {
	return &SQLiteSnapshotter{db: db}
}

// Snapshot escribe la copia en dest (no debe existir).
func (s *SQLiteSnapshotter) Snapshot(ctx context.Context, dest string) error {
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}
