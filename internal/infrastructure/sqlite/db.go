package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open abre (o crea) la base SQLite en path y aplica las migraciones pendientes.
// Se usa una sola conexión: SQLite serializa escrituras y así una transacción
// nunca compite con otra conexión del mismo proceso.
func Open(ctx context.Context, path string) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ruta de base de datos vacía")
	}
	return open(ctx, "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
}

// OpenMemory abre una base en memoria aislada (un nombre único por llamada). Para tests.
func OpenMemory(ctx context.Context) (*gorm.DB, error) {
	return open(ctx, "file:pos_"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on")
}

func open(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Close cierra la conexión subyacente.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
